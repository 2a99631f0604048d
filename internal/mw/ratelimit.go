package mw

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ClientLimiter keeps one token bucket per client key. Buckets of clients
// that have been idle for longer than the idle window are dropped.
type ClientLimiter struct {
	mu        sync.Mutex
	clients   map[string]*client
	r         rate.Limit
	b         int
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewClientLimiter creates a limiter allowing r requests per second with burst b per client.
func NewClientLimiter(r rate.Limit, b int, idle time.Duration) *ClientLimiter {
	return &ClientLimiter{
		clients: make(map[string]*client),
		r:       r,
		b:       b,
		idle:    idle,
		now:     time.Now,
	}
}

// Allow reports whether the client may make a request now.
func (l *ClientLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.idle {
		l.evictLocked(now)
		l.lastSweep = now
	}

	c, ok := l.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(l.r, l.b)}
		l.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

// Len returns the number of tracked clients.
func (l *ClientLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

func (l *ClientLimiter) evictLocked(now time.Time) {
	for key, c := range l.clients {
		if now.Sub(c.lastSeen) >= l.idle {
			delete(l.clients, key)
		}
	}
}

// ByUser keys requests by the authenticated hostel and user. Requests that
// carry no identity fall back to the client IP.
func ByUser(c *gin.Context) string {
	id, ok := IdentityFrom(c)
	if !ok {
		return "ip|" + c.ClientIP()
	}
	return id.HostelID + "|" + id.UserID
}

// RateLimiter is a middleware for per-client rate limiting.
func RateLimiter(limiter *ClientLimiter, keyFn KeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(keyFn(c)) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests", "code": "RATE_LIMITED"})
			return
		}
		c.Next()
	}
}
