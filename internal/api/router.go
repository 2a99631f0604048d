package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"hostel-facilities-backend/config"
	"hostel-facilities-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	limiter := mw.NewClientLimiter(
		rate.Limit(cfg.Server.RateLimitPerSec),
		cfg.Server.RateLimitBurst,
		time.Duration(cfg.Server.RateLimitIdleMinutes)*time.Minute,
	)

	ttl := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(ttl, 2*ttl)
	caching := mw.Cache(cacheStore, ttl, mw.ByHostel)

	api := r.Group("/api")
	api.Use(mw.Authenticate([]byte(cfg.Auth.JWTSecret)), mw.RateLimiter(limiter, mw.ByUser))
	{
		api.GET("/resources", h.ListResources)
		api.GET("/resources/:id/slots", h.ListSlots)

		api.POST("/book", h.Book)
		api.POST("/waitlist", h.JoinWaitlist)
		api.POST("/cancel/:bookingId", h.Cancel)
		api.GET("/bookings/me", h.MyBookings)
		api.GET("/waitlist/me", h.MyWaitlist)

		api.GET("/subscriptions", h.GetSubscription)
		api.PUT("/subscriptions", h.PutSubscription)
		api.DELETE("/subscriptions", h.DeleteSubscription)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
	}

	admin := api.Group("/admin", mw.RequireRole(cfg.Auth.AdminRole))
	{
		admin.POST("/resources", h.CreateResource)
		admin.PATCH("/resources/:id", h.PatchResource)
		admin.POST("/bookings/:id/cancel", h.ForceCancel)
		admin.POST("/book", h.BypassBook)
		admin.GET("/bookings/active", h.ActiveBookings)
		admin.GET("/waitlist", h.Waitlist)
		admin.GET("/analytics", caching, h.Analytics)
	}

	return r
}
