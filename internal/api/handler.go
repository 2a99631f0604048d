package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"hostel-facilities-backend/internal/booking"
	"hostel-facilities-backend/internal/mw"
	"hostel-facilities-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	svc     *booking.Service
	store   store.Store
	webpush *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(svc *booking.Service, s store.Store, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		svc:     svc,
		store:   s,
		webpush: webpushOptions,
	}
}

func identity(c *gin.Context) mw.Identity {
	id, _ := mw.IdentityFrom(c)
	return id
}

func statusFor(code string) int {
	switch code {
	case booking.ErrNotFound.Code:
		return http.StatusNotFound
	case booking.ErrResourceUnavailable.Code:
		return http.StatusUnprocessableEntity
	case booking.ErrSlotTaken.Code, booking.ErrAlreadyWaiting.Code, booking.ErrInvalidState.Code:
		return http.StatusConflict
	case booking.ErrInvalidRange.Code, booking.ErrInvalidInput.Code:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes a domain error with its code. Anything without a code
// is logged and reported as an internal error.
func respondError(c *gin.Context, err error) {
	code := booking.Code(err)
	status := statusFor(code)
	if status == http.StatusInternalServerError {
		log.Printf("Error handling %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(status, gin.H{"error": "internal error", "code": "INTERNAL"})
		return
	}

	body := gin.H{"error": err.Error(), "code": code}
	if errors.Is(err, booking.ErrSlotTaken) {
		body["actionRequired"] = "JOIN_WAITLIST"
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "code": booking.ErrInvalidInput.Code})
}

func forbidden(c *gin.Context, msg string) {
	c.JSON(http.StatusForbidden, gin.H{"error": msg, "code": "FORBIDDEN"})
}
