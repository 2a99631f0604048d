package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"hostel-facilities-backend/internal/analytics"
	"hostel-facilities-backend/internal/booking"
	"hostel-facilities-backend/internal/model"
	"hostel-facilities-backend/internal/parse"
)

// ForceCancel handles POST /api/admin/bookings/:id/cancel. The freed slot goes
// through the same reassignment as a user cancellation.
func (h *Handler) ForceCancel(c *gin.Context) {
	ctx := c.Request.Context()
	b, err := h.svc.GetBooking(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if _, err := h.hostelResource(ctx, b.ResourceID, identity(c).HostelID); err != nil {
		respondError(c, err)
		return
	}

	res, err := h.svc.CancelAndReassign(ctx, b.ID, model.CancelByAdmin)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type bypassBookRequest struct {
	UserID string `json:"userId" binding:"required"`
	bookRequest
}

// BypassBook handles POST /api/admin/book.
func (h *Handler) BypassBook(c *gin.Context) {
	var req bypassBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "userId, resourceId and startTime are required")
		return
	}
	start, end, err := h.window(req.bookRequest)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	admin := identity(c)
	if _, err := h.hostelResource(ctx, req.ResourceID, admin.HostelID); err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			err = booking.ErrResourceUnavailable
		}
		respondError(c, err)
		return
	}

	b, err := h.svc.BypassBook(ctx, admin.UserID, req.UserID, req.ResourceID, start, end)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// ActiveBookings handles GET /api/admin/bookings/active.
func (h *Handler) ActiveBookings(c *gin.Context) {
	bookings, err := h.svc.ActiveBookings(c.Request.Context(), identity(c).HostelID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// Waitlist handles GET /api/admin/waitlist.
func (h *Handler) Waitlist(c *gin.Context) {
	entries, err := h.svc.WaitingEntries(c.Request.Context(), identity(c).HostelID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// Analytics handles GET /api/admin/analytics?from=YYYY-MM-DD&to=YYYY-MM-DD.
// The range is [from, to) in local days and defaults to the last seven days.
func (h *Handler) Analytics(c *gin.Context) {
	loc := h.svc.Policy().Location
	now := h.svc.Now().In(loc)
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)
	from := to.AddDate(0, 0, -7)

	var err error

	if raw := c.Query("from"); raw != "" {
		if from, err = parse.Date(raw, loc); err != nil {
			badRequest(c, err.Error())
			return
		}
	}
	if raw := c.Query("to"); raw != "" {
		if to, err = parse.Date(raw, loc); err != nil {
			badRequest(c, err.Error())
			return
		}
	}
	if !to.After(from) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to must be after from", "code": booking.ErrInvalidRange.Code})
		return
	}

	report, err := analytics.Compute(c.Request.Context(), h.store, identity(c).HostelID, from, to, loc)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
