package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"hostel-facilities-backend/internal/booking"
	"hostel-facilities-backend/internal/model"
	"hostel-facilities-backend/internal/parse"
)

type bookRequest struct {
	ResourceID string `json:"resourceId" binding:"required"`
	StartTime  string `json:"startTime" binding:"required"`
	// EndTime defaults to one slot after StartTime.
	EndTime string `json:"endTime"`
}

// window parses the requested range in the hostel's timezone.
func (h *Handler) window(req bookRequest) (time.Time, time.Time, error) {
	policy := h.svc.Policy()
	start, err := parse.Timestamp(req.StartTime, policy.Location)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if req.EndTime == "" {
		return start, start.Add(policy.SlotLength), nil
	}
	end, err := parse.Timestamp(req.EndTime, policy.Location)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// Book handles POST /api/book. A SLOT_TAKEN response tells the client to offer
// the waitlist.
func (h *Handler) Book(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "resourceId and startTime are required")
		return
	}
	start, end, err := h.window(req)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	id := identity(c)
	if _, err := h.hostelResource(ctx, req.ResourceID, id.HostelID); err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			err = booking.ErrResourceUnavailable
		}
		respondError(c, err)
		return
	}

	b, err := h.svc.Book(ctx, id.UserID, req.ResourceID, start, end)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

type joinWaitlistRequest struct {
	Type string `json:"type" binding:"required"`
}

// JoinWaitlist handles POST /api/waitlist.
func (h *Handler) JoinWaitlist(c *gin.Context) {
	var req joinWaitlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "type is required")
		return
	}
	t, err := parse.ResourceType(req.Type)
	if err != nil || t == "" {
		badRequest(c, "type must be LAUNDRY or BADMINTON")
		return
	}

	id := identity(c)
	entry, err := h.svc.JoinWaitlist(c.Request.Context(), id.UserID, id.HostelID, t)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// Cancel handles POST /api/cancel/:bookingId. Callers may only cancel their own bookings.
func (h *Handler) Cancel(c *gin.Context) {
	ctx := c.Request.Context()
	b, err := h.svc.GetBooking(ctx, c.Param("bookingId"))
	if err != nil {
		respondError(c, err)
		return
	}
	if b.UserID != identity(c).UserID {
		forbidden(c, "booking belongs to another user")
		return
	}

	res, err := h.svc.CancelAndReassign(ctx, b.ID, model.CancelByUser)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// MyBookings handles GET /api/bookings/me.
func (h *Handler) MyBookings(c *gin.Context) {
	bookings, err := h.svc.BookingsForUser(c.Request.Context(), identity(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// MyWaitlist handles GET /api/waitlist/me.
func (h *Handler) MyWaitlist(c *gin.Context) {
	entries, err := h.svc.WaitlistForUser(c.Request.Context(), identity(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
