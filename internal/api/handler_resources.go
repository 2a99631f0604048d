package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"hostel-facilities-backend/internal/booking"
	"hostel-facilities-backend/internal/model"
	"hostel-facilities-backend/internal/parse"
)

// hostelResource loads a resource and hides it from callers of other hostels.
func (h *Handler) hostelResource(ctx context.Context, resourceID, hostelID string) (*model.Resource, error) {
	r, err := h.svc.GetResource(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	if r.HostelID != hostelID {
		return nil, fmt.Errorf("%w: resource %s", booking.ErrNotFound, resourceID)
	}
	return r, nil
}

// ListResources handles GET /api/resources?type=.
func (h *Handler) ListResources(c *gin.Context) {
	t, err := parse.ResourceType(c.Query("type"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	views, err := h.svc.ListResources(c.Request.Context(), identity(c).HostelID, t)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"resources": views})
}

// ListSlots handles GET /api/resources/:id/slots.
func (h *Handler) ListSlots(c *gin.Context) {
	ctx := c.Request.Context()
	r, err := h.hostelResource(ctx, c.Param("id"), identity(c).HostelID)
	if err != nil {
		respondError(c, err)
		return
	}

	slots, err := h.svc.AvailableSlots(ctx, r.ID, h.svc.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"resourceId": r.ID, "slots": slots})
}

type createResourceRequest struct {
	Type string `json:"type" binding:"required"`
	Name string `json:"name" binding:"required"`
}

// CreateResource handles POST /api/admin/resources.
func (h *Handler) CreateResource(c *gin.Context) {
	var req createResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	t, err := parse.ResourceType(req.Type)
	if err != nil || t == "" {
		badRequest(c, "type must be LAUNDRY or BADMINTON")
		return
	}

	r, err := h.svc.CreateResource(c.Request.Context(), identity(c).HostelID, t, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

type patchResourceRequest struct {
	IsOperational   *bool   `json:"isOperational" binding:"required"`
	MaintenanceNote *string `json:"maintenanceNote"`
}

// PatchResource handles PATCH /api/admin/resources/:id.
func (h *Handler) PatchResource(c *gin.Context) {
	var req patchResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "isOperational is required")
		return
	}

	ctx := c.Request.Context()
	r, err := h.hostelResource(ctx, c.Param("id"), identity(c).HostelID)
	if err != nil {
		respondError(c, err)
		return
	}
	updated, err := h.svc.SetOperational(ctx, r.ID, *req.IsOperational, req.MaintenanceNote)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}
