package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"hostel-facilities-backend/internal/model"
	"hostel-facilities-backend/internal/store"
)

// LiveStatus is derived at read time from the resource flag and its bookings.
type LiveStatus string

const (
	StatusAvailable   LiveStatus = "AVAILABLE"
	StatusInUse       LiveStatus = "IN_USE"
	StatusMaintenance LiveStatus = "MAINTENANCE"
	StatusFullyBooked LiveStatus = "FULLY_BOOKED"
)

// ResourceView is a resource enriched with its live status.
type ResourceView struct {
	model.Resource
	LiveStatus LiveStatus `json:"liveStatus"`
}

// CreateResource registers a new, operational resource in a hostel.
func (s *Service) CreateResource(ctx context.Context, hostelID string, t model.ResourceType, name string) (*model.Resource, error) {
	name = strings.TrimSpace(name)
	if hostelID == "" || name == "" || !t.Valid() {
		return nil, fmt.Errorf("%w: hostel, name and a known type are required", ErrInvalidInput)
	}

	r := &model.Resource{
		ID:            uuid.NewString(),
		HostelID:      hostelID,
		Type:          t,
		Name:          name,
		IsOperational: true,
	}
	if err := s.store.CreateResource(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// SetOperational toggles a resource in or out of maintenance.
func (s *Service) SetOperational(ctx context.Context, resourceID string, operational bool, note *string) (*model.Resource, error) {
	r, err := s.store.SetOperational(ctx, resourceID, operational, note)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: resource %s", ErrNotFound, resourceID)
	}
	return r, err
}

// GetResource returns a single resource.
func (s *Service) GetResource(ctx context.Context, resourceID string) (*model.Resource, error) {
	r, err := s.store.GetResource(ctx, resourceID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: resource %s", ErrNotFound, resourceID)
	}
	return r, err
}

// ListResources returns the hostel's resources with their live status at now.
func (s *Service) ListResources(ctx context.Context, hostelID string, t model.ResourceType) ([]ResourceView, error) {
	resources, err := s.store.ListResources(ctx, hostelID, t)
	if err != nil {
		return nil, err
	}

	now := s.now()
	ids := make([]string, len(resources))
	for i, r := range resources {
		ids[i] = r.ID
	}
	holders, err := s.store.CurrentHolders(ctx, ids, now)
	if err != nil {
		return nil, err
	}

	views := make([]ResourceView, 0, len(resources))
	for _, r := range resources {
		view := ResourceView{Resource: r, LiveStatus: StatusAvailable}
		switch _, held := holders[r.ID]; {
		case !r.IsOperational:
			view.LiveStatus = StatusMaintenance
		case held:
			view.LiveStatus = StatusInUse
		default:
			slots, err := s.AvailableSlots(ctx, r.ID, now)
			if err != nil {
				return nil, err
			}
			if len(slots) == 0 {
				view.LiveStatus = StatusFullyBooked
			}
		}
		views = append(views, view)
	}
	return views, nil
}
