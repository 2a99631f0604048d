package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"hostel-facilities-backend/internal/events"
	"hostel-facilities-backend/internal/model"
	"hostel-facilities-backend/internal/store"
)

// Book reserves the resource for [start, end) on behalf of the user.
func (s *Service) Book(ctx context.Context, userID, resourceID string, start, end time.Time) (*model.Booking, error) {
	return s.book(ctx, userID, userID, resourceID, start, end)
}

// BypassBook lets staff assign a slot to a user directly. It takes the same
// resource lock and runs the same conflict check as Book.
func (s *Service) BypassBook(ctx context.Context, adminID, userID, resourceID string, start, end time.Time) (*model.Booking, error) {
	return s.book(ctx, adminID, userID, resourceID, start, end)
}

func (s *Service) book(ctx context.Context, actorID, userID, resourceID string, start, end time.Time) (*model.Booking, error) {
	if userID == "" || resourceID == "" {
		return nil, fmt.Errorf("%w: user and resource are required", ErrInvalidInput)
	}
	if !end.After(start) {
		return nil, ErrInvalidRange
	}

	var created *model.Booking
	err := store.WithLocked(ctx, s.store.DB(), resourceID, func(tx *gorm.DB, r *model.Resource) error {
		if !r.IsOperational {
			return fmt.Errorf("%w: resource %s is under maintenance", ErrResourceUnavailable, resourceID)
		}

		conflict, err := store.FindConflict(tx, resourceID, start, end, s.policy.Overlap)
		if err != nil {
			return err
		}
		if conflict != nil {
			return ErrSlotTaken
		}

		b := &model.Booking{
			ID:         uuid.NewString(),
			ResourceID: resourceID,
			UserID:     userID,
			StartTime:  start,
			EndTime:    end,
			Status:     model.BookingConfirmed,
			CreatedBy:  actorID,
		}
		if err := store.InsertBooking(tx, b); err != nil {
			if store.IsDuplicate(err) {
				return ErrSlotTaken
			}
			return err
		}
		created = b
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: resource %s does not exist", ErrResourceUnavailable, resourceID)
	}
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.RKBookingCreated, events.BookingCreated{
		BookingID:  created.ID,
		UserID:     created.UserID,
		ResourceID: created.ResourceID,
		CreatedBy:  created.CreatedBy,
		Start:      created.StartTime.Unix(),
		End:        created.EndTime.Unix(),
	})
	return created, nil
}

// GetBooking returns a single booking.
func (s *Service) GetBooking(ctx context.Context, bookingID string) (*model.Booking, error) {
	b, err := s.store.GetBooking(ctx, bookingID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: booking %s", ErrNotFound, bookingID)
	}
	return b, err
}

// BookingsForUser lists the user's bookings, newest first.
func (s *Service) BookingsForUser(ctx context.Context, userID string) ([]model.Booking, error) {
	return s.store.BookingsForUser(ctx, userID)
}

// ActiveBookings lists the hostel's CONFIRMED and ACTIVE bookings.
func (s *Service) ActiveBookings(ctx context.Context, hostelID string) ([]model.Booking, error) {
	return s.store.HoldingBookings(ctx, hostelID)
}
