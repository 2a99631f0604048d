package booking

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"hostel-facilities-backend/internal/events"
	"hostel-facilities-backend/internal/model"
	"hostel-facilities-backend/internal/store"
)

// Outcome describes what happened to a freed slot.
type Outcome string

const (
	OutcomeReassigned     Outcome = "REASSIGNED"
	OutcomeBelowThreshold Outcome = "NOT_REASSIGNED"
	OutcomeNoneWaiting    Outcome = "NO_ONE_WAITING"
)

// CancelResult is the outcome of CancelAndReassign.
type CancelResult struct {
	Cancelled        model.Booking        `json:"cancelled"`
	Outcome          Outcome              `json:"outcome"`
	RemainingMinutes int                  `json:"remainingMinutes"`
	Promoted         *model.Booking       `json:"promoted,omitempty"`
	Entry            *model.WaitlistEntry `json:"waitlistEntry,omitempty"`
}

// CancelAndReassign cancels a CONFIRMED booking and, when enough of the slot
// remains, hands the rest of it to the longest-waiting user for the same hostel
// and resource type. The promoted booking runs from now to the original end.
// Cancellation and promotion commit or roll back together.
func (s *Service) CancelAndReassign(ctx context.Context, bookingID string, reason model.CancelReason) (*CancelResult, error) {
	now := s.now().UTC()

	var (
		result   CancelResult
		resource model.Resource
	)
	err := store.WithLocked(ctx, s.store.DB(), bookingID, func(tx *gorm.DB, b *model.Booking) error {
		result = CancelResult{}
		if b.Status != model.BookingConfirmed {
			return fmt.Errorf("%w: booking %s is %s", ErrInvalidState, b.ID, b.Status)
		}
		if err := store.CancelBooking(tx, b, reason, now); err != nil {
			return err
		}
		result.Cancelled = *b
		result.RemainingMinutes = int(math.Round(b.EndTime.Sub(now).Minutes()))

		if result.RemainingMinutes < s.policy.ReassignThreshold {
			result.Outcome = OutcomeBelowThreshold
			return nil
		}

		r, err := store.LockByID[model.Resource](tx, b.ResourceID)
		if err != nil {
			return fmt.Errorf("failed to load resource %s: %w", b.ResourceID, err)
		}
		resource = *r

		entry, err := s.dequeueEarliest(tx, r.HostelID, r.Type)
		if err != nil {
			return err
		}
		if entry == nil {
			result.Outcome = OutcomeNoneWaiting
			return nil
		}

		fromID := b.ID
		promoted := &model.Booking{
			ID:           uuid.NewString(),
			ResourceID:   b.ResourceID,
			UserID:       entry.UserID,
			StartTime:    now,
			EndTime:      b.EndTime,
			Status:       model.BookingConfirmed,
			CreatedBy:    entry.UserID,
			PromotedFrom: &fromID,
		}
		if err := s.markFulfilled(tx, entry, promoted.ID, now); err != nil {
			return err
		}
		if err := store.InsertBooking(tx, promoted); err != nil {
			return err
		}

		result.Outcome = OutcomeReassigned
		result.Promoted = promoted
		result.Entry = entry
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: booking %s", ErrNotFound, bookingID)
	}
	if err != nil {
		return nil, err
	}

	s.afterCancel(ctx, &result, resource)
	return &result, nil
}

func (s *Service) afterCancel(ctx context.Context, result *CancelResult, resource model.Resource) {
	cancelled := result.Cancelled
	reason := ""
	if cancelled.CancelReason != nil {
		reason = string(*cancelled.CancelReason)
	}
	s.publish(ctx, events.RKBookingCancelled, events.BookingCancelled{
		BookingID:  cancelled.ID,
		UserID:     cancelled.UserID,
		ResourceID: cancelled.ResourceID,
		Reason:     reason,
		Outcome:    string(result.Outcome),
	})

	if reason == string(model.CancelNoShow) {
		s.notify(cancelled.UserID, "Booking released",
			fmt.Sprintf("Your booking starting %s was released because it was not started in time.",
				cancelled.StartTime.In(s.policy.Location).Format("15:04")))
	}

	if result.Outcome != OutcomeReassigned {
		return
	}
	promoted := result.Promoted
	s.publish(ctx, events.RKBookingReassigned, events.BookingReassigned{
		FromBookingID: cancelled.ID,
		BookingID:     promoted.ID,
		UserID:        promoted.UserID,
		ResourceID:    promoted.ResourceID,
		WaitlistID:    result.Entry.ID,
		Start:         promoted.StartTime.Unix(),
		End:           promoted.EndTime.Unix(),
	})
	s.notify(promoted.UserID, "Slot available",
		fmt.Sprintf("%s is yours until %s.", resource.Name,
			promoted.EndTime.In(s.policy.Location).Format("15:04")))
}
