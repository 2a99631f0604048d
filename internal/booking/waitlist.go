package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"hostel-facilities-backend/internal/events"
	"hostel-facilities-backend/internal/model"
	"hostel-facilities-backend/internal/store"
)

// JoinWaitlist queues the user for the next freed resource of the type.
// A user holds at most one WAITING entry per type.
func (s *Service) JoinWaitlist(ctx context.Context, userID, hostelID string, t model.ResourceType) (*model.WaitlistEntry, error) {
	if userID == "" || hostelID == "" || !t.Valid() {
		return nil, fmt.Errorf("%w: user, hostel and a known type are required", ErrInvalidInput)
	}

	entry := &model.WaitlistEntry{
		ID:       uuid.NewString(),
		UserID:   userID,
		HostelID: hostelID,
		Type:     t,
		Status:   model.WaitlistWaiting,
		JoinedAt: s.now(),
	}
	err := s.store.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := store.FindWaiting(tx, userID, t)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrAlreadyWaiting
		}
		if err := store.InsertWaitlistEntry(tx, entry); err != nil {
			if store.IsDuplicate(err) {
				return ErrAlreadyWaiting
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.RKWaitlistJoined, events.WaitlistJoined{
		WaitlistID: entry.ID,
		UserID:     entry.UserID,
		HostelID:   entry.HostelID,
		Type:       string(entry.Type),
	})
	return entry, nil
}

// dequeueEarliest claims the longest-waiting entry for (hostel, type) inside tx.
func (s *Service) dequeueEarliest(tx *gorm.DB, hostelID string, t model.ResourceType) (*model.WaitlistEntry, error) {
	return store.DequeueEarliest(tx, hostelID, t)
}

// markFulfilled is the entry's terminal transition.
func (s *Service) markFulfilled(tx *gorm.DB, entry *model.WaitlistEntry, bookingID string, at time.Time) error {
	if entry.Status != model.WaitlistWaiting {
		return fmt.Errorf("%w: waitlist entry %s is %s", ErrInvalidState, entry.ID, entry.Status)
	}
	return store.MarkFulfilled(tx, entry, bookingID, at)
}

// WaitlistForUser lists the user's entries, newest first.
func (s *Service) WaitlistForUser(ctx context.Context, userID string) ([]model.WaitlistEntry, error) {
	return s.store.WaitlistForUser(ctx, userID)
}

// WaitingEntries lists the hostel's WAITING entries in queue order.
func (s *Service) WaitingEntries(ctx context.Context, hostelID string) ([]model.WaitlistEntry, error) {
	return s.store.WaitingEntries(ctx, hostelID)
}
