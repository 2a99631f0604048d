package store

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"hostel-facilities-backend/internal/model"
)

// The helpers below must run inside a transaction opened by the caller.

// FindConflict returns a slot-holding booking on the resource that collides with
// [start, end), or nil when the slot is free. With overlap false only bookings
// starting exactly at start collide.
func FindConflict(tx *gorm.DB, resourceID string, start, end time.Time, overlap bool) (*model.Booking, error) {
	q := tx.Where("resource_id = ? AND status IN ?", resourceID, holdingStatuses())
	if overlap {
		q = q.Where("start_time < ? AND end_time > ?", end.UTC(), start.UTC())
	} else {
		q = q.Where("start_time = ?", start.UTC())
	}

	var existing model.Booking
	err := q.Take(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check slot conflict: %w", err)
	}
	return &existing, nil
}

// InsertBooking persists a new booking.
func InsertBooking(tx *gorm.DB, b *model.Booking) error {
	b.StartTime = b.StartTime.UTC()
	b.EndTime = b.EndTime.UTC()
	if err := tx.Omit("Resource").Create(b).Error; err != nil {
		return fmt.Errorf("failed to insert booking for resource %s: %w", b.ResourceID, err)
	}
	return nil
}

// CancelBooking moves a locked booking to CANCELLED.
func CancelBooking(tx *gorm.DB, b *model.Booking, reason model.CancelReason, at time.Time) error {
	at = at.UTC()
	b.Status = model.BookingCancelled
	b.CancelReason = &reason
	b.CancelledAt = &at
	err := tx.Model(b).Select("status", "cancel_reason", "cancelled_at").Updates(b).Error
	if err != nil {
		return fmt.Errorf("failed to cancel booking %s: %w", b.ID, err)
	}
	return nil
}

// FindWaiting returns the user's WAITING entry for the type, or nil.
func FindWaiting(tx *gorm.DB, userID string, t model.ResourceType) (*model.WaitlistEntry, error) {
	var entry model.WaitlistEntry
	err := tx.Where("user_id = ? AND type = ? AND status = ?", userID, string(t), string(model.WaitlistWaiting)).
		Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up waitlist entry: %w", err)
	}
	return &entry, nil
}

// InsertWaitlistEntry persists a new WAITING entry.
func InsertWaitlistEntry(tx *gorm.DB, e *model.WaitlistEntry) error {
	e.JoinedAt = e.JoinedAt.UTC()
	if err := tx.Create(e).Error; err != nil {
		if IsDuplicate(err) {
			return err
		}
		return fmt.Errorf("failed to insert waitlist entry: %w", err)
	}
	return nil
}

// DequeueEarliest locks and returns the longest-waiting entry for (hostel, type),
// or nil when nobody is waiting. Rows locked by a concurrent promotion are
// skipped, so two promotions never claim the same entry.
func DequeueEarliest(tx *gorm.DB, hostelID string, t model.ResourceType) (*model.WaitlistEntry, error) {
	var entry model.WaitlistEntry
	err := ForUpdate(tx, SkipLocked).
		Where("hostel_id = ? AND type = ? AND status = ?", hostelID, string(t), string(model.WaitlistWaiting)).
		Order("joined_at ASC").
		Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to dequeue waitlist: %w", err)
	}
	return &entry, nil
}

// MarkFulfilled moves a locked entry to FULFILLED and links the booking it received.
func MarkFulfilled(tx *gorm.DB, e *model.WaitlistEntry, bookingID string, at time.Time) error {
	at = at.UTC()
	e.Status = model.WaitlistFulfilled
	e.FulfilledAt = &at
	e.BookingID = &bookingID
	err := tx.Model(e).Select("status", "fulfilled_at", "booking_id").Updates(e).Error
	if err != nil {
		return fmt.Errorf("failed to fulfil waitlist entry %s: %w", e.ID, err)
	}
	return nil
}
