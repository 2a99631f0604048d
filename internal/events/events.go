package events

import (
	"context"
	"encoding/json"
	"fmt"
)

// Routing keys published on the facility exchange.
const (
	RKBookingCreated    = "booking.created"
	RKBookingCancelled  = "booking.cancelled"
	RKBookingReassigned = "booking.reassigned"
	RKWaitlistJoined    = "waitlist.joined"
)

type BookingCreated struct {
	BookingID  string `json:"booking_id"`
	UserID     string `json:"user_id"`
	ResourceID string `json:"resource_id"`
	CreatedBy  string `json:"created_by"`
	Start      int64  `json:"start"` // unix seconds
	End        int64  `json:"end"`
}

type BookingCancelled struct {
	BookingID  string `json:"booking_id"`
	UserID     string `json:"user_id"`
	ResourceID string `json:"resource_id"`
	Reason     string `json:"reason"`
	Outcome    string `json:"outcome"`
}

type BookingReassigned struct {
	FromBookingID string `json:"from_booking_id"`
	BookingID     string `json:"booking_id"`
	UserID        string `json:"user_id"`
	ResourceID    string `json:"resource_id"`
	WaitlistID    string `json:"waitlist_id"`
	Start         int64  `json:"start"`
	End           int64  `json:"end"`
}

type WaitlistJoined struct {
	WaitlistID string `json:"waitlist_id"`
	UserID     string `json:"user_id"`
	HostelID   string `json:"hostel_id"`
	Type       string `json:"type"`
}

// Decode unmarshals an event body into T.
func Decode[T any](b []byte) (T, error) {
	var t T
	if err := json.Unmarshal(b, &t); err != nil {
		var zero T
		return zero, fmt.Errorf("decode payload failed: %w", err)
	}
	return t, nil
}

// Nop discards every event. It is used when events are disabled.
type Nop struct{}

func (Nop) PublishJSON(ctx context.Context, key string, v any) error { return nil }

func (Nop) Close() error { return nil }
