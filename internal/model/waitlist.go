package model

import "time"

// WaitlistStatus is the state of a waitlist entry. Entries only ever move
// WAITING -> FULFILLED today; an EXPIRED or WITHDRAWN state would slot in here.
type WaitlistStatus string

const (
	WaitlistWaiting   WaitlistStatus = "WAITING"
	WaitlistFulfilled WaitlistStatus = "FULFILLED"
)

// WaitlistEntry is a user's place in the FIFO queue for a resource type within a hostel.
type WaitlistEntry struct {
	ID          string         `gorm:"primaryKey;size:36" json:"id"`
	UserID      string         `gorm:"index;size:64;not null" json:"userId"`
	HostelID    string         `gorm:"index:idx_waitlist_scan;size:64;not null" json:"hostelId"`
	Type        ResourceType   `gorm:"index:idx_waitlist_scan;size:16;not null" json:"type"`
	Status      WaitlistStatus `gorm:"index:idx_waitlist_scan;size:16;not null" json:"status"`
	JoinedAt    time.Time      `gorm:"index:idx_waitlist_scan;not null" json:"joinedAt"`
	FulfilledAt *time.Time     `json:"fulfilledAt,omitempty"`
	BookingID   *string        `gorm:"size:36" json:"bookingId,omitempty"`
}
