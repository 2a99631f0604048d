package model

import "time"

// BookingStatus is the lifecycle state of a booking.
// ACTIVE and COMPLETED are set by the usage-confirmation flow outside this service.
type BookingStatus string

const (
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingActive    BookingStatus = "ACTIVE"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingCompleted BookingStatus = "COMPLETED"
)

// HoldingStatuses are the statuses that occupy a slot.
var HoldingStatuses = []BookingStatus{BookingConfirmed, BookingActive}

// CancelReason records who or what cancelled a booking.
type CancelReason string

const (
	CancelByUser  CancelReason = "USER"
	CancelByAdmin CancelReason = "ADMIN"
	CancelNoShow  CancelReason = "NO_SHOW"
)

// Booking reserves a resource for [StartTime, EndTime).
type Booking struct {
	ID           string        `gorm:"primaryKey;size:36" json:"id"`
	ResourceID   string        `gorm:"index:idx_bookings_resource_start;size:36;not null" json:"resourceId"`
	UserID       string        `gorm:"index;size:64;not null" json:"userId"`
	StartTime    time.Time     `gorm:"index:idx_bookings_resource_start;not null" json:"startTime"`
	EndTime      time.Time     `gorm:"not null" json:"endTime"`
	Status       BookingStatus `gorm:"index;size:16;not null" json:"status"`
	CreatedBy    string        `gorm:"size:64;not null" json:"createdBy"`
	PromotedFrom *string       `gorm:"size:36" json:"promotedFrom,omitempty"`
	CancelReason *CancelReason `gorm:"size:16" json:"cancelReason,omitempty"`
	CancelledAt  *time.Time    `json:"cancelledAt,omitempty"`
	CreatedAt    time.Time     `gorm:"not null" json:"createdAt"`
	UpdatedAt    time.Time     `gorm:"not null" json:"updatedAt"`

	// Associations
	Resource Resource `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
}

// Holding reports whether the booking currently occupies its slot.
func (b Booking) Holding() bool {
	return b.Status == BookingConfirmed || b.Status == BookingActive
}
