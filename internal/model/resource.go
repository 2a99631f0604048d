package model

import "time"

// ResourceType is the kind of shared facility a resource belongs to.
type ResourceType string

const (
	ResourceLaundry   ResourceType = "LAUNDRY"
	ResourceBadminton ResourceType = "BADMINTON"
)

// Valid reports whether t is a known resource type.
func (t ResourceType) Valid() bool {
	return t == ResourceLaundry || t == ResourceBadminton
}

// Resource is a physically exclusive facility inside a hostel (a washing machine, a court).
type Resource struct {
	ID              string       `gorm:"primaryKey;size:36" json:"id"`
	HostelID        string       `gorm:"index:idx_resources_hostel_type;size:64;not null" json:"hostelId"`
	Type            ResourceType `gorm:"index:idx_resources_hostel_type;size:16;not null" json:"type"`
	Name            string       `gorm:"size:128;not null" json:"name"`
	IsOperational   bool         `gorm:"not null" json:"isOperational"`
	MaintenanceNote *string      `gorm:"size:512" json:"maintenanceNote,omitempty"`
	CreatedAt       time.Time    `gorm:"not null" json:"createdAt"`
	UpdatedAt       time.Time    `gorm:"not null" json:"updatedAt"`
}
