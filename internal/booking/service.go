package booking

import (
	"context"
	"log"
	"time"

	"hostel-facilities-backend/config"
	"hostel-facilities-backend/internal/store"
)

// Notifier delivers a short message to a user. Delivery is best effort.
type Notifier interface {
	Notify(userID, title, body string)
}

// Publisher emits domain events to other services.
type Publisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// Policy holds the temporal rules of the booking system.
type Policy struct {
	Location          *time.Location
	SlotLength        time.Duration
	MaxSlots          int
	LastStartHour     int
	ReassignThreshold int // minutes
	GracePeriod       time.Duration
	Overlap           bool
}

// PolicyFromConfig converts the booking section of the configuration.
func PolicyFromConfig(cfg config.BookingConfig) Policy {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return Policy{
		Location:          loc,
		SlotLength:        time.Duration(cfg.SlotMinutes) * time.Minute,
		MaxSlots:          cfg.MaxSlots,
		LastStartHour:     cfg.LastStartHour,
		ReassignThreshold: cfg.ReassignThresholdMinutes,
		GracePeriod:       time.Duration(cfg.GracePeriodMinutes) * time.Minute,
		Overlap:           cfg.ConflictMode == config.ConflictOverlap,
	}
}

// DefaultPolicy is the policy with every configuration default applied.
func DefaultPolicy() Policy {
	return PolicyFromConfig(config.Default().Booking)
}

// Service implements booking, waitlisting and reassignment on top of the store.
type Service struct {
	store    store.Store
	policy   Policy
	now      func() time.Time
	notifier Notifier
	events   Publisher
}

// NewService creates a booking service. notifier and events may be nil.
func NewService(s store.Store, policy Policy, notifier Notifier, events Publisher) *Service {
	return &Service{
		store:    s,
		policy:   policy,
		now:      time.Now,
		notifier: notifier,
		events:   events,
	}
}

// SetClock replaces the time source.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Now returns the current time according to the service clock.
func (s *Service) Now() time.Time {
	return s.now()
}

// Policy returns the policy the service was built with.
func (s *Service) Policy() Policy {
	return s.policy
}

func (s *Service) notify(userID, title, body string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(userID, title, body)
}

func (s *Service) publish(ctx context.Context, key string, v any) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishJSON(ctx, key, v); err != nil {
		log.Printf("Error publishing %s event: %v", key, err)
	}
}
