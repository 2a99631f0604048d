package reaper

import (
	"context"
	"log"
	"time"

	"hostel-facilities-backend/config"
	"hostel-facilities-backend/internal/booking"
	"hostel-facilities-backend/internal/model"
)

// Source lists bookings whose holders never showed up.
type Source interface {
	OverdueBookings(ctx context.Context, cutoff time.Time) ([]model.Booking, error)
}

// Engine is the reassignment authority the reaper hands forfeited bookings to.
type Engine interface {
	CancelAndReassign(ctx context.Context, bookingID string, reason model.CancelReason) (*booking.CancelResult, error)
	Now() time.Time
}

// Summary counts what a single sweep did.
type Summary struct {
	Overdue    int
	Reassigned int
	Released   int
	Failed     int
}

// Service forfeits CONFIRMED bookings that were not started within the grace period.
type Service struct {
	cfg    *config.ReaperConfig
	grace  time.Duration
	source Source
	engine Engine
}

// NewService creates a reaper. grace is measured from a booking's start time.
func NewService(cfg *config.ReaperConfig, grace time.Duration, source Source, engine Engine) *Service {
	return &Service{
		cfg:    cfg,
		grace:  grace,
		source: source,
		engine: engine,
	}
}

// Run sweeps once immediately and then on every interval until ctx is done.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Enabled {
		log.Println("Reaper is disabled. Not starting.")
		return
	}
	log.Printf("Starting reaper (interval %s, grace %s)...", s.cfg.Interval, s.grace)

	s.SweepOnce(ctx)

	timer := time.NewTimer(s.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Reaper shutting down.")
			return
		case <-timer.C:
			s.SweepOnce(ctx)
			timer.Reset(s.cfg.Interval)
		}
	}
}

// SweepOnce cancels every overdue booking through the engine. A failing booking
// is logged and skipped; the next sweep picks it up again.
func (s *Service) SweepOnce(ctx context.Context) Summary {
	var sum Summary
	cutoff := s.engine.Now().Add(-s.grace)

	overdue, err := s.source.OverdueBookings(ctx, cutoff)
	if err != nil {
		log.Printf("Error loading overdue bookings: %v", err)
		sum.Failed++
		return sum
	}
	sum.Overdue = len(overdue)

	for _, b := range overdue {
		if ctx.Err() != nil {
			break
		}
		res, err := s.engine.CancelAndReassign(ctx, b.ID, model.CancelNoShow)
		if err != nil {
			log.Printf("Error reaping booking %s: %v", b.ID, err)
			sum.Failed++
			continue
		}
		if res.Outcome == booking.OutcomeReassigned {
			sum.Reassigned++
		} else {
			sum.Released++
		}
	}

	if sum.Overdue > 0 || sum.Failed > 0 {
		log.Printf("Reaper sweep finished: %d overdue, %d reassigned, %d released, %d failed.",
			sum.Overdue, sum.Reassigned, sum.Released, sum.Failed)
	}
	return sum
}
