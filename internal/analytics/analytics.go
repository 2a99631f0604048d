package analytics

import (
	"context"
	"fmt"
	"math"
	"time"

	"hostel-facilities-backend/internal/model"
)

// Source provides the rows a report is projected from.
type Source interface {
	BookingsStartedBetween(ctx context.Context, hostelID string, from, to time.Time) ([]model.Booking, error)
	FulfilledBetween(ctx context.Context, hostelID string, from, to time.Time) ([]model.WaitlistEntry, error)
}

// Report summarizes facility usage of one hostel over [From, To).
type Report struct {
	From           time.Time                   `json:"from"`
	To             time.Time                   `json:"to"`
	Total          int                         `json:"total"`
	CountsByStatus map[model.BookingStatus]int `json:"countsByStatus"`
	NoShows        int                         `json:"noShows"`
	NoShowRate     float64                     `json:"noShowRate"`
	// PeakHours[h] counts bookings starting in local hour h.
	PeakHours            [24]int `json:"peakHours"`
	Promotions           int     `json:"promotions"`
	FulfilledEntries     int     `json:"fulfilledEntries"`
	AvgTurnaroundMinutes float64 `json:"avgTurnaroundMinutes"`
}

// Compute loads the hostel's bookings and fulfilled waitlist entries in range
// and builds the report.
func Compute(ctx context.Context, src Source, hostelID string, from, to time.Time, loc *time.Location) (*Report, error) {
	if !to.After(from) {
		return nil, fmt.Errorf("empty report range %s..%s", from, to)
	}
	bookings, err := src.BookingsStartedBetween(ctx, hostelID, from, to)
	if err != nil {
		return nil, err
	}
	fulfilled, err := src.FulfilledBetween(ctx, hostelID, from, to)
	if err != nil {
		return nil, err
	}
	r := Build(bookings, fulfilled, loc)
	r.From, r.To = from, to
	return &r, nil
}

// Build projects bookings and fulfilled entries into a report. Promoted
// bookings are counted like any other, and also in Promotions.
func Build(bookings []model.Booking, fulfilled []model.WaitlistEntry, loc *time.Location) Report {
	r := Report{CountsByStatus: make(map[model.BookingStatus]int)}
	for _, b := range bookings {
		r.Total++
		r.CountsByStatus[b.Status]++
		r.PeakHours[b.StartTime.In(loc).Hour()]++
		if b.CancelReason != nil && *b.CancelReason == model.CancelNoShow {
			r.NoShows++
		}
		if b.PromotedFrom != nil {
			r.Promotions++
		}
	}
	if r.Total > 0 {
		r.NoShowRate = round2(float64(r.NoShows) / float64(r.Total))
	}

	var waited time.Duration
	for _, e := range fulfilled {
		if e.FulfilledAt == nil {
			continue
		}
		r.FulfilledEntries++
		waited += e.FulfilledAt.Sub(e.JoinedAt)
	}
	if r.FulfilledEntries > 0 {
		r.AvgTurnaroundMinutes = round2(waited.Minutes() / float64(r.FulfilledEntries))
	}
	return r
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
