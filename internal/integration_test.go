package internal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hostel-facilities-backend/config"
	"hostel-facilities-backend/internal/booking"
	"hostel-facilities-backend/internal/db"
	"hostel-facilities-backend/internal/events"
	"hostel-facilities-backend/internal/model"
	"hostel-facilities-backend/internal/reaper"
	"hostel-facilities-backend/internal/store"
)

type harness struct {
	db     *gorm.DB
	svc    *booking.Service
	reaper *reaper.Service
	now    time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	testDB, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err, "failed to connect to the in-memory database")
	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.Migrate(testDB))

	cfg := config.Default()
	h := &harness{db: testDB, now: time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)}
	s := store.NewGormStore(testDB)
	h.svc = booking.NewService(s, booking.PolicyFromConfig(cfg.Booking), nil, events.Nop{})
	h.svc.SetClock(func() time.Time { return h.now })
	h.reaper = reaper.NewService(&cfg.Reaper, h.svc.Policy().GracePeriod, s, h.svc)
	return h
}

func (h *harness) at(hh, mm int) time.Time {
	return time.Date(2026, 10, 17, hh, mm, 0, 0, time.UTC)
}

func (h *harness) status(t *testing.T, bookingID string) model.BookingStatus {
	t.Helper()
	var b model.Booking
	require.NoError(t, h.db.First(&b, "id = ?", bookingID).Error)
	return b.Status
}

// TestCancellationLifecycle walks a slot from booking through a conflict,
// a waitlist join and a cancellation that hands the rest of it over.
func TestCancellationLifecycle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	washer, err := h.svc.CreateResource(ctx, "h1", model.ResourceLaundry, "Washer 1")
	require.NoError(t, err)

	// A books 10:00-11:30.
	a, err := h.svc.Book(ctx, "userA", washer.ID, h.at(10, 0), h.at(11, 30))
	require.NoError(t, err)

	// B is too late for the same slot and queues up.
	_, err = h.svc.Book(ctx, "userB", washer.ID, h.at(10, 0), h.at(11, 30))
	require.True(t, errors.Is(err, booking.ErrSlotTaken), "got %v", err)
	h.now = h.at(10, 1)
	entry, err := h.svc.JoinWaitlist(ctx, "userB", "h1", model.ResourceLaundry)
	require.NoError(t, err)

	// A cancels at 10:50 with 40 minutes left.
	h.now = h.at(10, 50)
	res, err := h.svc.CancelAndReassign(ctx, a.ID, model.CancelByUser)
	require.NoError(t, err)
	assert.Equal(t, booking.OutcomeReassigned, res.Outcome)
	assert.Equal(t, 40, res.RemainingMinutes)
	require.NotNil(t, res.Promoted)
	assert.Equal(t, "userB", res.Promoted.UserID)
	assert.Equal(t, h.at(10, 50).Unix(), res.Promoted.StartTime.Unix())
	assert.Equal(t, h.at(11, 30).Unix(), res.Promoted.EndTime.Unix())
	assert.Equal(t, entry.ID, res.Entry.ID)

	assert.Equal(t, model.BookingCancelled, h.status(t, a.ID))
	assert.Equal(t, model.BookingConfirmed, h.status(t, res.Promoted.ID))
}

// TestShortRemainderIsNotReassigned: 20 minutes left is below the threshold.
func TestShortRemainderIsNotReassigned(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	washer, err := h.svc.CreateResource(ctx, "h1", model.ResourceLaundry, "Washer 1")
	require.NoError(t, err)
	a, err := h.svc.Book(ctx, "userA", washer.ID, h.at(10, 0), h.at(10, 45))
	require.NoError(t, err)
	entry, err := h.svc.JoinWaitlist(ctx, "userB", "h1", model.ResourceLaundry)
	require.NoError(t, err)

	h.now = h.at(10, 25)
	res, err := h.svc.CancelAndReassign(ctx, a.ID, model.CancelByUser)
	require.NoError(t, err)
	assert.Equal(t, booking.OutcomeBelowThreshold, res.Outcome)
	assert.Equal(t, 20, res.RemainingMinutes)

	var stored model.WaitlistEntry
	require.NoError(t, h.db.First(&stored, "id = ?", entry.ID).Error)
	assert.Equal(t, model.WaitlistWaiting, stored.Status)

	var count int64
	require.NoError(t, h.db.Model(&model.Booking{}).Count(&count).Error)
	assert.EqualValues(t, 1, count, "no new booking is created")
}

// TestReaperForfeitsNoShows runs the sweep the way the background loop does.
func TestReaperForfeitsNoShows(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	washer, err := h.svc.CreateResource(ctx, "h1", model.ResourceLaundry, "Washer 1")
	require.NoError(t, err)
	court, err := h.svc.CreateResource(ctx, "h1", model.ResourceBadminton, "Court A")
	require.NoError(t, err)

	noShow, err := h.svc.Book(ctx, "userA", washer.ID, h.at(10, 0), h.at(10, 45))
	require.NoError(t, err)
	onTime, err := h.svc.Book(ctx, "userC", court.ID, h.at(10, 0), h.at(10, 45))
	require.NoError(t, err)
	later, err := h.svc.Book(ctx, "userD", court.ID, h.at(12, 0), h.at(12, 45))
	require.NoError(t, err)
	_, err = h.svc.JoinWaitlist(ctx, "userB", "h1", model.ResourceLaundry)
	require.NoError(t, err)

	// userC showed up; the usage flow marks the booking ACTIVE.
	require.NoError(t, h.db.Model(&model.Booking{}).Where("id = ?", onTime.ID).
		Update("status", string(model.BookingActive)).Error)

	// Still inside the grace window.
	h.now = h.at(10, 14)
	sum := h.reaper.SweepOnce(ctx)
	assert.Equal(t, reaper.Summary{}, sum)
	assert.Equal(t, model.BookingConfirmed, h.status(t, noShow.ID))

	h.now = h.at(10, 16)
	sum = h.reaper.SweepOnce(ctx)
	assert.Equal(t, reaper.Summary{Overdue: 1, Reassigned: 1}, sum)
	assert.Equal(t, model.BookingCancelled, h.status(t, noShow.ID))
	assert.Equal(t, model.BookingActive, h.status(t, onTime.ID))
	assert.Equal(t, model.BookingConfirmed, h.status(t, later.ID))

	var cancelled model.Booking
	require.NoError(t, h.db.First(&cancelled, "id = ?", noShow.ID).Error)
	require.NotNil(t, cancelled.CancelReason)
	assert.Equal(t, model.CancelNoShow, *cancelled.CancelReason)

	var promoted model.Booking
	require.NoError(t, h.db.First(&promoted, "promoted_from = ?", noShow.ID).Error)
	assert.Equal(t, "userB", promoted.UserID)
	assert.Equal(t, h.at(10, 16).Unix(), promoted.StartTime.Unix())

	// The promoted booking started at 10:16; the next sweep after its own grace
	// period forfeits it too, and nobody is left waiting.
	h.now = h.at(10, 17)
	assert.Equal(t, reaper.Summary{}, h.reaper.SweepOnce(ctx), "sweeps are idempotent")

	h.now = h.at(10, 32)
	sum = h.reaper.SweepOnce(ctx)
	assert.Equal(t, reaper.Summary{Overdue: 1, Released: 1}, sum)
	assert.Equal(t, model.BookingCancelled, h.status(t, promoted.ID))
}
