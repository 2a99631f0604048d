package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hostel-facilities-backend/internal/db"
	"hostel-facilities-backend/internal/model"
	"hostel-facilities-backend/internal/store"
)

const testHostel = "hostel-1"

var day = time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)

// at returns the test day at hh:mm UTC.
func at(hh, mm int) time.Time {
	return day.Add(time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute)
}

type notification struct {
	UserID string
	Title  string
}

// recorder captures notifications and published events.
type recorder struct {
	mu     sync.Mutex
	notes  []notification
	events []string
}

func (r *recorder) Notify(userID, title, body string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, notification{UserID: userID, Title: title})
}

func (r *recorder) PublishJSON(ctx context.Context, key string, v any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, key)
	return nil
}

func (r *recorder) notified(userID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var titles []string
	for _, n := range r.notes {
		if n.UserID == userID {
			titles = append(titles, n.Title)
		}
	}
	return titles
}

type fixture struct {
	svc   *Service
	db    *gorm.DB
	rec   *recorder
	clock time.Time
}

func (f *fixture) setClock(t time.Time) {
	f.clock = t
}

// newFixture builds a service over a private in-memory SQLite database. A single
// connection serializes transactions the way row locks do on PostgreSQL.
func newFixture(t *testing.T, mutate ...func(*Policy)) *fixture {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.Migrate(gdb))

	policy := DefaultPolicy()
	policy.Location = time.UTC
	for _, m := range mutate {
		m(&policy)
	}

	f := &fixture{db: gdb, rec: &recorder{}, clock: at(10, 0)}
	f.svc = NewService(store.NewGormStore(gdb), policy, f.rec, f.rec)
	f.svc.SetClock(func() time.Time { return f.clock })
	return f
}

func (f *fixture) resource(t *testing.T, typ model.ResourceType, name string) *model.Resource {
	t.Helper()
	r, err := f.svc.CreateResource(context.Background(), testHostel, typ, name)
	require.NoError(t, err)
	return r
}

func (f *fixture) book(t *testing.T, userID, resourceID string, start time.Time) *model.Booking {
	t.Helper()
	b, err := f.svc.Book(context.Background(), userID, resourceID, start, start.Add(f.svc.Policy().SlotLength))
	require.NoError(t, err)
	return b
}

func (f *fixture) reload(t *testing.T, bookingID string) *model.Booking {
	t.Helper()
	var b model.Booking
	require.NoError(t, f.db.First(&b, "id = ?", bookingID).Error)
	return &b
}

func (f *fixture) entry(t *testing.T, entryID string) *model.WaitlistEntry {
	t.Helper()
	var e model.WaitlistEntry
	require.NoError(t, f.db.First(&e, "id = ?", entryID).Error)
	return &e
}
