package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hostel-facilities-backend/internal/model"
)

// Store defines the read-side and single-row operations of the service.
// Multi-row invariants are enforced by the transactional helpers in tx.go,
// which operate on the *gorm.DB handed out by DB().
type Store interface {
	DB() *gorm.DB

	CreateResource(ctx context.Context, r *model.Resource) error
	GetResource(ctx context.Context, id string) (*model.Resource, error)
	ListResources(ctx context.Context, hostelID string, t model.ResourceType) ([]model.Resource, error)
	SetOperational(ctx context.Context, id string, operational bool, note *string) (*model.Resource, error)

	GetBooking(ctx context.Context, id string) (*model.Booking, error)
	HeldStarts(ctx context.Context, resourceID string, from, to time.Time) ([]time.Time, error)
	CurrentHolders(ctx context.Context, resourceIDs []string, at time.Time) (map[string]model.Booking, error)
	OverdueBookings(ctx context.Context, cutoff time.Time) ([]model.Booking, error)
	BookingsForUser(ctx context.Context, userID string) ([]model.Booking, error)
	HoldingBookings(ctx context.Context, hostelID string) ([]model.Booking, error)
	BookingsStartedBetween(ctx context.Context, hostelID string, from, to time.Time) ([]model.Booking, error)

	WaitlistForUser(ctx context.Context, userID string) ([]model.WaitlistEntry, error)
	WaitingEntries(ctx context.Context, hostelID string) ([]model.WaitlistEntry, error)
	FulfilledBetween(ctx context.Context, hostelID string, from, to time.Time) ([]model.WaitlistEntry, error)

	UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error
	GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint, userID string) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

func (s *gormStore) CreateResource(ctx context.Context, r *model.Resource) error {
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}
	return nil
}

func (s *gormStore) GetResource(ctx context.Context, id string) (*model.Resource, error) {
	var r model.Resource
	if err := s.db.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "resource")
	}
	return &r, nil
}

func (s *gormStore) ListResources(ctx context.Context, hostelID string, t model.ResourceType) ([]model.Resource, error) {
	q := s.db.WithContext(ctx).Where("hostel_id = ?", hostelID)
	if t != "" {
		q = q.Where("type = ?", string(t))
	}
	var resources []model.Resource
	if err := q.Order("type ASC").Order("name ASC").Find(&resources).Error; err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	return resources, nil
}

// SetOperational toggles the operational flag under the resource row lock, so a
// booking attempt in flight either sees the old state or waits for the new one.
func (s *gormStore) SetOperational(ctx context.Context, id string, operational bool, note *string) (*model.Resource, error) {
	var updated *model.Resource
	err := WithLocked(ctx, s.db, id, func(tx *gorm.DB, r *model.Resource) error {
		r.IsOperational = operational
		r.MaintenanceNote = note
		if operational {
			r.MaintenanceNote = nil
		}
		if err := tx.Model(r).Select("is_operational", "maintenance_note").Updates(r).Error; err != nil {
			return fmt.Errorf("failed to update resource %s: %w", id, err)
		}
		updated = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *gormStore) GetBooking(ctx context.Context, id string) (*model.Booking, error) {
	var b model.Booking
	if err := s.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "booking")
	}
	return &b, nil
}

// HeldStarts returns the start times of slot-holding bookings on the resource
// that start within [from, to).
func (s *gormStore) HeldStarts(ctx context.Context, resourceID string, from, to time.Time) ([]time.Time, error) {
	var bookings []model.Booking
	err := s.db.WithContext(ctx).
		Select("start_time").
		Where("resource_id = ? AND status IN ?", resourceID, holdingStatuses()).
		Where("start_time >= ? AND start_time < ?", from.UTC(), to.UTC()).
		Order("start_time ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load booked starts for resource %s: %w", resourceID, err)
	}
	starts := make([]time.Time, len(bookings))
	for i, b := range bookings {
		starts[i] = b.StartTime
	}
	return starts, nil
}

// CurrentHolders maps each resource id to the holding booking covering at, if any.
func (s *gormStore) CurrentHolders(ctx context.Context, resourceIDs []string, at time.Time) (map[string]model.Booking, error) {
	holders := make(map[string]model.Booking)
	if len(resourceIDs) == 0 {
		return holders, nil
	}
	var bookings []model.Booking
	err := s.db.WithContext(ctx).
		Where("resource_id IN ? AND status IN ?", resourceIDs, holdingStatuses()).
		Where("start_time <= ? AND end_time > ?", at.UTC(), at.UTC()).
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load current holders: %w", err)
	}
	for _, b := range bookings {
		holders[b.ResourceID] = b
	}
	return holders, nil
}

// OverdueBookings returns CONFIRMED bookings that started before cutoff.
func (s *gormStore) OverdueBookings(ctx context.Context, cutoff time.Time) ([]model.Booking, error) {
	var bookings []model.Booking
	err := s.db.WithContext(ctx).
		Where("status = ? AND start_time < ?", string(model.BookingConfirmed), cutoff.UTC()).
		Order("start_time ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load overdue bookings: %w", err)
	}
	return bookings, nil
}

func (s *gormStore) BookingsForUser(ctx context.Context, userID string) ([]model.Booking, error) {
	var bookings []model.Booking
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("start_time DESC").Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("failed to load bookings for user %s: %w", userID, err)
	}
	return bookings, nil
}

func (s *gormStore) HoldingBookings(ctx context.Context, hostelID string) ([]model.Booking, error) {
	var bookings []model.Booking
	err := s.db.WithContext(ctx).
		Joins("JOIN resources r ON r.id = bookings.resource_id").
		Where("r.hostel_id = ? AND bookings.status IN ?", hostelID, holdingStatuses()).
		Order("bookings.start_time ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load active bookings: %w", err)
	}
	return bookings, nil
}

func (s *gormStore) BookingsStartedBetween(ctx context.Context, hostelID string, from, to time.Time) ([]model.Booking, error) {
	var bookings []model.Booking
	err := s.db.WithContext(ctx).
		Joins("JOIN resources r ON r.id = bookings.resource_id").
		Where("r.hostel_id = ?", hostelID).
		Where("bookings.start_time >= ? AND bookings.start_time < ?", from.UTC(), to.UTC()).
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings in range: %w", err)
	}
	return bookings, nil
}

func (s *gormStore) WaitlistForUser(ctx context.Context, userID string) ([]model.WaitlistEntry, error) {
	var entries []model.WaitlistEntry
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("joined_at DESC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to load waitlist for user %s: %w", userID, err)
	}
	return entries, nil
}

func (s *gormStore) WaitingEntries(ctx context.Context, hostelID string) ([]model.WaitlistEntry, error) {
	var entries []model.WaitlistEntry
	err := s.db.WithContext(ctx).
		Where("hostel_id = ? AND status = ?", hostelID, string(model.WaitlistWaiting)).
		Order("type ASC").Order("joined_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load waitlist: %w", err)
	}
	return entries, nil
}

func (s *gormStore) FulfilledBetween(ctx context.Context, hostelID string, from, to time.Time) ([]model.WaitlistEntry, error) {
	var entries []model.WaitlistEntry
	err := s.db.WithContext(ctx).
		Where("hostel_id = ? AND status = ?", hostelID, string(model.WaitlistFulfilled)).
		Where("fulfilled_at >= ? AND fulfilled_at < ?", from.UTC(), to.UTC()).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load fulfilled entries: %w", err)
	}
	return entries, nil
}

func (s *gormStore) UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "p256dh", "auth"}),
	}).Create(sub).Error
}

func (s *gormStore) GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	if err := s.db.WithContext(ctx).First(&sub, "endpoint = ?", endpoint).Error; err != nil {
		return nil, notFound(err, "subscription")
	}
	return &sub, nil
}

func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint, userID string) error {
	res := s.db.WithContext(ctx).Where("endpoint = ? AND user_id = ?", endpoint, userID).Delete(&model.PushSubscription{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func holdingStatuses() []string {
	out := make([]string, len(model.HoldingStatuses))
	for i, st := range model.HoldingStatuses {
		out[i] = string(st)
	}
	return out
}

// IsDuplicate reports whether err is a unique-constraint violation.
// The sqlite driver used in tests does not translate constraint errors.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed")
}
