package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when a row addressed by id does not exist.
var ErrNotFound = errors.New("record not found")

// Lock options passed to ForUpdate.
const (
	Wait       = ""
	SkipLocked = "SKIP LOCKED"
)

// ForUpdate adds an exclusive row lock to the query. SQLite has no row locks;
// its database-level write lock already serializes writers.
func ForUpdate(tx *gorm.DB, options string) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE", Options: options})
}

// LockByID selects the row with the given id and holds an exclusive lock on it
// until the surrounding transaction ends.
func LockByID[T any](tx *gorm.DB, id string) (*T, error) {
	var row T
	if err := ForUpdate(tx, Wait).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

// WithLocked runs fn in a transaction after locking the row with the given id.
// Any error returned by fn rolls the transaction back.
func WithLocked[T any](ctx context.Context, db *gorm.DB, id string, fn func(tx *gorm.DB, row *T) error) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := LockByID[T](tx, id)
		if err != nil {
			return err
		}
		return fn(tx, row)
	})
}

// notFound maps gorm's not-found error onto ErrNotFound.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("failed to load %s: %w", what, err)
}
