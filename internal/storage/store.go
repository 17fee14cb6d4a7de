// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/travelsplit/internal/models"
)

// ErrNotFound is returned when a trip ID does not exist in the store.
var ErrNotFound = errors.New("trip not found")

// Store defines the interface for trip storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL,
// memory) without changing the ledger service.
//
// A trip is always read and written as a whole record, including its
// participants, expenses and transfers. Implementations must not retain the
// trip values passed in or handed out.
type Store interface {
	// CreateTrip persists a new trip and assigns trip.ID.
	// IDs start at 1 and are never reused.
	CreateTrip(ctx context.Context, trip *models.Trip) error

	// GetTrip retrieves a trip by its ID.
	// Returns ErrNotFound if the trip does not exist.
	GetTrip(ctx context.Context, id int64) (*models.Trip, error)

	// ListTrips returns all trips ordered by ID.
	ListTrips(ctx context.Context) ([]*models.Trip, error)

	// SaveTrip overwrites an existing trip with the given record.
	// Returns ErrNotFound if the trip does not exist.
	SaveTrip(ctx context.Context, trip *models.Trip) error

	// DeleteTrip removes a trip and everything it owns.
	// Returns ErrNotFound if the trip does not exist.
	DeleteTrip(ctx context.Context, id int64) error

	// ReplaceAll atomically swaps the whole data set for trips, keeping
	// their IDs. Trips created afterwards get IDs above all imported ones.
	ReplaceAll(ctx context.Context, trips []*models.Trip) error

	// Close releases any resources held by the store.
	Close() error
}
