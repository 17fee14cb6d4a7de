// Package memory provides an in-process implementation of storage.Store.
// Data lives only as long as the process; it backs tests and STORAGE=memory.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mmynk/travelsplit/internal/models"
	"github.com/mmynk/travelsplit/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store keeps trips in a map guarded by a RWMutex. Trips are cloned on the
// way in and out so callers never share memory with the store.
type Store struct {
	mu     sync.RWMutex
	trips  map[int64]*models.Trip
	lastID int64
}

// New returns an empty store.
func New() *Store {
	return &Store{trips: make(map[int64]*models.Trip)}
}

func (s *Store) CreateTrip(ctx context.Context, trip *models.Trip) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastID++
	trip.ID = s.lastID
	s.trips[trip.ID] = trip.Clone()
	return nil
}

func (s *Store) GetTrip(ctx context.Context, id int64) (*models.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trip, ok := s.trips[id]
	if !ok {
		return nil, fmt.Errorf("trip %d: %w", id, storage.ErrNotFound)
	}
	return trip.Clone(), nil
}

func (s *Store) ListTrips(ctx context.Context) ([]*models.Trip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trips := make([]*models.Trip, 0, len(s.trips))
	for _, trip := range s.trips {
		trips = append(trips, trip.Clone())
	}
	sort.Slice(trips, func(i, j int) bool { return trips[i].ID < trips[j].ID })
	return trips, nil
}

func (s *Store) SaveTrip(ctx context.Context, trip *models.Trip) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.trips[trip.ID]; !ok {
		return fmt.Errorf("trip %d: %w", trip.ID, storage.ErrNotFound)
	}
	s.trips[trip.ID] = trip.Clone()
	return nil
}

func (s *Store) DeleteTrip(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.trips[id]; !ok {
		return fmt.Errorf("trip %d: %w", id, storage.ErrNotFound)
	}
	delete(s.trips, id)
	return nil
}

func (s *Store) ReplaceAll(ctx context.Context, trips []*models.Trip) error {
	replaced := make(map[int64]*models.Trip, len(trips))
	for _, trip := range trips {
		if _, dup := replaced[trip.ID]; dup || trip.ID <= 0 {
			return fmt.Errorf("failed to replace trips: invalid or duplicate id %d", trip.ID)
		}
		replaced[trip.ID] = trip.Clone()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.trips = replaced
	for id := range replaced {
		s.lastID = max(s.lastID, id)
	}
	return nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}
