// Package ledger is the application layer over the trip model. It loads trips
// from a storage.Store, applies validated mutations one writer at a time per
// trip, and runs the calculators over stored snapshots.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mmynk/travelsplit/internal/metrics"
	"github.com/mmynk/travelsplit/internal/models"
	"github.com/mmynk/travelsplit/internal/storage"
)

// Service implements the ledger operations on top of a Store.
type Service struct {
	store   storage.Store
	now     func() time.Time
	metrics *metrics.Metrics

	// Imports take the write side so that no mutation interleaves with a
	// full data set swap.
	importMu sync.RWMutex
	locks    keyedMutex
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithMetrics counts committed mutations.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New creates a Service backed by store.
func New(store storage.Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		now:   time.Now,
		locks: keyedMutex{locks: make(map[int64]*refLock)},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// load fetches a trip snapshot, translating a missing id into a NotFoundError.
func (s *Service) load(ctx context.Context, id int64) (*models.Trip, error) {
	trip, err := s.store.GetTrip(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, &models.NotFoundError{Entity: "trip", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load trip %d: %w", id, err)
	}
	return trip, nil
}

// errUnchanged tells mutate that fn made no change and nothing is written.
var errUnchanged = errors.New("trip unchanged")

// mutate runs fn against a fresh copy of the trip and saves the result as a
// whole. Nothing is written when fn fails, so a rejected change never leaves
// the trip half-updated. When fn returns errUnchanged the loaded trip is
// returned without a save.
func (s *Service) mutate(ctx context.Context, id int64, op string, fn func(trip *models.Trip) error) (*models.Trip, error) {
	s.importMu.RLock()
	defer s.importMu.RUnlock()
	unlock := s.locks.lock(id)
	defer unlock()

	trip, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(trip); err != nil {
		if errors.Is(err, errUnchanged) {
			return trip, nil
		}
		return nil, err
	}
	if err := s.store.SaveTrip(ctx, trip); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, &models.NotFoundError{Entity: "trip", ID: id}
		}
		slog.Error("Failed to save trip", "trip_id", id, "operation", op, "error", err)
		return nil, fmt.Errorf("failed to save trip %d: %w", id, err)
	}
	s.metrics.Mutation(op)
	return trip, nil
}

// keyedMutex hands out one mutex per trip id and forgets it once nobody
// holds or waits for it.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[int64]*refLock
}

type refLock struct {
	sync.Mutex
	refs int
}

func (k *keyedMutex) lock(id int64) (unlock func()) {
	k.mu.Lock()
	l, ok := k.locks[id]
	if !ok {
		l = &refLock{}
		k.locks[id] = l
	}
	l.refs++
	k.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, id)
		}
		k.mu.Unlock()
	}
}
