package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.uber.org/multierr"

	"github.com/mmynk/travelsplit/internal/models"
	"github.com/mmynk/travelsplit/internal/storage"
)

// TripInput describes a new trip. Participants are optional and added in
// order; duplicates collapse.
type TripInput struct {
	Name         string
	Location     string
	StartDate    string
	EndDate      string
	Participants []string
}

// TripUpdate changes the fields that are set and leaves the rest alone.
// Setting a date to "" clears it so it can be derived from expenses again.
type TripUpdate struct {
	Name      *string
	Location  *string
	StartDate *string
	EndDate   *string
}

// CreateTrip validates input and stores a new trip.
func (s *Service) CreateTrip(ctx context.Context, input TripInput) (*models.Trip, error) {
	trip, err := models.NewTrip(input.Name, input.Location, input.StartDate, input.EndDate, s.now())
	if err != nil {
		return nil, err
	}
	var errs error
	for _, p := range input.Participants {
		if _, err := trip.AddParticipant(p); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	if errs != nil {
		return nil, errs
	}

	s.importMu.RLock()
	defer s.importMu.RUnlock()
	if err := s.store.CreateTrip(ctx, trip); err != nil {
		slog.Error("CreateTrip failed", "error", err)
		return nil, fmt.Errorf("failed to create trip: %w", err)
	}
	s.metrics.Mutation("create_trip")
	slog.Info("Trip created", "trip_id", trip.ID, "name", trip.Name, "participants", len(trip.Participants))
	return trip, nil
}

// GetTrip returns a snapshot of the trip.
func (s *Service) GetTrip(ctx context.Context, id int64) (*models.Trip, error) {
	return s.load(ctx, id)
}

// ListTrips returns every trip ordered by id.
func (s *Service) ListTrips(ctx context.Context) ([]*models.Trip, error) {
	trips, err := s.store.ListTrips(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	return trips, nil
}

// UpdateTrip applies update to the trip's descriptive fields.
func (s *Service) UpdateTrip(ctx context.Context, id int64, update TripUpdate) (*models.Trip, error) {
	trip, err := s.mutate(ctx, id, "update_trip", func(trip *models.Trip) error {
		if update.Name != nil {
			if err := trip.Rename(*update.Name); err != nil {
				return err
			}
		}
		if update.Location != nil {
			trip.SetLocation(*update.Location)
		}
		if update.StartDate == nil && update.EndDate == nil {
			return nil
		}

		start, end := trip.StartDate, trip.EndDate
		if update.StartDate != nil {
			start = *update.StartDate
		}
		if update.EndDate != nil {
			end = *update.EndDate
		}
		// An untouched date keeps its inferred mark.
		startInferred := trip.StartDateInferred && update.StartDate == nil
		endInferred := trip.EndDateInferred && update.EndDate == nil
		if err := trip.SetDates(start, end); err != nil {
			return err
		}
		trip.StartDateInferred, trip.EndDateInferred = startInferred, endInferred
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.Info("Trip updated", "trip_id", id)
	return trip, nil
}

// DeleteTrip removes the trip and everything it owns.
func (s *Service) DeleteTrip(ctx context.Context, id int64) error {
	s.importMu.RLock()
	defer s.importMu.RUnlock()
	unlock := s.locks.lock(id)
	defer unlock()

	err := s.store.DeleteTrip(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return &models.NotFoundError{Entity: "trip", ID: id}
	}
	if err != nil {
		slog.Error("DeleteTrip failed", "trip_id", id, "error", err)
		return fmt.Errorf("failed to delete trip %d: %w", id, err)
	}
	s.metrics.Mutation("delete_trip")
	slog.Info("Trip deleted", "trip_id", id)
	return nil
}

// AddParticipant adds name to the trip. It reports false when the name was
// already present, which is not an error.
func (s *Service) AddParticipant(ctx context.Context, id int64, name string) (*models.Trip, bool, error) {
	var added bool
	trip, err := s.mutate(ctx, id, "add_participant", func(trip *models.Trip) error {
		var err error
		added, err = trip.AddParticipant(name)
		if err == nil && !added {
			return errUnchanged
		}
		return err
	})
	if err != nil {
		return nil, false, err
	}
	slog.Info("Participant added", "trip_id", id, "name", name, "added", added)
	return trip, added, nil
}

// RemoveParticipant removes name and every expense and transfer that
// references them. The result counts what the cascade deleted.
func (s *Service) RemoveParticipant(ctx context.Context, id int64, name string) (models.RemovalResult, error) {
	var removed models.RemovalResult
	_, err := s.mutate(ctx, id, "remove_participant", func(trip *models.Trip) error {
		res, ok := trip.RemoveParticipant(name)
		if !ok {
			return &models.NotFoundError{Entity: "participant", Name: name}
		}
		removed = res
		return nil
	})
	if err != nil {
		return models.RemovalResult{}, err
	}
	slog.Info("Participant removed",
		"trip_id", id,
		"name", name,
		"expenses_deleted", removed.Expenses,
		"transfers_deleted", removed.Transfers,
	)
	return removed, nil
}
