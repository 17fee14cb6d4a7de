package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.uber.org/multierr"

	"github.com/mmynk/travelsplit/internal/models"
)

// ImportMode selects how imported trips combine with existing ones.
type ImportMode string

const (
	// ImportReplace discards every stored trip and keeps the imported ids.
	ImportReplace ImportMode = "replace"
	// ImportAppend adds the imported trips under freshly assigned ids.
	ImportAppend ImportMode = "append"
)

// ErrUnsupportedVersion rejects export envelopes from an unknown format.
var ErrUnsupportedVersion = errors.New("unsupported export version")

// ErrUnknownImportMode rejects anything but replace and append.
var ErrUnknownImportMode = errors.New("import mode must be replace or append")

// ParseImportMode maps "" to ImportReplace, the behaviour of a plain restore.
func ParseImportMode(s string) (ImportMode, error) {
	switch ImportMode(s) {
	case "", ImportReplace:
		return ImportReplace, nil
	case ImportAppend:
		return ImportAppend, nil
	default:
		return "", &models.ValidationError{Field: "mode", Err: ErrUnknownImportMode}
	}
}

// Export snapshots every trip into the portable envelope.
func (s *Service) Export(ctx context.Context) (*models.Export, error) {
	trips, err := s.ListTrips(ctx)
	if err != nil {
		return nil, err
	}
	return &models.Export{
		Trips:      trips,
		ExportDate: s.now().UTC(),
		Version:    models.ExportVersion,
	}, nil
}

// Import loads the trips of an export envelope.
//
// Every trip is re-validated first and all problems are reported together;
// nothing is written unless the whole envelope is valid. Replace swaps the
// data set atomically. Append creates the trips one by one with new ids.
func (s *Service) Import(ctx context.Context, data *models.Export, mode ImportMode) (int, error) {
	if data == nil {
		return 0, &models.ValidationError{Field: "trips", Err: errors.New("missing export data")}
	}
	if data.Version != "" && data.Version != models.ExportVersion {
		return 0, &models.ValidationError{Field: "version", Err: fmt.Errorf("%w: %q", ErrUnsupportedVersion, data.Version)}
	}
	if mode != ImportReplace && mode != ImportAppend {
		return 0, &models.ValidationError{Field: "mode", Err: ErrUnknownImportMode}
	}

	trips, err := s.prepareImport(data.Trips, mode)
	if err != nil {
		slog.Warn("Import rejected", "trips", len(data.Trips), "error", err)
		return 0, err
	}

	s.importMu.Lock()
	defer s.importMu.Unlock()

	switch mode {
	case ImportReplace:
		if err := s.store.ReplaceAll(ctx, trips); err != nil {
			slog.Error("Import failed", "mode", mode, "error", err)
			return 0, fmt.Errorf("failed to replace trips: %w", err)
		}
	case ImportAppend:
		for i, trip := range trips {
			if err := s.store.CreateTrip(ctx, trip); err != nil {
				slog.Error("Import failed", "mode", mode, "imported", i, "error", err)
				return i, fmt.Errorf("failed to append trip %q: %w", trip.Name, err)
			}
		}
	}

	s.metrics.Mutation("import")
	slog.Info("Import completed", "mode", mode, "trips", len(trips))
	return len(trips), nil
}

// prepareImport normalizes copies of trips and assigns ids where needed.
func (s *Service) prepareImport(in []*models.Trip, mode ImportMode) ([]*models.Trip, error) {
	now := s.now()
	trips := make([]*models.Trip, 0, len(in))
	seen := make(map[int64]bool)
	var maxID int64
	var errs error

	for i, src := range in {
		if src == nil {
			errs = multierr.Append(errs, fmt.Errorf("trip #%d: empty record", i+1))
			continue
		}
		trip := src.Clone()
		if err := trip.Normalize(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("trip #%d (%q): %w", i+1, src.Name, err))
			continue
		}
		if trip.CreatedAt.IsZero() {
			trip.CreatedAt = now.UTC()
		}
		if mode == ImportReplace && trip.ID > 0 {
			if seen[trip.ID] {
				errs = multierr.Append(errs, fmt.Errorf("trip #%d (%q): duplicate id %d", i+1, src.Name, trip.ID))
				continue
			}
			seen[trip.ID] = true
			maxID = max(maxID, trip.ID)
		}
		trips = append(trips, trip)
	}
	if errs != nil {
		return nil, &models.ValidationError{Field: "trips", Err: errs}
	}

	for _, trip := range trips {
		if mode == ImportAppend {
			trip.ID = 0
			continue
		}
		if trip.ID <= 0 {
			maxID++
			trip.ID = maxID
		}
	}
	return trips, nil
}
