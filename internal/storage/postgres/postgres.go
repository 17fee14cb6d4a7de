// Package postgres provides a PostgreSQL implementation of storage.Store.
//
// Each trip is stored as one JSONB document next to its id, name and
// creation time, so a trip is always read and written as a whole.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
	"github.com/sethvargo/go-retry"

	"github.com/mmynk/travelsplit/internal/models"
	"github.com/mmynk/travelsplit/internal/storage"
	"github.com/mmynk/travelsplit/internal/storage/migrate"
)

var _ storage.Store = (*Store)(nil)

// Store implements storage.Store on PostgreSQL.
type Store struct {
	db *sql.DB
}

// New connects to dsn, waiting for the server with exponential backoff, and
// runs migrations.
func New(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	backoff := retry.WithMaxRetries(5, retry.NewExponential(100*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			slog.Warn("Database not ready", "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := migrate.Up(ctx, db, migrate.Postgres); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) CreateTrip(ctx context.Context, trip *models.Trip) error {
	doc, err := json.Marshal(trip)
	if err != nil {
		return fmt.Errorf("failed to encode trip: %w", err)
	}

	var id int64
	err = s.db.QueryRowContext(ctx,
		"INSERT INTO trips (name, created_at, doc) VALUES ($1, $2, $3) RETURNING id",
		trip.Name, trip.CreatedAt, doc,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("failed to insert trip: %w", err)
	}
	trip.ID = id
	return nil
}

func (s *Store) GetTrip(ctx context.Context, id int64) (*models.Trip, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx, "SELECT doc FROM trips WHERE id = $1", id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("trip %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}
	return decodeTrip(id, doc)
}

func (s *Store) ListTrips(ctx context.Context) ([]*models.Trip, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, doc FROM trips ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	defer rows.Close()

	trips := []*models.Trip{}
	for rows.Next() {
		var id int64
		var doc []byte
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}
		trip, err := decodeTrip(id, doc)
		if err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trips: %w", err)
	}
	return trips, nil
}

func (s *Store) SaveTrip(ctx context.Context, trip *models.Trip) error {
	doc, err := json.Marshal(trip)
	if err != nil {
		return fmt.Errorf("failed to encode trip: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE trips SET name = $1, created_at = $2, doc = $3 WHERE id = $4",
		trip.Name, trip.CreatedAt, doc, trip.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update trip: %w", err)
	}
	return expectRow(res, trip.ID)
}

func (s *Store) DeleteTrip(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM trips WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete trip: %w", err)
	}
	return expectRow(res, id)
}

// ReplaceAll swaps the table contents and moves the id sequence past the
// highest imported id, never backwards.
func (s *Store) ReplaceAll(ctx context.Context, trips []*models.Trip) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM trips"); err != nil {
		return fmt.Errorf("failed to clear trips: %w", err)
	}
	for _, trip := range trips {
		doc, err := json.Marshal(trip)
		if err != nil {
			return fmt.Errorf("failed to encode trip %d: %w", trip.ID, err)
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO trips (id, name, created_at, doc) VALUES ($1, $2, $3, $4)",
			trip.ID, trip.Name, trip.CreatedAt, doc,
		)
		if err != nil {
			return fmt.Errorf("failed to insert trip %d: %w", trip.ID, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		SELECT setval(pg_get_serial_sequence('trips', 'id'),
			GREATEST(
				COALESCE((SELECT MAX(id) FROM trips), 1),
				(SELECT last_value FROM trips_id_seq)
			))`)
	if err != nil {
		return fmt.Errorf("failed to advance trip id sequence: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func decodeTrip(id int64, doc []byte) (*models.Trip, error) {
	trip := &models.Trip{}
	if err := json.Unmarshal(doc, trip); err != nil {
		return nil, fmt.Errorf("failed to decode trip %d: %w", id, err)
	}
	trip.ID = id
	// JSON null decodes to nil; callers expect empty collections.
	return trip.Clone(), nil
}

func expectRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("trip %d: %w", id, storage.ErrNotFound)
	}
	return nil
}
