// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/travelsplit/internal/models"
	"github.com/mmynk/travelsplit/internal/storage"
	"github.com/mmynk/travelsplit/internal/storage/migrate"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection serializes writers and keeps the pragmas in effect.
	db.SetMaxOpenConns(1)

	if err := migrate.Up(context.Background(), db, migrate.SQLite); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateTrip inserts the trip and all of its entries in one transaction.
func (s *SQLiteStore) CreateTrip(ctx context.Context, trip *models.Trip) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO trips (name, location, start_date, end_date, start_date_inferred, end_date_inferred, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			trip.Name, trip.Location, trip.StartDate, trip.EndDate,
			trip.StartDateInferred, trip.EndDateInferred, trip.CreatedAt.UnixNano(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert trip: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read trip id: %w", err)
		}
		if err := insertEntries(ctx, tx, id, trip); err != nil {
			return err
		}
		trip.ID = id
		return nil
	})
}

// GetTrip retrieves a trip by ID, including participants, expenses and transfers.
func (s *SQLiteStore) GetTrip(ctx context.Context, id int64) (*models.Trip, error) {
	row := s.db.QueryRowContext(ctx, selectTrip+" WHERE id = ?", id)
	trip, err := scanTrip(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("trip %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}
	if err := loadEntries(ctx, s.db, trip); err != nil {
		return nil, err
	}
	return trip, nil
}

// ListTrips returns every trip ordered by ID.
func (s *SQLiteStore) ListTrips(ctx context.Context) ([]*models.Trip, error) {
	rows, err := s.db.QueryContext(ctx, selectTrip+" ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	defer rows.Close()

	trips := []*models.Trip{}
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}
		trips = append(trips, trip)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trips: %w", err)
	}
	// Entries are loaded after the cursor is closed; the pool has one connection.
	rows.Close()

	for _, trip := range trips {
		if err := loadEntries(ctx, s.db, trip); err != nil {
			return nil, err
		}
	}
	return trips, nil
}

// SaveTrip overwrites the trip row and replaces all of its entries.
func (s *SQLiteStore) SaveTrip(ctx context.Context, trip *models.Trip) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE trips SET name = ?, location = ?, start_date = ?, end_date = ?,
			 start_date_inferred = ?, end_date_inferred = ?, created_at = ?
			 WHERE id = ?`,
			trip.Name, trip.Location, trip.StartDate, trip.EndDate,
			trip.StartDateInferred, trip.EndDateInferred, trip.CreatedAt.UnixNano(), trip.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update trip: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("failed to update trip: %w", err)
		} else if n == 0 {
			return fmt.Errorf("trip %d: %w", trip.ID, storage.ErrNotFound)
		}

		if err := deleteEntries(ctx, tx, trip.ID); err != nil {
			return err
		}
		return insertEntries(ctx, tx, trip.ID, trip)
	})
}

// DeleteTrip removes the trip; foreign keys cascade to its entries.
func (s *SQLiteStore) DeleteTrip(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM trips WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete trip: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete trip: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("trip %d: %w", id, storage.ErrNotFound)
	}
	return nil
}

// ReplaceAll deletes every trip and inserts trips with their own IDs.
// AUTOINCREMENT keeps later IDs above the highest one ever used.
func (s *SQLiteStore) ReplaceAll(ctx context.Context, trips []*models.Trip) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM trips"); err != nil {
			return fmt.Errorf("failed to clear trips: %w", err)
		}
		for _, trip := range trips {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO trips (id, name, location, start_date, end_date, start_date_inferred, end_date_inferred, created_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				trip.ID, trip.Name, trip.Location, trip.StartDate, trip.EndDate,
				trip.StartDateInferred, trip.EndDateInferred, trip.CreatedAt.UnixNano(),
			)
			if err != nil {
				return fmt.Errorf("failed to insert trip %d: %w", trip.ID, err)
			}
			if err := insertEntries(ctx, tx, trip.ID, trip); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SQLiteStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
