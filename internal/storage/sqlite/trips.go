package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mmynk/travelsplit/internal/models"
)

const selectTrip = `SELECT id, name, location, start_date, end_date, start_date_inferred, end_date_inferred, created_at FROM trips`

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrip(row rowScanner) (*models.Trip, error) {
	trip := &models.Trip{
		Participants: []string{},
		Expenses:     []models.Expense{},
		Transfers:    []models.Transfer{},
	}
	var createdAt int64
	err := row.Scan(&trip.ID, &trip.Name, &trip.Location, &trip.StartDate, &trip.EndDate,
		&trip.StartDateInferred, &trip.EndDateInferred, &createdAt)
	if err != nil {
		return nil, err
	}
	trip.CreatedAt = fromNanos(createdAt)
	return trip, nil
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

// insertEntries writes participants, expenses with their splits, and
// transfers. Position columns preserve slice order.
func insertEntries(ctx context.Context, q querier, tripID int64, trip *models.Trip) error {
	for i, name := range trip.Participants {
		_, err := q.ExecContext(ctx,
			"INSERT INTO trip_participants (trip_id, position, name) VALUES (?, ?, ?)",
			tripID, i, name,
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
	}

	for i, e := range trip.Expenses {
		_, err := q.ExecContext(ctx,
			`INSERT INTO expenses (trip_id, id, position, payer, amount, description, date, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			tripID, e.ID, i, e.Payer, e.Amount.String(), e.Description, e.Date, e.CreatedAt.UnixNano(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense: %w", err)
		}

		for j, split := range e.Splits {
			_, err = q.ExecContext(ctx,
				`INSERT INTO expense_splits (trip_id, expense_id, position, participant, amount)
				 VALUES (?, ?, ?, ?, ?)`,
				tripID, e.ID, j, split.Participant, split.Amount.String(),
			)
			if err != nil {
				return fmt.Errorf("failed to insert expense split: %w", err)
			}
		}
	}

	for i, t := range trip.Transfers {
		_, err := q.ExecContext(ctx,
			`INSERT INTO transfers (trip_id, id, position, from_participant, to_participant, amount, date, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			tripID, t.ID, i, t.From, t.To, t.Amount.String(), t.Date, t.CreatedAt.UnixNano(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert transfer: %w", err)
		}
	}

	return nil
}

func deleteEntries(ctx context.Context, q querier, tripID int64) error {
	// Splits cascade from expenses.
	for _, table := range []string{"trip_participants", "expenses", "transfers"} {
		if _, err := q.ExecContext(ctx, "DELETE FROM "+table+" WHERE trip_id = ?", tripID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

// loadEntries fills in participants, expenses and transfers for trip.
func loadEntries(ctx context.Context, q querier, trip *models.Trip) error {
	rows, err := q.QueryContext(ctx,
		"SELECT name FROM trip_participants WHERE trip_id = ? ORDER BY position",
		trip.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get participants: %w", err)
	}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan participant: %w", err)
		}
		trip.Participants = append(trip.Participants, name)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate participants: %w", err)
	}

	if err := loadExpenses(ctx, q, trip); err != nil {
		return err
	}

	rows, err = q.QueryContext(ctx,
		`SELECT id, from_participant, to_participant, amount, date, created_at
		 FROM transfers WHERE trip_id = ? ORDER BY position`,
		trip.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get transfers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t models.Transfer
		var createdAt int64
		if err := rows.Scan(&t.ID, &t.From, &t.To, &t.Amount, &t.Date, &createdAt); err != nil {
			return fmt.Errorf("failed to scan transfer: %w", err)
		}
		t.CreatedAt = fromNanos(createdAt)
		trip.Transfers = append(trip.Transfers, t)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate transfers: %w", err)
	}
	return nil
}

func loadExpenses(ctx context.Context, q querier, trip *models.Trip) error {
	rows, err := q.QueryContext(ctx,
		`SELECT id, payer, amount, description, date, created_at
		 FROM expenses WHERE trip_id = ? ORDER BY position`,
		trip.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get expenses: %w", err)
	}
	index := make(map[int64]int)
	for rows.Next() {
		var e models.Expense
		var createdAt int64
		if err := rows.Scan(&e.ID, &e.Payer, &e.Amount, &e.Description, &e.Date, &createdAt); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan expense: %w", err)
		}
		e.CreatedAt = fromNanos(createdAt)
		e.Splits = []models.Split{}
		index[e.ID] = len(trip.Expenses)
		trip.Expenses = append(trip.Expenses, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate expenses: %w", err)
	}

	splitRows, err := q.QueryContext(ctx,
		`SELECT expense_id, participant, amount FROM expense_splits
		 WHERE trip_id = ? ORDER BY expense_id, position`,
		trip.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get expense splits: %w", err)
	}
	defer splitRows.Close()

	for splitRows.Next() {
		var expenseID int64
		var split models.Split
		if err := splitRows.Scan(&expenseID, &split.Participant, &split.Amount); err != nil {
			return fmt.Errorf("failed to scan expense split: %w", err)
		}
		i, ok := index[expenseID]
		if !ok {
			continue
		}
		trip.Expenses[i].Splits = append(trip.Expenses[i].Splits, split)
	}
	if err := splitRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate expense splits: %w", err)
	}
	return nil
}
