package ledger

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/mmynk/travelsplit/internal/calculator"
	"github.com/mmynk/travelsplit/internal/models"
)

// ErrConflictingSplits is returned when an expense names both explicit splits
// and a participant list to split equally.
var ErrConflictingSplits = errors.New("give either splits or splitEqually, not both")

// ExpenseRequest describes a new expense. Either Splits or SplitEqually must
// be given; SplitEqually divides the amount evenly with calculator.EqualSplits.
type ExpenseRequest struct {
	Payer        string
	Amount       decimal.Decimal
	Description  string
	Date         string
	Splits       []models.Split
	SplitEqually []string
}

// TransferRequest describes money sent from one participant to another.
type TransferRequest = models.TransferInput

// AddExpense validates the request and appends the expense to the trip.
func (s *Service) AddExpense(ctx context.Context, tripID int64, req ExpenseRequest) (models.Expense, error) {
	splits := req.Splits
	if len(req.SplitEqually) > 0 {
		if len(req.Splits) > 0 {
			return models.Expense{}, &models.ValidationError{Field: "splits", Err: ErrConflictingSplits}
		}
		// A non-positive amount is left for NewExpense to reject.
		if req.Amount.IsPositive() {
			var err error
			splits, err = calculator.EqualSplits(req.Amount, req.SplitEqually)
			if err != nil {
				return models.Expense{}, &models.ValidationError{Field: "splitEqually", Err: err}
			}
		}
	}

	var expense models.Expense
	_, err := s.mutate(ctx, tripID, "add_expense", func(trip *models.Trip) error {
		now := s.now()
		e, err := models.NewExpense(trip.NextEntryID(now), models.ExpenseInput{
			Payer:       req.Payer,
			Amount:      req.Amount,
			Description: req.Description,
			Date:        req.Date,
			Splits:      splits,
		}, now)
		if err != nil {
			return err
		}
		if err := trip.AddExpense(e); err != nil {
			return err
		}
		expense = e
		return nil
	})
	if err != nil {
		slog.Warn("AddExpense rejected", "trip_id", tripID, "error", err)
		return models.Expense{}, err
	}
	slog.Info("Expense added",
		"trip_id", tripID,
		"expense_id", expense.ID,
		"payer", expense.Payer,
		"amount", expense.Amount.String(),
	)
	return expense, nil
}

// AddTransfer validates the request and appends the transfer to the trip.
func (s *Service) AddTransfer(ctx context.Context, tripID int64, req TransferRequest) (models.Transfer, error) {
	var transfer models.Transfer
	_, err := s.mutate(ctx, tripID, "add_transfer", func(trip *models.Trip) error {
		now := s.now()
		tr, err := models.NewTransfer(trip.NextEntryID(now), req, now)
		if err != nil {
			return err
		}
		if err := trip.AddTransfer(tr); err != nil {
			return err
		}
		transfer = tr
		return nil
	})
	if err != nil {
		slog.Warn("AddTransfer rejected", "trip_id", tripID, "error", err)
		return models.Transfer{}, err
	}
	slog.Info("Transfer added",
		"trip_id", tripID,
		"transfer_id", transfer.ID,
		"from", transfer.From,
		"to", transfer.To,
		"amount", transfer.Amount.String(),
	)
	return transfer, nil
}

// DeleteExpense removes one expense. Dates derived from it are kept.
func (s *Service) DeleteExpense(ctx context.Context, tripID, expenseID int64) error {
	_, err := s.mutate(ctx, tripID, "delete_expense", func(trip *models.Trip) error {
		if !trip.RemoveExpense(expenseID) {
			return &models.NotFoundError{Entity: "expense", ID: expenseID}
		}
		return nil
	})
	if err != nil {
		return err
	}
	slog.Info("Expense deleted", "trip_id", tripID, "expense_id", expenseID)
	return nil
}

// DeleteTransfer removes one transfer.
func (s *Service) DeleteTransfer(ctx context.Context, tripID, transferID int64) error {
	_, err := s.mutate(ctx, tripID, "delete_transfer", func(trip *models.Trip) error {
		if !trip.RemoveTransfer(transferID) {
			return &models.NotFoundError{Entity: "transfer", ID: transferID}
		}
		return nil
	})
	if err != nil {
		return err
	}
	slog.Info("Transfer deleted", "trip_id", tripID, "transfer_id", transferID)
	return nil
}
