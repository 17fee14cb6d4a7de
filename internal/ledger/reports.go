package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmynk/travelsplit/internal/calculator"
)

// CalculateBalances returns the net balance of every participant.
func (s *Service) CalculateBalances(ctx context.Context, tripID int64) (calculator.Balances, error) {
	trip, err := s.load(ctx, tripID)
	if err != nil {
		return nil, err
	}
	return calculator.CalculateBalances(trip), nil
}

// CalculateDebtMatrix returns who owes whom within the trip.
func (s *Service) CalculateDebtMatrix(ctx context.Context, tripID int64) (*calculator.DebtMatrix, error) {
	trip, err := s.load(ctx, tripID)
	if err != nil {
		return nil, err
	}
	return calculator.CalculateDebtMatrix(trip), nil
}

// CalculateSettlements returns the balances together with the payments that
// settle them, both computed from the same snapshot.
func (s *Service) CalculateSettlements(ctx context.Context, tripID int64) (calculator.Balances, []calculator.Settlement, error) {
	trip, err := s.load(ctx, tripID)
	if err != nil {
		return nil, nil, err
	}
	balances := calculator.CalculateBalances(trip)
	settlements, err := calculator.CalculateSettlements(balances)
	if err != nil {
		slog.Error("Settlement planning failed", "trip_id", tripID, "error", err)
		return nil, nil, fmt.Errorf("failed to plan settlements for trip %d: %w", tripID, err)
	}
	return balances, settlements, nil
}

// GetTripStats returns the display aggregates for the trip.
func (s *Service) GetTripStats(ctx context.Context, tripID int64) (calculator.TripStats, error) {
	trip, err := s.load(ctx, tripID)
	if err != nil {
		return calculator.TripStats{}, err
	}
	return calculator.GetTripStats(trip), nil
}
