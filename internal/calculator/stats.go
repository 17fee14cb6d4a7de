package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/travelsplit/internal/models"
)

// TripStats are display aggregates for a trip.
type TripStats struct {
	TotalExpenses    decimal.Decimal
	TotalTransfers   decimal.Decimal
	ExpenseCount     int
	TransferCount    int
	ParticipantCount int
	// AveragePerPerson is TotalExpenses / ParticipantCount, or zero for a
	// trip without participants.
	AveragePerPerson decimal.Decimal
}

// GetTripStats sums expenses and transfers and averages expenses per person.
func GetTripStats(trip *models.Trip) TripStats {
	stats := TripStats{
		TotalExpenses:    decimal.Zero,
		TotalTransfers:   decimal.Zero,
		ExpenseCount:     len(trip.Expenses),
		TransferCount:    len(trip.Transfers),
		ParticipantCount: len(trip.Participants),
		AveragePerPerson: decimal.Zero,
	}
	for _, e := range trip.Expenses {
		stats.TotalExpenses = stats.TotalExpenses.Add(e.Amount)
	}
	for _, t := range trip.Transfers {
		stats.TotalTransfers = stats.TotalTransfers.Add(t.Amount)
	}
	if stats.ParticipantCount > 0 {
		stats.AveragePerPerson = stats.TotalExpenses.Div(decimal.NewFromInt(int64(stats.ParticipantCount)))
	}
	return stats
}
