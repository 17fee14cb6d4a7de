package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/travelsplit/internal/models"
)

var cent = decimal.New(1, -2)

// EqualSplits divides amount evenly among participants.
//
// Each share is the amount divided by the head count, truncated to cents.
// Leftover cents go one each to the first participants, and anything below a
// cent goes to the last one, so the splits always add up to amount exactly.
func EqualSplits(amount decimal.Decimal, participants []string) ([]models.Split, error) {
	if len(participants) == 0 {
		return nil, fmt.Errorf("must have at least one participant")
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("amount must be positive")
	}

	n := decimal.NewFromInt(int64(len(participants)))
	share := amount.Div(n).Truncate(2)
	remainder := amount.Sub(share.Mul(n))

	splits := make([]models.Split, len(participants))
	for i, p := range participants {
		splits[i] = models.Split{Participant: p, Amount: share}
		if remainder.GreaterThanOrEqual(cent) {
			splits[i].Amount = splits[i].Amount.Add(cent)
			remainder = remainder.Sub(cent)
		}
	}
	if !remainder.IsZero() {
		last := len(splits) - 1
		splits[last].Amount = splits[last].Amount.Add(remainder)
	}
	return splits, nil
}
