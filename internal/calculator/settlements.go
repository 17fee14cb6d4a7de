package calculator

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// ErrInconsistentBalances means the balances handed to the planner do not add
// up to zero. Balances produced by CalculateBalances always do, so this points
// at a bug or at hand-built input.
var ErrInconsistentBalances = errors.New("balances do not sum to zero")

// Settlement is a suggested payment that moves balances toward zero.
type Settlement struct {
	From   string // Debtor who pays
	To     string // Creditor who receives
	Amount decimal.Decimal
}

type party struct {
	name      string
	remaining decimal.Decimal
}

// CalculateSettlements turns net balances into a short list of payments that
// zero them.
//
// Greedy algorithm: match the largest remaining debtor with the largest
// remaining creditor, settle the smaller of the two amounts, and move past
// whoever drops below Epsilon. Participants within Epsilon of zero take no
// part. Equal amounts keep their order in balances. The result has at most
// debtors+creditors-1 entries; it is minimal in the common cases but not
// guaranteed optimal in general.
func CalculateSettlements(balances Balances) ([]Settlement, error) {
	if sum := balances.Sum(); sum.Abs().GreaterThan(Epsilon) {
		return nil, fmt.Errorf("%w: off by %s", ErrInconsistentBalances, sum.StringFixed(2))
	}

	var debtors, creditors []*party
	for _, m := range balances {
		switch {
		case m.NetBalance.LessThan(Epsilon.Neg()):
			debtors = append(debtors, &party{name: m.Participant, remaining: m.NetBalance.Abs()})
		case m.NetBalance.GreaterThan(Epsilon):
			creditors = append(creditors, &party{name: m.Participant, remaining: m.NetBalance})
		}
	}

	byLargest := func(parties []*party) func(i, j int) bool {
		return func(i, j int) bool {
			return parties[i].remaining.GreaterThan(parties[j].remaining)
		}
	}
	sort.SliceStable(debtors, byLargest(debtors))
	sort.SliceStable(creditors, byLargest(creditors))

	settlements := []Settlement{}
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor, creditor := debtors[i], creditors[j]

		amount := decimal.Min(debtor.remaining, creditor.remaining)
		settlements = append(settlements, Settlement{
			From:   debtor.name,
			To:     creditor.name,
			Amount: amount,
		})

		debtor.remaining = debtor.remaining.Sub(amount)
		creditor.remaining = creditor.remaining.Sub(amount)

		if debtor.remaining.LessThan(Epsilon) {
			i++
		}
		if creditor.remaining.LessThan(Epsilon) {
			j++
		}
	}

	return settlements, nil
}
