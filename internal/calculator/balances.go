// Package calculator derives balances, pairwise debts, settlement plans and
// statistics from a trip snapshot. Every function here is pure: it never
// mutates the trip and returns the same result for the same input.
package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/travelsplit/internal/models"
)

// Epsilon is the tolerance below which an amount counts as settled.
var Epsilon = models.Epsilon

// MemberBalance represents the balance information for one participant.
type MemberBalance struct {
	Participant string
	NetBalance  decimal.Decimal // Positive = is owed money, Negative = owes money
	TotalPaid   decimal.Decimal // Expenses paid plus transfers sent
	TotalOwed   decimal.Decimal // Expense shares plus transfers received
}

// Balances lists member balances in participant insertion order.
type Balances []MemberBalance

// Get returns the net balance of name.
func (b Balances) Get(name string) (decimal.Decimal, bool) {
	for _, m := range b {
		if m.Participant == name {
			return m.NetBalance, true
		}
	}
	return decimal.Zero, false
}

// Sum adds up all net balances. It is zero for any consistent trip.
func (b Balances) Sum() decimal.Decimal {
	sum := decimal.Zero
	for _, m := range b {
		sum = sum.Add(m.NetBalance)
	}
	return sum
}

// Net returns the net balances keyed by participant.
func (b Balances) Net() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(b))
	for _, m := range b {
		out[m.Participant] = m.NetBalance
	}
	return out
}

// IsSettled reports whether amount is within Epsilon of zero.
func IsSettled(amount decimal.Decimal) bool {
	return amount.Abs().LessThanOrEqual(Epsilon)
}

// CalculateBalances folds the trip history into a balance per participant.
//
// Algorithm:
//   - every current participant starts at zero
//   - for each expense the payer paid the full amount and each split
//     participant owes their share
//   - for each transfer the sender paid and the receiver is owed
//   - net = paid - owed
//
// References to names that are no longer participants are ignored. No
// rounding is applied; use IsSettled to classify near-zero results.
func CalculateBalances(trip *models.Trip) Balances {
	balances := make(Balances, len(trip.Participants))
	index := make(map[string]int, len(trip.Participants))
	for i, p := range trip.Participants {
		balances[i] = MemberBalance{
			Participant: p,
			NetBalance:  decimal.Zero,
			TotalPaid:   decimal.Zero,
			TotalOwed:   decimal.Zero,
		}
		index[p] = i
	}

	paid := func(name string, amount decimal.Decimal) {
		if i, ok := index[name]; ok {
			balances[i].TotalPaid = balances[i].TotalPaid.Add(amount)
		}
	}
	owed := func(name string, amount decimal.Decimal) {
		if i, ok := index[name]; ok {
			balances[i].TotalOwed = balances[i].TotalOwed.Add(amount)
		}
	}

	for _, e := range trip.Expenses {
		paid(e.Payer, e.Amount)
		for _, s := range e.Splits {
			owed(s.Participant, s.Amount)
		}
	}

	for _, t := range trip.Transfers {
		paid(t.From, t.Amount)
		owed(t.To, t.Amount)
	}

	for i := range balances {
		balances[i].NetBalance = balances[i].TotalPaid.Sub(balances[i].TotalOwed)
	}
	return balances
}
