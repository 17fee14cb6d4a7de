package calculator

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/mmynk/travelsplit/internal/models"
)

// DebtEdge represents a debt from one person to another.
type DebtEdge struct {
	From   string // Person who owes
	To     string // Person who is owed
	Amount decimal.Decimal
}

// DebtMatrix holds what each participant owes each other participant.
// For any pair at most one direction is non-zero.
type DebtMatrix struct {
	participants []string
	debts        map[string]map[string]decimal.Decimal
}

// Get returns how much debtor owes creditor. Unknown pairs owe nothing.
func (m *DebtMatrix) Get(debtor, creditor string) decimal.Decimal {
	return m.debts[debtor][creditor]
}

// Edges lists the non-zero debts, ordered by debtor then creditor in
// participant order.
func (m *DebtMatrix) Edges() []DebtEdge {
	var edges []DebtEdge
	for _, from := range m.participants {
		for _, to := range m.participants {
			if from == to {
				continue
			}
			if amount := m.debts[from][to]; amount.IsPositive() {
				edges = append(edges, DebtEdge{From: from, To: to, Amount: amount})
			}
		}
	}
	return edges
}

// Map returns a copy of the full matrix, including zero entries.
func (m *DebtMatrix) Map() map[string]map[string]decimal.Decimal {
	out := make(map[string]map[string]decimal.Decimal, len(m.debts))
	for from, row := range m.debts {
		out[from] = make(map[string]decimal.Decimal, len(row))
		for to, amount := range row {
			out[from][to] = amount
		}
	}
	return out
}

// MarshalJSON encodes the matrix as {"debtor": {"creditor": amount}}.
func (m *DebtMatrix) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.debts)
}

func (m *DebtMatrix) add(from, to string, amount decimal.Decimal) {
	m.debts[from][to] = m.debts[from][to].Add(amount)
}

func (m *DebtMatrix) has(from, to string) bool {
	row, ok := m.debts[from]
	if !ok {
		return false
	}
	_, ok = row[to]
	return ok
}

// CalculateDebtMatrix folds the trip history into pairwise debts.
//
// Algorithm:
//   - each split participant other than the payer owes the payer their share
//   - opposite debts within a pair are netted so only one direction remains
//   - each transfer, in order, reduces what the sender owes the receiver;
//     an overpayment flips into a debt of the receiver towards the sender
//
// The flip is applied per transfer, so transfer order decides where a residual
// lands. Names that are no longer participants are skipped.
func CalculateDebtMatrix(trip *models.Trip) *DebtMatrix {
	m := &DebtMatrix{
		participants: append([]string(nil), trip.Participants...),
		debts:        make(map[string]map[string]decimal.Decimal, len(trip.Participants)),
	}
	for _, from := range trip.Participants {
		m.debts[from] = make(map[string]decimal.Decimal, len(trip.Participants)-1)
		for _, to := range trip.Participants {
			if from != to {
				m.debts[from][to] = decimal.Zero
			}
		}
	}

	for _, e := range trip.Expenses {
		for _, s := range e.Splits {
			if s.Participant != e.Payer && m.has(s.Participant, e.Payer) {
				m.add(s.Participant, e.Payer, s.Amount)
			}
		}
	}

	m.netPairs()

	for _, t := range trip.Transfers {
		if !m.has(t.From, t.To) {
			continue
		}
		remaining := m.debts[t.From][t.To].Sub(t.Amount)
		if remaining.IsNegative() {
			m.debts[t.From][t.To] = decimal.Zero
			m.add(t.To, t.From, remaining.Abs())
			continue
		}
		m.debts[t.From][t.To] = remaining
	}

	return m
}

// netPairs cancels mutual debts so that each pair owes in one direction only.
func (m *DebtMatrix) netPairs() {
	for i, a := range m.participants {
		for _, b := range m.participants[i+1:] {
			ab, ba := m.debts[a][b], m.debts[b][a]
			switch ab.Cmp(ba) {
			case 1:
				m.debts[a][b], m.debts[b][a] = ab.Sub(ba), decimal.Zero
			case -1:
				m.debts[a][b], m.debts[b][a] = decimal.Zero, ba.Sub(ab)
			default:
				m.debts[a][b], m.debts[b][a] = decimal.Zero, decimal.Zero
			}
		}
	}
}
