package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Expense is a payment made by one participant on behalf of several.
type Expense struct {
	// ID is unique within the trip and derived from the creation time.
	ID int64 `json:"id"`

	// Payer is the participant who paid the full amount.
	Payer string `json:"payer"`

	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`

	// Date is the calendar day of the expense (YYYY-MM-DD).
	Date string `json:"date"`

	// Splits attribute the amount to participants. They always add up to Amount.
	Splits []Split `json:"splits"`

	CreatedAt time.Time `json:"createdAt"`
}

// Split is the share of one expense owed by one participant.
type Split struct {
	Participant string          `json:"participant"`
	Amount      decimal.Decimal `json:"amount"`
}

// ExpenseInput carries caller-supplied fields for a new expense.
type ExpenseInput struct {
	Payer       string
	Amount      decimal.Decimal
	Description string
	Date        string // optional, defaults to the creation day
	Splits      []Split
}

// NewExpense validates input and builds an expense with the given id.
//
// The split sum must match the amount within Epsilon. A residual inside the
// tolerance is folded into the largest split so the stored splits add up to
// the amount exactly and balances stay conserved.
func NewExpense(id int64, input ExpenseInput, now time.Time) (Expense, error) {
	payer := strings.TrimSpace(input.Payer)
	if payer == "" {
		return Expense{}, invalid("payer", ErrInvalidParticipant)
	}
	if !input.Amount.IsPositive() {
		return Expense{}, invalid("amount", ErrInvalidAmount)
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return Expense{}, invalid("description", ErrInvalidDescription)
	}
	date, err := NormalizeDate(input.Date)
	if err != nil {
		return Expense{}, invalid("date", err)
	}
	if date == "" {
		date = Today(now)
	}

	splits, err := normalizeSplits(input.Amount, input.Splits)
	if err != nil {
		return Expense{}, err
	}

	return Expense{
		ID:          id,
		Payer:       payer,
		Amount:      input.Amount,
		Description: description,
		Date:        date,
		Splits:      splits,
		CreatedAt:   now.UTC(),
	}, nil
}

func normalizeSplits(amount decimal.Decimal, in []Split) ([]Split, error) {
	if len(in) == 0 {
		return nil, invalid("splits", ErrSplitSumMismatch)
	}

	splits := make([]Split, len(in))
	seen := make(map[string]bool, len(in))
	sum := decimal.Zero
	largest := 0
	for i, s := range in {
		name := strings.TrimSpace(s.Participant)
		if name == "" {
			return nil, invalid("splits", ErrInvalidParticipant)
		}
		if seen[name] {
			return nil, invalid("splits", ErrDuplicateSplit)
		}
		seen[name] = true
		if s.Amount.IsNegative() {
			return nil, invalid("splits", ErrNegativeSplit)
		}
		splits[i] = Split{Participant: name, Amount: s.Amount}
		sum = sum.Add(s.Amount)
		if s.Amount.GreaterThan(splits[largest].Amount) {
			largest = i
		}
	}

	residual := amount.Sub(sum)
	if residual.Abs().GreaterThan(Epsilon) {
		return nil, invalid("splits", ErrSplitSumMismatch)
	}
	if !residual.IsZero() {
		adjusted := splits[largest].Amount.Add(residual)
		if adjusted.IsNegative() {
			return nil, invalid("splits", ErrSplitSumMismatch)
		}
		splits[largest].Amount = adjusted
	}
	return splits, nil
}

// Involves reports whether name pays for or shares in the expense.
func (e *Expense) Involves(name string) bool {
	if e.Payer == name {
		return true
	}
	for _, s := range e.Splits {
		if s.Participant == name {
			return true
		}
	}
	return false
}
