package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Transfer is a direct payment between two participants, typically made to
// settle up. From paid To.
type Transfer struct {
	// ID is unique within the trip and derived from the creation time.
	ID int64 `json:"id"`

	// From is the participant who paid (debtor settling up).
	From string `json:"from"`

	// To is the participant who received the payment.
	To string `json:"to"`

	Amount decimal.Decimal `json:"amount"`

	// Date is the calendar day of the payment (YYYY-MM-DD).
	Date string `json:"date"`

	CreatedAt time.Time `json:"createdAt"`
}

// TransferInput carries caller-supplied fields for a new transfer.
type TransferInput struct {
	From   string
	To     string
	Amount decimal.Decimal
	Date   string // optional, defaults to the creation day
}

// NewTransfer validates input and builds a transfer with the given id.
func NewTransfer(id int64, input TransferInput, now time.Time) (Transfer, error) {
	from := strings.TrimSpace(input.From)
	to := strings.TrimSpace(input.To)
	if from == "" {
		return Transfer{}, invalid("from", ErrInvalidParticipant)
	}
	if to == "" {
		return Transfer{}, invalid("to", ErrInvalidParticipant)
	}
	if from == to {
		return Transfer{}, invalid("to", ErrSameParticipant)
	}
	if !input.Amount.IsPositive() {
		return Transfer{}, invalid("amount", ErrInvalidAmount)
	}
	date, err := NormalizeDate(input.Date)
	if err != nil {
		return Transfer{}, invalid("date", err)
	}
	if date == "" {
		date = Today(now)
	}

	return Transfer{
		ID:        id,
		From:      from,
		To:        to,
		Amount:    input.Amount,
		Date:      date,
		CreatedAt: now.UTC(),
	}, nil
}

// Involves reports whether name sent or received the transfer.
func (t *Transfer) Involves(name string) bool {
	return t.From == name || t.To == name
}
