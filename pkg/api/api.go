// Package api defines the request and response messages of the
// travelsplit.v1.TripService RPCs. Messages travel as JSON; money amounts are
// decimal strings such as "12.50".
package api

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trip is the full trip record.
type Trip struct {
	ID                int64      `json:"id"`
	Name              string     `json:"name"`
	Location          string     `json:"location"`
	StartDate         string     `json:"startDate"`
	EndDate           string     `json:"endDate"`
	StartDateInferred bool       `json:"startDateInferred,omitempty"`
	EndDateInferred   bool       `json:"endDateInferred,omitempty"`
	Participants      []string   `json:"participants"`
	Expenses          []Expense  `json:"expenses"`
	Transfers         []Transfer `json:"transfers"`
	CreatedAt         time.Time  `json:"createdAt"`
}

type Expense struct {
	ID          int64           `json:"id"`
	Payer       string          `json:"payer"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
	Splits      []Split         `json:"splits"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type Split struct {
	Participant string          `json:"participant"`
	Amount      decimal.Decimal `json:"amount"`
}

// Transfer records that From paid To.
type Transfer struct {
	ID        int64           `json:"id"`
	From      string          `json:"from"`
	To        string          `json:"to"`
	Amount    decimal.Decimal `json:"amount"`
	Date      string          `json:"date"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Balance is positive when the participant is owed money.
type Balance struct {
	Participant string          `json:"participant"`
	NetBalance  decimal.Decimal `json:"netBalance"`
	TotalPaid   decimal.Decimal `json:"totalPaid"`
	TotalOwed   decimal.Decimal `json:"totalOwed"`
	Settled     bool            `json:"settled"`
}

// Settlement is a suggested payment from a debtor to a creditor.
type Settlement struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

// Debt is one non-zero entry of the debt matrix.
type Debt struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

type TripStats struct {
	TotalExpenses    decimal.Decimal `json:"totalExpenses"`
	TotalTransfers   decimal.Decimal `json:"totalTransfers"`
	ExpenseCount     int             `json:"expenseCount"`
	TransferCount    int             `json:"transferCount"`
	ParticipantCount int             `json:"participantCount"`
	AveragePerPerson decimal.Decimal `json:"averagePerPerson"`
}

// ExportData is the backup envelope shared by the Export RPC, the /export
// download and scheduled backups.
type ExportData struct {
	Trips      []*Trip   `json:"trips"`
	ExportDate time.Time `json:"exportDate"`
	Version    string    `json:"version"`
}

type CreateTripRequest struct {
	Name         string   `json:"name"`
	Location     string   `json:"location,omitempty"`
	StartDate    string   `json:"startDate,omitempty"`
	EndDate      string   `json:"endDate,omitempty"`
	Participants []string `json:"participants,omitempty"`
}

type CreateTripResponse struct {
	Trip *Trip `json:"trip"`
}

type GetTripRequest struct {
	TripID int64 `json:"tripId"`
}

type GetTripResponse struct {
	Trip *Trip `json:"trip"`
}

type ListTripsRequest struct{}

type ListTripsResponse struct {
	Trips []*Trip `json:"trips"`
}

// UpdateTripRequest changes only the fields that are present.
type UpdateTripRequest struct {
	TripID    int64   `json:"tripId"`
	Name      *string `json:"name,omitempty"`
	Location  *string `json:"location,omitempty"`
	StartDate *string `json:"startDate,omitempty"`
	EndDate   *string `json:"endDate,omitempty"`
}

type UpdateTripResponse struct {
	Trip *Trip `json:"trip"`
}

type DeleteTripRequest struct {
	TripID int64 `json:"tripId"`
}

type DeleteTripResponse struct{}

type AddParticipantRequest struct {
	TripID int64  `json:"tripId"`
	Name   string `json:"name"`
}

// AddParticipantResponse reports Added=false when the name already existed.
type AddParticipantResponse struct {
	Added bool  `json:"added"`
	Trip  *Trip `json:"trip"`
}

type RemoveParticipantRequest struct {
	TripID int64  `json:"tripId"`
	Name   string `json:"name"`
}

// RemoveParticipantResponse counts the entries deleted along with the participant.
type RemoveParticipantResponse struct {
	DeletedExpenses  int `json:"deletedExpenses"`
	DeletedTransfers int `json:"deletedTransfers"`
}

// AddExpenseRequest takes either Splits or SplitEqually.
type AddExpenseRequest struct {
	TripID       int64           `json:"tripId"`
	Payer        string          `json:"payer"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
	Date         string          `json:"date,omitempty"`
	Splits       []Split         `json:"splits,omitempty"`
	SplitEqually []string        `json:"splitEqually,omitempty"`
}

type AddExpenseResponse struct {
	Expense Expense `json:"expense"`
}

type AddTransferRequest struct {
	TripID int64           `json:"tripId"`
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
	Date   string          `json:"date,omitempty"`
}

type AddTransferResponse struct {
	Transfer Transfer `json:"transfer"`
}

type DeleteExpenseRequest struct {
	TripID    int64 `json:"tripId"`
	ExpenseID int64 `json:"expenseId"`
}

type DeleteExpenseResponse struct{}

type DeleteTransferRequest struct {
	TripID     int64 `json:"tripId"`
	TransferID int64 `json:"transferId"`
}

type DeleteTransferResponse struct{}

type GetBalancesRequest struct {
	TripID int64 `json:"tripId"`
}

type GetBalancesResponse struct {
	Balances    []Balance    `json:"balances"`
	Settlements []Settlement `json:"settlements"`
}

type GetDebtMatrixRequest struct {
	TripID int64 `json:"tripId"`
}

// GetDebtMatrixResponse carries the full matrix keyed debtor then creditor,
// and its non-zero entries as a list.
type GetDebtMatrixResponse struct {
	Matrix map[string]map[string]decimal.Decimal `json:"matrix"`
	Debts  []Debt                                `json:"debts"`
}

type GetTripStatsRequest struct {
	TripID int64 `json:"tripId"`
}

type GetTripStatsResponse struct {
	Stats TripStats `json:"stats"`
}

type ExportRequest struct{}

type ExportResponse struct {
	Data *ExportData `json:"data"`
}

// ImportRequest restores Data. Mode is "replace" (default) or "append".
type ImportRequest struct {
	Mode string      `json:"mode,omitempty"`
	Data *ExportData `json:"data"`
}

type ImportResponse struct {
	Imported int `json:"imported"`
}
