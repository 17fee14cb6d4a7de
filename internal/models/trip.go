package models

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/multierr"
)

// Trip is the aggregate root of the ledger. It exclusively owns its
// participants, expenses and transfers.
//
// Participants are identified by their trimmed, case-sensitive names.
// Expenses and transfers may only reference current participants; removing a
// participant deletes every entry that references them.
type Trip struct {
	// ID is assigned by the store, starting at 1 and increasing.
	ID int64 `json:"id"`

	Name     string `json:"name"`
	Location string `json:"location"`

	// StartDate and EndDate are optional calendar days (YYYY-MM-DD).
	// When left empty they are derived from expense dates.
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`

	// StartDateInferred and EndDateInferred mark dates derived from expenses
	// rather than set by the user. Derived dates are refreshed on every new
	// expense; explicit dates are never touched.
	StartDateInferred bool `json:"startDateInferred,omitempty"`
	EndDateInferred   bool `json:"endDateInferred,omitempty"`

	// Participants keeps insertion order, which is also the order of
	// calculated balances.
	Participants []string `json:"participants"`

	Expenses  []Expense  `json:"expenses"`
	Transfers []Transfer `json:"transfers"`

	CreatedAt time.Time `json:"createdAt"`
}

// RemovalResult counts the entries deleted by a participant removal cascade.
type RemovalResult struct {
	Expenses  int
	Transfers int
}

// NewTrip validates the trip details and returns a trip without an ID.
func NewTrip(name, location, startDate, endDate string, now time.Time) (*Trip, error) {
	t := &Trip{
		Participants: []string{},
		Expenses:     []Expense{},
		Transfers:    []Transfer{},
		CreatedAt:    now.UTC(),
	}
	if err := t.Rename(name); err != nil {
		return nil, err
	}
	t.SetLocation(location)
	if err := t.SetDates(startDate, endDate); err != nil {
		return nil, err
	}
	return t, nil
}

// Rename sets the trip name.
func (t *Trip) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return invalid("name", ErrInvalidName)
	}
	t.Name = name
	return nil
}

// SetLocation sets the optional location.
func (t *Trip) SetLocation(location string) {
	t.Location = strings.TrimSpace(location)
}

// SetDates sets explicit trip dates. An empty value clears the date so it is
// derived from expenses again.
func (t *Trip) SetDates(startDate, endDate string) error {
	start, err := NormalizeDate(startDate)
	if err != nil {
		return invalid("startDate", err)
	}
	end, err := NormalizeDate(endDate)
	if err != nil {
		return invalid("endDate", err)
	}
	if start != "" && end != "" && start > end {
		return invalid("endDate", ErrInvalidDateRange)
	}
	t.StartDate, t.StartDateInferred = start, false
	t.EndDate, t.EndDateInferred = end, false
	return nil
}

// HasParticipant reports whether name is a current participant.
func (t *Trip) HasParticipant(name string) bool {
	return slices.Contains(t.Participants, name)
}

// AddParticipant adds a participant by trimmed name. Adding an existing name
// is a no-op that returns false without an error.
func (t *Trip) AddParticipant(name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, invalid("name", ErrInvalidParticipant)
	}
	if t.HasParticipant(name) {
		return false, nil
	}
	t.Participants = append(t.Participants, name)
	return true, nil
}

// RemoveParticipant removes name and cascades: every expense the participant
// paid for or shares in is deleted as a whole, and so is every transfer they
// sent or received. The cascade cannot be undone. It returns false when name
// is not a participant.
func (t *Trip) RemoveParticipant(name string) (RemovalResult, bool) {
	idx := slices.Index(t.Participants, name)
	if idx < 0 {
		return RemovalResult{}, false
	}
	t.Participants = slices.Delete(t.Participants, idx, idx+1)

	var res RemovalResult
	t.Expenses = slices.DeleteFunc(t.Expenses, func(e Expense) bool {
		if e.Involves(name) {
			res.Expenses++
			return true
		}
		return false
	})
	t.Transfers = slices.DeleteFunc(t.Transfers, func(tr Transfer) bool {
		if tr.Involves(name) {
			res.Transfers++
			return true
		}
		return false
	})
	return res, true
}

// AddExpense appends a validated expense and refreshes derived trip dates.
// Every participant the expense references must be current.
func (t *Trip) AddExpense(e Expense) error {
	if err := t.checkExpenseRefs(e); err != nil {
		return err
	}
	t.Expenses = append(t.Expenses, e)
	t.inferDates()
	return nil
}

// AddTransfer appends a validated transfer between current participants.
func (t *Trip) AddTransfer(tr Transfer) error {
	if !t.HasParticipant(tr.From) {
		return invalid("from", fmt.Errorf("%w: %s", ErrUnknownParticipant, tr.From))
	}
	if !t.HasParticipant(tr.To) {
		return invalid("to", fmt.Errorf("%w: %s", ErrUnknownParticipant, tr.To))
	}
	t.Transfers = append(t.Transfers, tr)
	return nil
}

// RemoveExpense deletes the expense with id. Derived dates are not recomputed.
func (t *Trip) RemoveExpense(id int64) bool {
	n := len(t.Expenses)
	t.Expenses = slices.DeleteFunc(t.Expenses, func(e Expense) bool { return e.ID == id })
	return len(t.Expenses) != n
}

// RemoveTransfer deletes the transfer with id.
func (t *Trip) RemoveTransfer(id int64) bool {
	n := len(t.Transfers)
	t.Transfers = slices.DeleteFunc(t.Transfers, func(tr Transfer) bool { return tr.ID == id })
	return len(t.Transfers) != n
}

// NextEntryID returns a time-based id for a new expense or transfer that is
// greater than every id already used in the trip.
func (t *Trip) NextEntryID(now time.Time) int64 {
	var maxID int64
	for _, e := range t.Expenses {
		maxID = max(maxID, e.ID)
	}
	for _, tr := range t.Transfers {
		maxID = max(maxID, tr.ID)
	}
	id := now.UnixMilli()
	if id <= maxID {
		id = maxID + 1
	}
	return id
}

// inferDates fills empty or previously derived dates with the min and max
// expense dates. ISO dates compare chronologically as strings.
func (t *Trip) inferDates() {
	var first, last string
	for _, e := range t.Expenses {
		if e.Date == "" {
			continue
		}
		if first == "" || e.Date < first {
			first = e.Date
		}
		if last == "" || e.Date > last {
			last = e.Date
		}
	}
	if first == "" {
		return
	}
	if t.StartDate == "" || t.StartDateInferred {
		t.StartDate, t.StartDateInferred = first, true
	}
	if t.EndDate == "" || t.EndDateInferred {
		t.EndDate, t.EndDateInferred = last, true
	}
}

// Normalize re-validates a trip that did not come through the constructors,
// such as an imported one, and rewrites it in canonical form. Every problem is
// reported, not only the first.
func (t *Trip) Normalize() error {
	var errs error
	if err := t.Rename(t.Name); err != nil {
		errs = multierr.Append(errs, err)
	}
	t.SetLocation(t.Location)
	startInferred, endInferred := t.StartDateInferred, t.EndDateInferred
	if err := t.SetDates(t.StartDate, t.EndDate); err != nil {
		errs = multierr.Append(errs, err)
	}
	t.StartDateInferred, t.EndDateInferred = startInferred, endInferred

	participants := t.Participants
	t.Participants = make([]string, 0, len(participants))
	for _, p := range participants {
		if _, err := t.AddParticipant(p); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	ids := make(map[int64]bool)
	expenses := t.Expenses
	t.Expenses = make([]Expense, 0, len(expenses))
	for _, e := range expenses {
		ne, err := NewExpense(e.ID, ExpenseInput{
			Payer:       e.Payer,
			Amount:      e.Amount,
			Description: e.Description,
			Date:        e.Date,
			Splits:      e.Splits,
		}, e.CreatedAt)
		if err == nil && ids[e.ID] {
			err = fmt.Errorf("duplicate entry id %d", e.ID)
		}
		if err == nil {
			err = t.checkExpenseRefs(ne)
		}
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("expense %d: %w", e.ID, err))
			continue
		}
		ids[e.ID] = true
		t.Expenses = append(t.Expenses, ne)
	}

	transfers := t.Transfers
	t.Transfers = make([]Transfer, 0, len(transfers))
	for _, tr := range transfers {
		ntr, err := NewTransfer(tr.ID, TransferInput{
			From:   tr.From,
			To:     tr.To,
			Amount: tr.Amount,
			Date:   tr.Date,
		}, tr.CreatedAt)
		if err == nil && ids[tr.ID] {
			err = fmt.Errorf("duplicate entry id %d", tr.ID)
		}
		if err == nil {
			err = t.AddTransfer(ntr)
		}
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("transfer %d: %w", tr.ID, err))
			continue
		}
		ids[tr.ID] = true
	}
	return errs
}

func (t *Trip) checkExpenseRefs(e Expense) error {
	if !t.HasParticipant(e.Payer) {
		return invalid("payer", fmt.Errorf("%w: %s", ErrUnknownParticipant, e.Payer))
	}
	for _, s := range e.Splits {
		if !t.HasParticipant(s.Participant) {
			return invalid("splits", fmt.Errorf("%w: %s", ErrUnknownParticipant, s.Participant))
		}
	}
	return nil
}

// Clone returns a deep copy that shares no slices with t.
func (t *Trip) Clone() *Trip {
	c := *t
	c.Participants = slices.Clone(t.Participants)
	if c.Participants == nil {
		c.Participants = []string{}
	}
	c.Expenses = make([]Expense, len(t.Expenses))
	for i, e := range t.Expenses {
		e.Splits = slices.Clone(e.Splits)
		c.Expenses[i] = e
	}
	c.Transfers = slices.Clone(t.Transfers)
	if c.Transfers == nil {
		c.Transfers = []Transfer{}
	}
	return &c
}
