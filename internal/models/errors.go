package models

import (
	"errors"
	"fmt"
)

// Validation sentinels. They are always returned wrapped in a *ValidationError
// so callers can match either the specific cause or the whole class.
var (
	ErrInvalidName        = errors.New("name can't be empty")
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrInvalidDescription = errors.New("description can't be empty")
	ErrInvalidParticipant = errors.New("participant name can't be empty")
	ErrUnknownParticipant = errors.New("participant is not part of the trip")
	ErrSameParticipant    = errors.New("transfer sender and receiver must differ")
	ErrNegativeSplit      = errors.New("split amount can't be negative")
	ErrDuplicateSplit     = errors.New("participant appears more than once in splits")
	ErrSplitSumMismatch   = errors.New("splits must add up to the expense amount")
	ErrInvalidDate        = errors.New("date must be formatted as YYYY-MM-DD")
	ErrInvalidDateRange   = errors.New("start date can't be after end date")
)

// ErrNotFound is matched by every *NotFoundError.
var ErrNotFound = errors.New("not found")

// ValidationError reports input that was rejected before any mutation happened.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// IsValidation reports whether err carries a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// NotFoundError identifies the missing entity. Lookups return it instead of a
// nil sentinel so callers can still decide how to react.
type NotFoundError struct {
	Entity string // "trip", "expense", "transfer", "participant"
	ID     int64
	Name   string // participants are keyed by name
}

func (e *NotFoundError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s not found: %s", e.Entity, e.Name)
	}
	return fmt.Sprintf("%s not found: %d", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }
