package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used for trip and entry dates.
// Lexicographic order of these strings is chronological order.
const DateLayout = "2006-01-02"

// Epsilon is the currency tolerance used when comparing amounts.
var Epsilon = decimal.New(1, -2)

// NormalizeDate validates s and returns it as YYYY-MM-DD. Full RFC 3339
// timestamps are accepted and cut down to their UTC calendar day, which is how
// older exports stored expense dates. The empty string stays empty.
func NormalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t.Format(DateLayout), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC().Format(DateLayout), nil
	}
	return "", ErrInvalidDate
}

// Today returns the UTC calendar day of now.
func Today(now time.Time) string {
	return now.UTC().Format(DateLayout)
}
