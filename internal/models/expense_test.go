package models

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

var testNow = time.Date(2024, 7, 14, 9, 30, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNewExpense(t *testing.T) {
	tests := []struct {
		name    string
		input   ExpenseInput
		wantErr error
		check   func(t *testing.T, e Expense)
	}{
		{
			name: "even three-way split",
			input: ExpenseInput{
				Payer: "Alice", Amount: dec("90"), Description: "Dinner",
				Splits: []Split{{"Alice", dec("30")}, {"Bob", dec("30")}, {"Carol", dec("30")}},
			},
			check: func(t *testing.T, e Expense) {
				if e.Date != "2024-07-14" {
					t.Errorf("Date = %q, want creation day", e.Date)
				}
				if !e.CreatedAt.Equal(testNow) {
					t.Errorf("CreatedAt = %v, want %v", e.CreatedAt, testNow)
				}
			},
		},
		{
			name: "trims names and description",
			input: ExpenseInput{
				Payer: " Alice ", Amount: dec("10"), Description: "  Taxi ", Date: "2024-07-01",
				Splits: []Split{{" Bob", dec("10")}},
			},
			check: func(t *testing.T, e Expense) {
				if e.Payer != "Alice" || e.Splits[0].Participant != "Bob" || e.Description != "Taxi" {
					t.Errorf("fields not trimmed: %+v", e)
				}
				if e.Date != "2024-07-01" {
					t.Errorf("Date = %q, want 2024-07-01", e.Date)
				}
			},
		},
		{
			name: "residual within tolerance goes to the largest split",
			input: ExpenseInput{
				Payer: "Alice", Amount: dec("100"), Description: "Hotel",
				Splits: []Split{{"Alice", dec("33.33")}, {"Bob", dec("33.34")}, {"Carol", dec("33.32")}},
			},
			check: func(t *testing.T, e Expense) {
				if !e.Splits[1].Amount.Equal(dec("33.35")) {
					t.Errorf("Bob split = %s, want 33.35", e.Splits[1].Amount)
				}
				sum := decimal.Zero
				for _, s := range e.Splits {
					sum = sum.Add(s.Amount)
				}
				if !sum.Equal(e.Amount) {
					t.Errorf("split sum = %s, want %s", sum, e.Amount)
				}
			},
		},
		{
			name:    "zero amount",
			input:   ExpenseInput{Payer: "Alice", Amount: decimal.Zero, Description: "x", Splits: []Split{{"Alice", decimal.Zero}}},
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "negative amount",
			input:   ExpenseInput{Payer: "Alice", Amount: dec("-5"), Description: "x", Splits: []Split{{"Alice", dec("-5")}}},
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "blank description",
			input:   ExpenseInput{Payer: "Alice", Amount: dec("5"), Description: "   ", Splits: []Split{{"Alice", dec("5")}}},
			wantErr: ErrInvalidDescription,
		},
		{
			name:    "missing payer",
			input:   ExpenseInput{Amount: dec("5"), Description: "x", Splits: []Split{{"Alice", dec("5")}}},
			wantErr: ErrInvalidParticipant,
		},
		{
			name:    "no splits",
			input:   ExpenseInput{Payer: "Alice", Amount: dec("5"), Description: "x"},
			wantErr: ErrSplitSumMismatch,
		},
		{
			name: "split sum off by more than a cent",
			input: ExpenseInput{
				Payer: "Alice", Amount: dec("100"), Description: "x",
				Splits: []Split{{"Alice", dec("50")}, {"Bob", dec("49.98")}},
			},
			wantErr: ErrSplitSumMismatch,
		},
		{
			name: "negative split",
			input: ExpenseInput{
				Payer: "Alice", Amount: dec("10"), Description: "x",
				Splits: []Split{{"Alice", dec("15")}, {"Bob", dec("-5")}},
			},
			wantErr: ErrNegativeSplit,
		},
		{
			name: "duplicate split participant",
			input: ExpenseInput{
				Payer: "Alice", Amount: dec("10"), Description: "x",
				Splits: []Split{{"Bob", dec("5")}, {"Bob", dec("5")}},
			},
			wantErr: ErrDuplicateSplit,
		},
		{
			name: "bad date",
			input: ExpenseInput{
				Payer: "Alice", Amount: dec("10"), Description: "x", Date: "14/07/2024",
				Splits: []Split{{"Alice", dec("10")}},
			},
			wantErr: ErrInvalidDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewExpense(42, tt.input, testNow)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewExpense() error = %v, want %v", err, tt.wantErr)
				}
				if !IsValidation(err) {
					t.Errorf("NewExpense() error %v is not a ValidationError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewExpense() unexpected error: %v", err)
			}
			if e.ID != 42 {
				t.Errorf("ID = %d, want 42", e.ID)
			}
			if tt.check != nil {
				tt.check(t, e)
			}
		})
	}
}

func TestNewTransfer(t *testing.T) {
	tests := []struct {
		name    string
		input   TransferInput
		wantErr error
	}{
		{"valid", TransferInput{From: "Bob", To: "Alice", Amount: dec("50")}, nil},
		{"same participant", TransferInput{From: "Bob", To: " Bob ", Amount: dec("50")}, ErrSameParticipant},
		{"zero amount", TransferInput{From: "Bob", To: "Alice", Amount: decimal.Zero}, ErrInvalidAmount},
		{"missing receiver", TransferInput{From: "Bob", Amount: dec("1")}, ErrInvalidParticipant},
		{"bad date", TransferInput{From: "Bob", To: "Alice", Amount: dec("1"), Date: "tomorrow"}, ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := NewTransfer(7, tt.input, testNow)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewTransfer() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewTransfer() unexpected error: %v", err)
			}
			if tr.Date != "2024-07-14" {
				t.Errorf("Date = %q, want 2024-07-14", tr.Date)
			}
		})
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "", false},
		{"2024-02-29", "2024-02-29", false},
		{" 2024-01-05 ", "2024-01-05", false},
		{"2024-03-10T23:30:00.000Z", "2024-03-10", false},
		{"2024-03-10T23:30:00-05:00", "2024-03-11", false},
		{"2023-02-29", "", true},
		{"yesterday", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeDate(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NormalizeDate(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("NormalizeDate(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
