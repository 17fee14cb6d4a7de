// Package models defines the ledger data model for TravelSplit.
//
// A Trip owns its participants, expenses and transfers. Participants are plain
// names, unique within a trip. An Expense is paid by one participant and
// divided into Splits, one per participant who shares it; a Transfer is a
// direct payment from one participant to another.
//
// Balances, debts and settlements are never stored. They are derived from a
// trip snapshot by package calculator.
//
// Constructors (NewTrip, NewExpense, NewTransfer) and the Trip methods validate
// their input before changing anything, so a rejected operation never leaves a
// trip half-updated. Rejections are *ValidationError values; lookups that miss
// return *NotFoundError.
package models
