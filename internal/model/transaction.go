// Package model defines the core domain types shared across the application.
package model

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for transaction dates. Dates carry no
// time-of-day; they are always normalized to local midnight so that
// range comparisons behave consistently.
const DateLayout = "2006-01-02"

// TransactionType indicates the direction of a transaction.
// The amount itself is always a non-negative magnitude.
type TransactionType string

const (
	// Credit represents money coming in (income, refunds).
	Credit TransactionType = "Credit"
	// Debit represents money going out.
	Debit TransactionType = "Debit"
)

// Valid reports whether the transaction type is one of the known values.
func (t TransactionType) Valid() bool {
	return t == Credit || t == Debit
}

// Transaction represents a single financial transaction in the ledger.
type Transaction struct {
	Date          time.Time
	ID            string
	Payee         string
	Description   string
	CategoryID    string
	PaymentMethod string
	Type          TransactionType
	Amount        float64
}

// DateString returns the transaction date in the YYYY-MM-DD wire format.
func (t *Transaction) DateString() string {
	return t.Date.Format(DateLayout)
}

// Signed returns the amount with its direction applied: positive for
// credits, negative for debits.
func (t *Transaction) Signed() float64 {
	if t.Type == Debit {
		return -t.Amount
	}
	return t.Amount
}

// ParseDate parses a YYYY-MM-DD date string at local midnight.
func ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return d, nil
}

// Midnight normalizes a time to local midnight of the same calendar day.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
