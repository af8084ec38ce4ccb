// Package storage provides the SQLite persistence layer.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/halewood/envl/internal/model"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrNilParameter     = errors.New("parameter cannot be nil")
	ErrEmptySlice       = errors.New("slice cannot be empty")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrNegativeAmount   = errors.New("amount cannot be negative")
	ErrInvalidEnvelope  = errors.New("invalid envelope")
	ErrInvalidCategory  = errors.New("invalid category")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTransaction validates a single transaction.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if err := validateString(txn.ID, "transaction ID"); err != nil {
		return err
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("transaction %s: date is required", txn.ID)
	}
	if !txn.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, txn.Type)
	}
	if txn.Amount < 0 {
		return fmt.Errorf("%w: %f", ErrNegativeAmount, txn.Amount)
	}
	return nil
}

// validateTransactions validates a slice of transactions.
func validateTransactions(transactions []model.Transaction) error {
	if transactions == nil {
		return fmt.Errorf("%w: transactions", ErrNilParameter)
	}
	if len(transactions) == 0 {
		return fmt.Errorf("%w: transactions", ErrEmptySlice)
	}
	for i := range transactions {
		if err := validateTransaction(&transactions[i]); err != nil {
			return fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}
	return nil
}

// validateCategory validates a category record.
func validateCategory(cat *model.Category) error {
	if cat == nil {
		return fmt.Errorf("%w: category", ErrNilParameter)
	}
	if err := validateString(cat.ID, "category ID"); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCategory, err)
	}
	if err := validateString(cat.Name, "category name"); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCategory, err)
	}
	return nil
}

// validateEnvelope validates an envelope record.
func validateEnvelope(env *model.Envelope) error {
	if env == nil {
		return fmt.Errorf("%w: envelope", ErrNilParameter)
	}
	if err := validateString(env.ID, "envelope ID"); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEnvelope, err)
	}
	if err := validateString(env.Name, "envelope name"); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEnvelope, err)
	}
	if !env.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidEnvelope, env.Type)
	}
	if env.Budget < 0 {
		return fmt.Errorf("%w: negative budget", ErrInvalidEnvelope)
	}
	return nil
}
