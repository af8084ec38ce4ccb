package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/halewood/envl/internal/model"
)

// ReplaceAll swaps the entire database contents for the given collections
// in one transaction. Used by backup import; an error leaves the existing
// data untouched.
func (s *SQLiteStorage) ReplaceAll(ctx context.Context, transactions []model.Transaction, categories []model.Category, envelopes []model.Envelope, settings *model.AISettings) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	for i := range transactions {
		if err := validateTransaction(&transactions[i]); err != nil {
			return fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}
	for i := range categories {
		if err := validateCategory(&categories[i]); err != nil {
			return fmt.Errorf("category at index %d: %w", i, err)
		}
	}
	for i := range envelopes {
		if err := validateEnvelope(&envelopes[i]); err != nil {
			return fmt.Errorf("envelope at index %d: %w", i, err)
		}
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := clearTables(ctx, tx); err != nil {
			return err
		}

		for i := range categories {
			cat := &categories[i]
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO categories (id, name, color, is_income, is_transfer)
				VALUES (?, ?, ?, ?, ?)`,
				cat.ID, cat.Name, cat.Color, cat.IsIncome, cat.IsTransfer); err != nil {
				return fmt.Errorf("failed to restore category %s: %w", cat.ID, err)
			}
		}

		// The reserved category must survive a restore even if the backup
		// predates it.
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO categories (id, name, color)
			VALUES (?, 'Uncategorized', '#78716c')`, model.UncategorizedID); err != nil {
			return fmt.Errorf("failed to restore uncategorized category: %w", err)
		}

		for i := range transactions {
			txn := &transactions[i]
			categoryID := txn.CategoryID
			if categoryID == "" {
				categoryID = model.UncategorizedID
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO transactions (`+transactionColumns+`)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				txn.ID, txn.DateString(), txn.Payee, txn.Description,
				categoryID, string(txn.Type), txn.Amount, txn.PaymentMethod); err != nil {
				return fmt.Errorf("failed to restore transaction %s: %w", txn.ID, err)
			}
		}

		for i := range envelopes {
			env := &envelopes[i]
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO envelopes (id, name, type, budget, starting_amount, final_target)
				VALUES (?, ?, ?, ?, ?, ?)`,
				env.ID, env.Name, string(env.Type), env.Budget,
				env.StartingAmount, env.FinalTarget); err != nil {
				return fmt.Errorf("failed to restore envelope %s: %w", env.ID, err)
			}
			if err := replaceEnvelopeCategories(ctx, tx, env.ID, env.CategoryIDs); err != nil {
				return err
			}
		}

		if settings != nil {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO ai_settings (id, enabled, provider, api_key, model)
				VALUES (1, ?, ?, ?, ?)
				ON CONFLICT (id) DO UPDATE SET
					enabled = excluded.enabled,
					provider = excluded.provider,
					api_key = excluded.api_key,
					model = excluded.model`,
				settings.Enabled, settings.Provider, settings.APIKey, settings.Model); err != nil {
				return fmt.Errorf("failed to restore AI settings: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("replaced all data",
		"transactions", len(transactions),
		"categories", len(categories),
		"envelopes", len(envelopes))
	return nil
}

// Reset clears all data and reseeds the default categories.
func (s *SQLiteStorage) Reset(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := clearTables(ctx, tx); err != nil {
			return err
		}

		for _, cat := range model.DefaultCategories() {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO categories (id, name, color, is_income, is_transfer)
				VALUES (?, ?, ?, ?, ?)`,
				cat.ID, cat.Name, cat.Color, cat.IsIncome, cat.IsTransfer); err != nil {
				return fmt.Errorf("failed to seed category %q: %w", cat.Name, err)
			}
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE ai_settings SET enabled = 0, provider = 'gemini', api_key = '', model = ''
			WHERE id = 1`); err != nil {
			return fmt.Errorf("failed to reset AI settings: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("reset all data")
	return nil
}

func clearTables(ctx context.Context, tx *sql.Tx) error {
	for _, table := range []string{"envelope_categories", "envelopes", "transactions", "categories"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}
