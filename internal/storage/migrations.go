package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/halewood/envl/internal/model"
)

// ExpectedSchemaVersion is the latest schema version that the application
// expects. If the database cannot be migrated to this version, it's a
// fatal error.
const ExpectedSchemaVersion = 2

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS transactions (
					id TEXT PRIMARY KEY,
					date TEXT NOT NULL,
					payee TEXT NOT NULL,
					description TEXT NOT NULL DEFAULT '',
					category_id TEXT NOT NULL DEFAULT 'uncategorized',
					type TEXT NOT NULL CHECK (type IN ('Credit', 'Debit')),
					amount REAL NOT NULL CHECK (amount >= 0),
					payment_method TEXT NOT NULL DEFAULT '',
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_transactions_date ON transactions(date)`,
				`CREATE INDEX idx_transactions_category ON transactions(category_id)`,

				`CREATE TABLE IF NOT EXISTS categories (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL UNIQUE COLLATE NOCASE,
					color TEXT NOT NULL DEFAULT '',
					is_income INTEGER NOT NULL DEFAULT 0,
					is_transfer INTEGER NOT NULL DEFAULT 0
				)`,
				// At most one income category may exist.
				`CREATE UNIQUE INDEX idx_categories_income ON categories(is_income) WHERE is_income = 1`,

				`CREATE TABLE IF NOT EXISTS envelopes (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					type TEXT NOT NULL CHECK (type IN ('spending', 'goal')),
					budget REAL NOT NULL DEFAULT 0,
					starting_amount REAL NOT NULL DEFAULT 0,
					final_target REAL NOT NULL DEFAULT 0
				)`,

				`CREATE TABLE IF NOT EXISTS envelope_categories (
					envelope_id TEXT NOT NULL REFERENCES envelopes(id) ON DELETE CASCADE,
					category_id TEXT NOT NULL,
					position INTEGER NOT NULL DEFAULT 0,
					PRIMARY KEY (envelope_id, category_id)
				)`,

				`CREATE TABLE IF NOT EXISTS ai_settings (
					id INTEGER PRIMARY KEY CHECK (id = 1),
					enabled INTEGER NOT NULL DEFAULT 0,
					provider TEXT NOT NULL DEFAULT 'gemini',
					api_key TEXT NOT NULL DEFAULT '',
					model TEXT NOT NULL DEFAULT ''
				)`,
				`INSERT INTO ai_settings (id) VALUES (1)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Seed default categories",
		Up: func(tx *sql.Tx) error {
			stmt, err := tx.Prepare(`
				INSERT OR IGNORE INTO categories (id, name, color, is_income, is_transfer)
				VALUES (?, ?, ?, ?, ?)`)
			if err != nil {
				return fmt.Errorf("failed to prepare seed statement: %w", err)
			}
			defer func() { _ = stmt.Close() }()

			for _, cat := range model.DefaultCategories() {
				if _, err := stmt.Exec(cat.ID, cat.Name, cat.Color, cat.IsIncome, cat.IsTransfer); err != nil {
					return fmt.Errorf("failed to seed category %q: %w", cat.Name, err)
				}
			}
			return nil
		},
	},
}

// Migrate applies all pending schema migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_versions (
			version INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`); err != nil {
		return fmt.Errorf("failed to create schema_versions table: %w", err)
	}

	current, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}

		err := s.withTx(ctx, func(tx *sql.Tx) error {
			if err := m.Up(tx); err != nil {
				return fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Description, err)
			}
			if _, err := tx.Exec(
				`INSERT INTO schema_versions (version, description) VALUES (?, ?)`,
				m.Version, m.Description); err != nil {
				return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
			}
			return nil
		})
		if err != nil {
			return err
		}

		slog.Info("applied migration", "version", m.Version, "description", m.Description)
	}

	return nil
}

// SchemaVersion returns the highest applied migration version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_versions`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to query schema version: %w", err)
	}
	return int(version.Int64), nil
}
