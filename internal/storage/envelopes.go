package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/halewood/envl/internal/common"
	"github.com/halewood/envl/internal/model"
)

// GetEnvelopes retrieves all envelopes with their category links, ordered
// by name.
func (s *SQLiteStorage) GetEnvelopes(ctx context.Context) ([]model.Envelope, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, type, budget, starting_amount, final_target
		FROM envelopes ORDER BY name COLLATE NOCASE`)
	if err != nil {
		return nil, fmt.Errorf("failed to query envelopes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var envelopes []model.Envelope
	for rows.Next() {
		var env model.Envelope
		var envType string
		if err := rows.Scan(&env.ID, &env.Name, &envType, &env.Budget,
			&env.StartingAmount, &env.FinalTarget); err != nil {
			return nil, fmt.Errorf("failed to scan envelope: %w", err)
		}
		env.Type = model.EnvelopeType(envType)
		envelopes = append(envelopes, env)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate envelopes: %w", err)
	}

	for i := range envelopes {
		envelopes[i].CategoryIDs, err = s.envelopeCategories(ctx, envelopes[i].ID)
		if err != nil {
			return nil, err
		}
	}

	return envelopes, nil
}

// GetEnvelope retrieves a single envelope by id with its category links.
func (s *SQLiteStorage) GetEnvelope(ctx context.Context, id string) (*model.Envelope, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	var env model.Envelope
	var envType string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, type, budget, starting_amount, final_target
		FROM envelopes WHERE id = ?`, id).
		Scan(&env.ID, &env.Name, &envType, &env.Budget, &env.StartingAmount, &env.FinalTarget)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("envelope %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get envelope: %w", err)
	}
	env.Type = model.EnvelopeType(envType)

	env.CategoryIDs, err = s.envelopeCategories(ctx, id)
	if err != nil {
		return nil, err
	}
	return &env, nil
}

// CreateEnvelope inserts a new envelope and its category links.
func (s *SQLiteStorage) CreateEnvelope(ctx context.Context, envelope *model.Envelope) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateEnvelope(envelope); err != nil {
		return err
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO envelopes (id, name, type, budget, starting_amount, final_target)
			VALUES (?, ?, ?, ?, ?, ?)`,
			envelope.ID, envelope.Name, string(envelope.Type),
			envelope.Budget, envelope.StartingAmount, envelope.FinalTarget)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("envelope %q: %w", envelope.Name, common.ErrDuplicateEntry)
			}
			return fmt.Errorf("failed to create envelope: %w", err)
		}
		return replaceEnvelopeCategories(ctx, tx, envelope.ID, envelope.CategoryIDs)
	})
	if err != nil {
		return err
	}

	slog.Debug("created envelope", "id", envelope.ID, "name", envelope.Name)
	return nil
}

// UpdateEnvelope replaces an existing envelope and its category links.
func (s *SQLiteStorage) UpdateEnvelope(ctx context.Context, envelope *model.Envelope) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateEnvelope(envelope); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE envelopes SET name = ?, type = ?, budget = ?, starting_amount = ?, final_target = ?
			WHERE id = ?`,
			envelope.Name, string(envelope.Type), envelope.Budget,
			envelope.StartingAmount, envelope.FinalTarget, envelope.ID)
		if err != nil {
			return fmt.Errorf("failed to update envelope: %w", err)
		}
		if err := requireRowAffected(result, "envelope", envelope.ID); err != nil {
			return err
		}
		return replaceEnvelopeCategories(ctx, tx, envelope.ID, envelope.CategoryIDs)
	})
}

// DeleteEnvelope removes an envelope. Its category links cascade away;
// transactions are untouched.
func (s *SQLiteStorage) DeleteEnvelope(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM envelopes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete envelope: %w", err)
	}
	return requireRowAffected(result, "envelope", id)
}

func (s *SQLiteStorage) envelopeCategories(ctx context.Context, envelopeID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category_id FROM envelope_categories
		WHERE envelope_id = ? ORDER BY position`, envelopeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query envelope categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan envelope category: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate envelope categories: %w", err)
	}
	return ids, nil
}

func replaceEnvelopeCategories(ctx context.Context, tx *sql.Tx, envelopeID string, categoryIDs []string) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM envelope_categories WHERE envelope_id = ?`, envelopeID); err != nil {
		return fmt.Errorf("failed to clear envelope categories: %w", err)
	}

	for i, categoryID := range categoryIDs {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO envelope_categories (envelope_id, category_id, position)
			VALUES (?, ?, ?)`, envelopeID, categoryID, i); err != nil {
			return fmt.Errorf("failed to link category %s: %w", categoryID, err)
		}
	}
	return nil
}
