package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/halewood/envl/internal/model"
)

// GetAISettings retrieves the AI suggestion settings. A fresh database
// returns disabled defaults.
func (s *SQLiteStorage) GetAISettings(ctx context.Context) (*model.AISettings, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var settings model.AISettings
	err := s.db.QueryRowContext(ctx,
		`SELECT enabled, provider, api_key, model FROM ai_settings WHERE id = 1`).
		Scan(&settings.Enabled, &settings.Provider, &settings.APIKey, &settings.Model)
	if errors.Is(err, sql.ErrNoRows) {
		return &model.AISettings{Provider: "gemini"}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get AI settings: %w", err)
	}
	return &settings, nil
}

// SaveAISettings persists the AI suggestion settings.
func (s *SQLiteStorage) SaveAISettings(ctx context.Context, settings *model.AISettings) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if settings == nil {
		return fmt.Errorf("%w: settings", ErrNilParameter)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ai_settings (id, enabled, provider, api_key, model)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			enabled = excluded.enabled,
			provider = excluded.provider,
			api_key = excluded.api_key,
			model = excluded.model`,
		settings.Enabled, settings.Provider, settings.APIKey, settings.Model)
	if err != nil {
		return fmt.Errorf("failed to save AI settings: %w", err)
	}
	return nil
}
