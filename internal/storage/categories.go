package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/halewood/envl/internal/common"
	"github.com/halewood/envl/internal/model"
)

// GetCategories retrieves all categories ordered by name, with the reserved
// uncategorized category sorted last.
func (s *SQLiteStorage) GetCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, color, is_income, is_transfer FROM categories
		ORDER BY CASE WHEN id = ? THEN 1 ELSE 0 END, name COLLATE NOCASE`,
		model.UncategorizedID)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		var cat model.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Color, &cat.IsIncome, &cat.IsTransfer); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}

	return categories, nil
}

// GetCategory retrieves a single category by id.
func (s *SQLiteStorage) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	return s.scanCategoryRow(s.db.QueryRowContext(ctx,
		`SELECT id, name, color, is_income, is_transfer FROM categories WHERE id = ?`, id), id)
}

// GetCategoryByName retrieves a category by case-insensitive name match.
func (s *SQLiteStorage) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	return s.scanCategoryRow(s.db.QueryRowContext(ctx, `
		SELECT id, name, color, is_income, is_transfer FROM categories
		WHERE name = ? COLLATE NOCASE`, name), name)
}

// CreateCategory inserts a new category. An empty color is filled from the
// display palette. Creating a second income category fails.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, category *model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCategory(category); err != nil {
		return err
	}

	if category.Color == "" {
		count, err := s.countCategories(ctx)
		if err != nil {
			return err
		}
		category.Color = model.CategoryColors[count%len(model.CategoryColors)]
	}

	if category.IsIncome {
		if err := s.checkIncomeUnique(ctx, ""); err != nil {
			return err
		}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, color, is_income, is_transfer)
		VALUES (?, ?, ?, ?, ?)`,
		category.ID, category.Name, category.Color, category.IsIncome, category.IsTransfer)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("category %q: %w", category.Name, common.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to create category: %w", err)
	}

	slog.Debug("created category", "id", category.ID, "name", category.Name)
	return nil
}

// UpdateCategory replaces an existing category record. The reserved
// uncategorized category cannot be renamed or reflagged.
func (s *SQLiteStorage) UpdateCategory(ctx context.Context, category *model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCategory(category); err != nil {
		return err
	}

	if category.ID == model.UncategorizedID {
		return fmt.Errorf("category %s: %w", category.ID, common.ErrCategoryReserved)
	}

	if category.IsIncome {
		if err := s.checkIncomeUnique(ctx, category.ID); err != nil {
			return err
		}
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE categories SET name = ?, color = ?, is_income = ?, is_transfer = ?
		WHERE id = ?`,
		category.Name, category.Color, category.IsIncome, category.IsTransfer, category.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("category %q: %w", category.Name, common.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to update category: %w", err)
	}

	return requireRowAffected(result, "category", category.ID)
}

// DeleteCategory removes a category. Its transactions fall back to the
// uncategorized category and it is detached from any envelopes that held
// it. The reserved uncategorized and income categories cannot be deleted.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	if id == model.UncategorizedID {
		return fmt.Errorf("category %s: %w", id, common.ErrCategoryReserved)
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		var isIncome bool
		err := tx.QueryRowContext(ctx,
			`SELECT is_income FROM categories WHERE id = ?`, id).Scan(&isIncome)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("category %s: %w", id, common.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to get category: %w", err)
		}
		if isIncome {
			return fmt.Errorf("category %s: %w", id, common.ErrCategoryReserved)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete category: %w", err)
		}
		if err := requireRowAffected(result, "category", id); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE transactions SET category_id = ? WHERE category_id = ?`,
			model.UncategorizedID, id); err != nil {
			return fmt.Errorf("failed to reassign transactions: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM envelope_categories WHERE category_id = ?`, id); err != nil {
			return fmt.Errorf("failed to detach category from envelopes: %w", err)
		}
		return nil
	})
}

func (s *SQLiteStorage) scanCategoryRow(row *sql.Row, key string) (*model.Category, error) {
	var cat model.Category
	err := row.Scan(&cat.ID, &cat.Name, &cat.Color, &cat.IsIncome, &cat.IsTransfer)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("category %s: %w", key, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &cat, nil
}

func (s *SQLiteStorage) countCategories(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count categories: %w", err)
	}
	return count, nil
}

// checkIncomeUnique fails if an income category other than excludeID exists.
func (s *SQLiteStorage) checkIncomeUnique(ctx context.Context, excludeID string) error {
	var existing string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM categories WHERE is_income = 1 AND id != ?`, excludeID).Scan(&existing)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check income category: %w", err)
	}
	return fmt.Errorf("category %s is the income category: %w", existing, common.ErrIncomeExists)
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
