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
	"github.com/halewood/envl/internal/service"
)

const transactionColumns = `id, date, payee, description, category_id, type, amount, payment_method`

// SaveTransactions persists a batch of transactions in a single database
// transaction. Existing rows with the same id are replaced.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransactions(transactions); err != nil {
		return err
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO transactions (`+transactionColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare insert statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for i := range transactions {
			txn := &transactions[i]
			categoryID := txn.CategoryID
			if categoryID == "" {
				categoryID = model.UncategorizedID
			}
			if _, err := stmt.ExecContext(ctx,
				txn.ID, txn.DateString(), txn.Payee, txn.Description,
				categoryID, string(txn.Type), txn.Amount, txn.PaymentMethod); err != nil {
				return fmt.Errorf("failed to insert transaction %s: %w", txn.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Debug("saved transactions", "count", len(transactions))
	return nil
}

// GetTransaction retrieves a single transaction by id.
func (s *SQLiteStorage) GetTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)

	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return txn, nil
}

// GetTransactions retrieves transactions matching the filter, newest first.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions`
	var conditions []string
	var args []any

	if filter.StartDate != nil {
		conditions = append(conditions, "date >= ?")
		args = append(args, filter.StartDate.Format(model.DateLayout))
	}
	if filter.EndDate != nil {
		conditions = append(conditions, "date <= ?")
		args = append(args, filter.EndDate.Format(model.DateLayout))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY date DESC, id"

	return s.queryTransactions(ctx, query, args...)
}

// GetUncategorizedTransactions retrieves transactions awaiting categorization,
// oldest first so that suggestions work through the backlog in order.
func (s *SQLiteStorage) GetUncategorizedTransactions(ctx context.Context) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	return s.queryTransactions(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE category_id = ? ORDER BY date, id`, model.UncategorizedID)
}

// UpdateTransaction replaces an existing transaction record.
func (s *SQLiteStorage) UpdateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE transactions
		SET date = ?, payee = ?, description = ?, category_id = ?,
		    type = ?, amount = ?, payment_method = ?
		WHERE id = ?`,
		txn.DateString(), txn.Payee, txn.Description, txn.CategoryID,
		string(txn.Type), txn.Amount, txn.PaymentMethod, txn.ID)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	return requireRowAffected(result, "transaction", txn.ID)
}

// DeleteTransaction removes a transaction by id.
func (s *SQLiteStorage) DeleteTransaction(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return requireRowAffected(result, "transaction", id)
}

// DeleteTransactions removes a batch of transactions by id. Unknown ids are
// ignored.
func (s *SQLiteStorage) DeleteTransactions(ctx context.Context, ids []string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(ids) == 0 {
		return fmt.Errorf("%w: ids", ErrEmptySlice)
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `DELETE FROM transactions WHERE id = ?`)
		if err != nil {
			return fmt.Errorf("failed to prepare delete statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, id := range ids {
			if _, err := stmt.ExecContext(ctx, id); err != nil {
				return fmt.Errorf("failed to delete transaction %s: %w", id, err)
			}
		}
		return nil
	})
}

// AssignCategory moves a single transaction to the given category.
func (s *SQLiteStorage) AssignCategory(ctx context.Context, transactionID, categoryID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(transactionID, "transactionID"); err != nil {
		return err
	}
	if err := validateString(categoryID, "categoryID"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE transactions SET category_id = ? WHERE id = ?`, categoryID, transactionID)
	if err != nil {
		return fmt.Errorf("failed to assign category: %w", err)
	}
	return requireRowAffected(result, "transaction", transactionID)
}

// AssignCategories applies a batch of category assignments atomically.
func (s *SQLiteStorage) AssignCategories(ctx context.Context, assignments []service.CategoryAssignment) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(assignments) == 0 {
		return fmt.Errorf("%w: assignments", ErrEmptySlice)
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `UPDATE transactions SET category_id = ? WHERE id = ?`)
		if err != nil {
			return fmt.Errorf("failed to prepare assign statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, a := range assignments {
			if _, err := stmt.ExecContext(ctx, a.CategoryID, a.TransactionID); err != nil {
				return fmt.Errorf("failed to assign category for %s: %w", a.TransactionID, err)
			}
		}
		return nil
	})
}

// CountTransactions returns the number of transactions in the ledger.
func (s *SQLiteStorage) CountTransactions(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

func (s *SQLiteStorage) queryTransactions(ctx context.Context, query string, args ...any) ([]model.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	slog.Debug("retrieved transactions", "count", len(transactions))
	return transactions, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*model.Transaction, error) {
	var txn model.Transaction
	var date, txnType string

	err := row.Scan(&txn.ID, &date, &txn.Payee, &txn.Description,
		&txn.CategoryID, &txnType, &txn.Amount, &txn.PaymentMethod)
	if err != nil {
		return nil, err
	}

	txn.Date, err = model.ParseDate(date)
	if err != nil {
		return nil, err
	}
	txn.Type = model.TransactionType(txnType)
	return &txn, nil
}

func requireRowAffected(result sql.Result, entity, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%s %s: %w", entity, id, common.ErrNotFound)
	}
	return nil
}
