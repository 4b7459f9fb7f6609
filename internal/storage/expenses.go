package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/expense-flow/internal/common"
	"github.com/Veraticus/expense-flow/internal/model"
)

// RecordFilter narrows GetRecords. Dates are inclusive YYYY-MM-DD bounds.
type RecordFilter struct {
	Category string
	From     string
	To       string
	Limit    int
}

const expenseColumns = `id, date, amount, category, description, created_at`

func scanExpense(row rowScanner) (model.CommittedExpense, error) {
	var e model.CommittedExpense
	err := row.Scan(&e.ID, &e.Date, &e.Amount, &e.Category, &e.Description, &e.CreatedAt)
	return e, err
}

// AddRecord stores one expense.
func (s *SQLiteStorage) AddRecord(ctx context.Context, expense model.CommittedExpense) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateExpense(expense); err != nil {
		return err
	}

	if expense.CreatedAt.IsZero() {
		expense.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO expenses (`+expenseColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.Date, expense.Amount, expense.Category, expense.Description, expense.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("expense %q: %w", expense.ID, common.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to save expense: %w", err)
	}
	return nil
}

// GetRecords returns expenses newest first.
func (s *SQLiteStorage) GetRecords(ctx context.Context, filter RecordFilter) ([]model.CommittedExpense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateFilter(filter); err != nil {
		return nil, err
	}

	var (
		conditions []string
		args       []any
	)
	if filter.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.From != "" {
		conditions = append(conditions, "date >= ?")
		args = append(args, filter.From)
	}
	if filter.To != "" {
		conditions = append(conditions, "date <= ?")
		args = append(args, filter.To)
	}

	query := `SELECT ` + expenseColumns + ` FROM expenses`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY date DESC, created_at DESC, id"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	expenses := make([]model.CommittedExpense, 0)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expenses: %w", err)
	}
	return expenses, nil
}

// GetRecord returns one expense by ID.
func (s *SQLiteStorage) GetRecord(ctx context.Context, id string) (*model.CommittedExpense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	e, err := scanExpense(s.db.QueryRowContext(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("expense %q: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query expense: %w", err)
	}
	return &e, nil
}

// UpdateRecord replaces the mutable fields of an existing expense.
func (s *SQLiteStorage) UpdateRecord(ctx context.Context, expense model.CommittedExpense) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateExpense(expense); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE expenses SET date = ?, amount = ?, category = ?, description = ? WHERE id = ?`,
		expense.Date, expense.Amount, expense.Category, expense.Description, expense.ID)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	return requireAffected(result, "expense", expense.ID)
}

// DeleteRecord removes one expense.
func (s *SQLiteStorage) DeleteRecord(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return requireAffected(result, "expense", id)
}

// DeleteRecords removes the given expenses in one transaction and returns how
// many existed.
func (s *SQLiteStorage) DeleteRecords(ctx context.Context, ids []string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, fmt.Errorf("%w: ids", ErrEmptySlice)
	}

	deleted := 0
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `DELETE FROM expenses WHERE id = ?`)
		if err != nil {
			return fmt.Errorf("failed to prepare delete: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, id := range ids {
			result, err := stmt.ExecContext(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to delete expense %q: %w", id, err)
			}
			n, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to check affected rows: %w", err)
			}
			deleted += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// CountRecords returns the number of stored expenses.
func (s *SQLiteStorage) CountRecords(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM expenses`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count expenses: %w", err)
	}
	return count, nil
}
