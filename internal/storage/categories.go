package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/expense-flow/internal/common"
	"github.com/Veraticus/expense-flow/internal/model"
)

const categoryColumns = `id, name, description, sort_order, is_archived, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (model.Category, error) {
	var cat model.Category
	err := row.Scan(&cat.ID, &cat.Name, &cat.Description, &cat.Order, &cat.IsArchived, &cat.CreatedAt)
	return cat, err
}

func (s *SQLiteStorage) queryCategories(ctx context.Context, where string) ([]model.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories ` + where + ` ORDER BY sort_order, name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	categories := make([]model.Category, 0)
	for rows.Next() {
		cat, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// GetActiveCategories returns non-archived categories in display order.
func (s *SQLiteStorage) GetActiveCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	categories, err := s.queryCategories(ctx, `WHERE is_archived = 0`)
	if err != nil {
		return nil, err
	}

	slog.Debug("retrieved active categories", "count", len(categories))
	return categories, nil
}

// GetAllCategories returns every category, archived ones included.
func (s *SQLiteStorage) GetAllCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.queryCategories(ctx, "")
}

// GetCategoryByName returns the named category, archived or not.
func (s *SQLiteStorage) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE name = ?`, name)
	cat, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("category %q: %w", name, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}

	return &cat, nil
}

// CreateCategory appends a new category at the end of the display order.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, name, description string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}

	now := time.Now()
	var id int64
	var order int

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(sort_order) + 1, 0) FROM categories`).Scan(&order); err != nil {
			return fmt.Errorf("failed to determine category order: %w", err)
		}

		result, err := tx.ExecContext(ctx,
			`INSERT INTO categories (name, description, sort_order, created_at) VALUES (?, ?, ?, ?)`,
			name, description, order, now)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("category %q: %w", name, common.ErrDuplicateEntry)
			}
			return fmt.Errorf("failed to create category: %w", err)
		}

		id, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get category ID: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("created new category", "name", name, "id", id)
	return &model.Category{
		ID:          int(id),
		Name:        name,
		Description: description,
		Order:       order,
		CreatedAt:   now,
	}, nil
}

// UpdateCategory renames a category and replaces its description. Existing
// expenses follow the rename.
func (s *SQLiteStorage) UpdateCategory(ctx context.Context, name, newName, description string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	if newName == "" {
		newName = name
	}
	if err := validateCategoryName(newName); err != nil {
		return nil, err
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE categories SET name = ?, description = ? WHERE name = ?`,
			newName, description, name)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("category %q: %w", newName, common.ErrDuplicateEntry)
			}
			return fmt.Errorf("failed to update category: %w", err)
		}
		if err := requireAffected(result, "category", name); err != nil {
			return err
		}

		if newName != name {
			if _, err := tx.ExecContext(ctx, `UPDATE expenses SET category = ? WHERE category = ?`, newName, name); err != nil {
				return fmt.Errorf("failed to move expenses to renamed category: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("updated category", "name", name, "new_name", newName)
	return s.GetCategoryByName(ctx, newName)
}

// ArchiveCategory hides a category from imports and pickers. Expenses keep it.
func (s *SQLiteStorage) ArchiveCategory(ctx context.Context, name string) error {
	return s.setArchived(ctx, name, true)
}

// RestoreCategory makes an archived category active again.
func (s *SQLiteStorage) RestoreCategory(ctx context.Context, name string) error {
	return s.setArchived(ctx, name, false)
}

func (s *SQLiteStorage) setArchived(ctx context.Context, name string, archived bool) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(name, "name"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `UPDATE categories SET is_archived = ? WHERE name = ?`, archived, name)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	if err := requireAffected(result, "category", name); err != nil {
		return err
	}

	slog.Info("changed category archive state", "name", name, "archived", archived)
	return nil
}

// ReorderCategories moves the named categories to the front in the given
// order. Categories not named keep their relative order after them.
func (s *SQLiteStorage) ReorderCategories(ctx context.Context, names []string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(names) == 0 {
		return fmt.Errorf("%w: names", ErrEmptySlice)
	}

	all, err := s.GetAllCategories(ctx)
	if err != nil {
		return err
	}

	known := make(map[string]bool, len(all))
	for _, cat := range all {
		known[cat.Name] = true
	}

	ordered := make([]string, 0, len(all))
	placed := make(map[string]bool, len(names))
	for _, name := range names {
		if !known[name] {
			return fmt.Errorf("category %q: %w", name, common.ErrNotFound)
		}
		if placed[name] {
			return fmt.Errorf("%w: %q listed twice", ErrInvalidCategory, name)
		}
		placed[name] = true
		ordered = append(ordered, name)
	}
	for _, cat := range all {
		if !placed[cat.Name] {
			ordered = append(ordered, cat.Name)
		}
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `UPDATE categories SET sort_order = ? WHERE name = ?`)
		if err != nil {
			return fmt.Errorf("failed to prepare reorder: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for i, name := range ordered {
			if _, err := stmt.ExecContext(ctx, i, name); err != nil {
				return fmt.Errorf("failed to reorder category %q: %w", name, err)
			}
		}
		return nil
	})
}

func requireAffected(result sql.Result, kind, key string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%s %q: %w", kind, key, common.ErrNotFound)
	}
	return nil
}
