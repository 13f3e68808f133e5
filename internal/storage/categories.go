package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"cashflow/internal/core"
)

const categoryColumns = `id, user_id, name, type, description, icon, color, is_default, created_at`

func scanCategory(row interface{ Scan(...any) error }) (core.Category, error) {
	var (
		c         core.Category
		userID    sql.NullString
		isDefault int
		created   int64
	)
	if err := row.Scan(&c.ID, &userID, &c.Name, &c.Type, &c.Description, &c.Icon, &c.Color, &isDefault, &created); err != nil {
		return core.Category{}, err
	}
	if userID.Valid {
		uid := userID.String
		c.UserID = &uid
	}
	c.IsDefault = isDefault == 1
	c.CreatedAt = timeOrZero(created)
	return c, nil
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	now := r.nowMillis()
	c.ID = newID()
	c.CreatedAt = time.UnixMilli(now).UTC()

	var userID any
	if c.UserID != nil {
		userID = *c.UserID
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO categories (id, user_id, name, type, description, icon, color, is_default, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, userID, c.Name, string(c.Type), c.Description, c.Icon, c.Color, boolToInt(c.IsDefault), now)
	if err != nil {
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}

	slog.InfoContext(ctx, "Category created", "category_id", c.ID, "name", c.Name)
	return c, nil
}

// FindCategoryByName returns the category userID sees under name, compared
// case-insensitively. The caller's own category wins over a default.
func (r *SQLiteRepository) FindCategoryByName(ctx context.Context, userID, name string) (core.Category, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories
		WHERE (user_id = ? OR user_id IS NULL) AND casefold(name) = casefold(?)
		ORDER BY user_id IS NULL, created_at ASC LIMIT 1`, userID, name))
	if isNoRows(err) {
		return core.Category{}, core.NotFoundf("category not found")
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("find category: %w", err)
	}
	return c, nil
}

// ListCategories returns the caller's categories plus global defaults.
func (r *SQLiteRepository) ListCategories(ctx context.Context, userID string) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories
		WHERE user_id = ? OR user_id IS NULL ORDER BY name ASC, created_at ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	out := make([]core.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetCategory returns a category the caller can see.
func (r *SQLiteRepository) GetCategory(ctx context.Context, userID, id string) (core.Category, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories
		WHERE id = ? AND (user_id = ? OR user_id IS NULL)`, id, userID))
	if isNoRows(err) {
		return core.Category{}, core.NotFoundf("category not found")
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func getOwnedCategory(ctx context.Context, q queryer, userID, id string) (core.Category, error) {
	c, err := scanCategory(q.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories
		WHERE id = ? AND user_id = ?`, id, userID))
	if isNoRows(err) {
		return core.Category{}, core.NotFoundf("category not found")
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func categoryUsage(ctx context.Context, q queryer, userID, name string) (core.Usage, error) {
	var u core.Usage
	err := q.QueryRowContext(ctx, `SELECT
		(SELECT COUNT(*) FROM expenses WHERE user_id = ? AND category = ?),
		(SELECT COUNT(*) FROM incomes WHERE user_id = ? AND category = ?),
		(SELECT COUNT(*) FROM budgets WHERE user_id = ? AND category = ?)`,
		userID, name, userID, name, userID, name).Scan(&u.Expense, &u.Income, &u.Budget)
	if err != nil {
		return core.Usage{}, fmt.Errorf("count category usage: %w", err)
	}
	return u, nil
}

// CategoryUsage counts the caller's rows that reference name.
func (r *SQLiteRepository) CategoryUsage(ctx context.Context, userID, name string) (core.Usage, error) {
	return categoryUsage(ctx, r.db, userID, name)
}

// DeleteCategory removes an owned, non-default category that nothing
// references. Referenced categories are left in place and reported with a
// ConflictError carrying the counts.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, userID, id string) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		c, err := getOwnedCategory(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		if c.IsDefault {
			return core.Protectedf("default categories cannot be deleted")
		}

		usage, err := categoryUsage(ctx, tx, userID, c.Name)
		if err != nil {
			return err
		}
		if usage.InUse() {
			return &core.ConflictError{Message: "Category is used in transactions", Usage: usage}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, c.ID); err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		slog.InfoContext(ctx, "Category deleted", "category_id", c.ID, "name", c.Name)
		return nil
	})
}

// MergeCategory moves every reference from source to target and removes
// source. Income categories rewrite incomes; expense categories rewrite
// expenses and budgets. It returns the number of rewritten rows.
func (r *SQLiteRepository) MergeCategory(ctx context.Context, userID, sourceID, targetID string) (int64, error) {
	var moved int64
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		src, err := getOwnedCategory(ctx, tx, userID, sourceID)
		if err != nil {
			return err
		}
		dst, err := getOwnedCategory(ctx, tx, userID, targetID)
		if err != nil {
			return err
		}
		if src.ID == dst.ID {
			return core.Invalidf("cannot merge a category into itself")
		}
		if src.IsDefault {
			return core.Protectedf("default categories cannot be merged")
		}
		if src.Type != dst.Type {
			return core.Invalidf("categories must be of the same type")
		}

		tables := []string{"incomes"}
		if src.Type == core.CategoryExpense {
			tables = []string{"expenses", "budgets"}
		}
		now := r.nowMillis()
		for _, table := range tables {
			res, err := tx.ExecContext(ctx, `UPDATE `+table+` SET category = ?, updated_at = ?
				WHERE user_id = ? AND category = ?`, dst.Name, now, userID, src.Name)
			if err != nil {
				return fmt.Errorf("rewrite %s: %w", table, err)
			}
			n, _ := res.RowsAffected()
			moved += n
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, src.ID); err != nil {
			return fmt.Errorf("delete merged category: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "Category merged", "source_id", sourceID, "target_id", targetID, "rows", moved)
	return moved, nil
}
