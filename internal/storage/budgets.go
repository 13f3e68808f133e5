package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"cashflow/internal/core"
)

const budgetColumns = `id, user_id, category, start_ms, end_ms, limit_cents, amount_cents, created_at, updated_at`

func scanBudget(row interface{ Scan(...any) error }) (core.Budget, error) {
	var (
		b                                core.Budget
		startMs, endMs, created, updated int64
	)
	if err := row.Scan(&b.ID, &b.UserID, &b.Category, &startMs, &endMs, &b.Limit.Cents, &b.Amount.Cents, &created, &updated); err != nil {
		return core.Budget{}, err
	}
	b.StartDate = core.DateFromMillis(startMs)
	b.EndDate = core.DateFromMillis(endMs)
	b.CreatedAt = timeOrZero(created)
	b.UpdatedAt = timeOrZero(updated)
	return b, nil
}

// CreateBudget stores b with its amount seeded from the expenses already
// inside its range.
func (r *SQLiteRepository) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	now := r.nowMillis()
	b.ID = newID()
	b.CreatedAt = time.UnixMilli(now).UTC()
	b.UpdatedAt = b.CreatedAt

	err := r.withTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `SELECT COALESCE(SUM(amount_cents), 0) FROM expenses
			WHERE user_id = ? AND category = ? AND date_ms >= ? AND date_ms <= ?`,
			b.UserID, b.Category, b.StartDate.UnixMilli(), b.EndDate.UnixMilli()).Scan(&b.Amount.Cents)
		if err != nil {
			return fmt.Errorf("sum matching expenses: %w", err)
		}

		_, err = tx.ExecContext(ctx, `INSERT INTO budgets (`+budgetColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			b.ID, b.UserID, b.Category, b.StartDate.UnixMilli(), b.EndDate.UnixMilli(), b.Limit.Cents, b.Amount.Cents, now, now)
		if err != nil {
			return fmt.Errorf("insert budget: %w", err)
		}
		return nil
	})
	if err != nil {
		return core.Budget{}, err
	}

	slog.InfoContext(ctx, "Budget created", "budget_id", b.ID, "category", b.Category, "seed", b.Amount.String())
	return b, nil
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context, userID string) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+budgetColumns+` FROM budgets
		WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	out := make([]core.Budget, 0)
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func getBudget(ctx context.Context, q queryer, userID, id string) (core.Budget, error) {
	b, err := scanBudget(q.QueryRowContext(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE id = ? AND user_id = ?`, id, userID))
	if isNoRows(err) {
		return core.Budget{}, core.NotFoundf("budget not found")
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}
	return b, nil
}

func (r *SQLiteRepository) GetBudget(ctx context.Context, userID, id string) (core.Budget, error) {
	return getBudget(ctx, r.db, userID, id)
}

// UpdateBudget rewrites the editable fields. The running amount is kept
// as stored.
func (r *SQLiteRepository) UpdateBudget(ctx context.Context, userID, id string, mutate func(old core.Budget) (core.Budget, error)) (core.Budget, error) {
	var updated core.Budget
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		old, err := getBudget(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		next, err := mutate(old)
		if err != nil {
			return err
		}

		now := r.nowMillis()
		_, err = tx.ExecContext(ctx, `UPDATE budgets SET category = ?, start_ms = ?, end_ms = ?, limit_cents = ?, updated_at = ?
			WHERE id = ? AND user_id = ?`,
			next.Category, next.StartDate.UnixMilli(), next.EndDate.UnixMilli(), next.Limit.Cents, now, id, userID)
		if err != nil {
			return fmt.Errorf("update budget: %w", err)
		}
		next.Amount = old.Amount
		next.UpdatedAt = time.UnixMilli(now).UTC()
		updated = next
		return nil
	})
	if err != nil {
		return core.Budget{}, err
	}

	slog.InfoContext(ctx, "Budget updated", "budget_id", id)
	return updated, nil
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.NotFoundf("budget not found")
	}
	slog.InfoContext(ctx, "Budget deleted", "budget_id", id)
	return nil
}

// applyAdjustments resolves each adjustment to the earliest-created budget
// covering its category and date and shifts that budget's amount in place.
// Adjustments without a matching budget are skipped.
func applyAdjustments(ctx context.Context, q queryer, userID string, adj []core.BudgetAdjustment, now int64) error {
	for _, a := range adj {
		if a.Delta.IsZero() {
			continue
		}

		var budgetID string
		err := q.QueryRowContext(ctx, `SELECT id FROM budgets
			WHERE user_id = ? AND category = ? AND start_ms <= ? AND end_ms >= ?
			ORDER BY created_at ASC, rowid ASC LIMIT 1`,
			userID, a.Category, a.Date.UnixMilli(), a.Date.UnixMilli()).Scan(&budgetID)
		if isNoRows(err) {
			continue
		}
		if err != nil {
			return fmt.Errorf("find matching budget: %w", err)
		}

		set := `amount_cents = amount_cents + ?`
		if a.Floor {
			set = `amount_cents = MAX(0, amount_cents + ?)`
		}
		if _, err := q.ExecContext(ctx, `UPDATE budgets SET `+set+`, updated_at = ? WHERE id = ?`, a.Delta.Cents, now, budgetID); err != nil {
			return fmt.Errorf("adjust budget %s: %w", budgetID, err)
		}
		slog.DebugContext(ctx, "Budget adjusted", "budget_id", budgetID, "delta", a.Delta.String(), "floor", a.Floor)
	}
	return nil
}
