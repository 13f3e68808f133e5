package storage

import (
	"context"
	"fmt"
	"time"

	"cashflow/internal/core"
)

// LedgerTotal sums the ledger over [from, to). A zero bound is open.
func (r *SQLiteRepository) LedgerTotal(ctx context.Context, userID string, kind core.Kind, from, to time.Time) (core.Money, error) {
	table, err := ledgerTable(kind)
	if err != nil {
		return core.Money{}, err
	}

	query := `SELECT COALESCE(SUM(amount_cents), 0) FROM ` + table + ` WHERE user_id = ?`
	args := []any{userID}
	if !from.IsZero() {
		query += ` AND date_ms >= ?`
		args = append(args, from.UnixMilli())
	}
	if !to.IsZero() {
		query += ` AND date_ms < ?`
		args = append(args, to.UnixMilli())
	}

	var total core.Money
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total.Cents); err != nil {
		return core.Money{}, fmt.Errorf("sum %s: %w", kind, err)
	}
	return total, nil
}

// CategoryTotals groups the ledger by category, largest total first.
func (r *SQLiteRepository) CategoryTotals(ctx context.Context, userID string, kind core.Kind) ([]core.CategoryAmount, error) {
	table, err := ledgerTable(kind)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `SELECT category, SUM(amount_cents) AS total FROM `+table+`
		WHERE user_id = ? GROUP BY category ORDER BY total DESC, category ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("group %s by category: %w", kind, err)
	}
	defer rows.Close()

	out := make([]core.CategoryAmount, 0)
	for rows.Next() {
		var ca core.CategoryAmount
		if err := rows.Scan(&ca.Category, &ca.Amount.Cents); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		out = append(out, ca)
	}
	return out, rows.Err()
}

// TopCategory returns the category with the highest total, or
// core.NoCategory when the ledger is empty.
func (r *SQLiteRepository) TopCategory(ctx context.Context, userID string, kind core.Kind) (core.CategoryAmount, error) {
	totals, err := r.CategoryTotals(ctx, userID, kind)
	if err != nil {
		return core.CategoryAmount{}, err
	}
	if len(totals) == 0 {
		return core.NoCategory, nil
	}
	return totals[0], nil
}

// MonthlyTotals sums the ledger per UTC calendar month over [from, to),
// keyed by YYYY-MM. Months without rows are absent.
func (r *SQLiteRepository) MonthlyTotals(ctx context.Context, userID string, kind core.Kind, from, to time.Time) (map[string]core.Money, error) {
	table, err := ledgerTable(kind)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `SELECT strftime('%Y-%m', date_ms / 1000, 'unixepoch') AS month, SUM(amount_cents)
		FROM `+table+` WHERE user_id = ? AND date_ms >= ? AND date_ms < ?
		GROUP BY month`, userID, from.UnixMilli(), to.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("group %s by month: %w", kind, err)
	}
	defer rows.Close()

	out := make(map[string]core.Money)
	for rows.Next() {
		var (
			month string
			cents int64
		)
		if err := rows.Scan(&month, &cents); err != nil {
			return nil, fmt.Errorf("scan monthly total: %w", err)
		}
		out[month] = core.Money{Cents: cents}
	}
	return out, rows.Err()
}

// RecentTransactions merges both ledgers and returns the newest limit rows.
func (r *SQLiteRepository) RecentTransactions(ctx context.Context, userID string, limit int) ([]core.RecentTransaction, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, amount_cents, date_ms, kind, category, description FROM (
			SELECT id, amount_cents, date_ms, 'income' AS kind, category, description, created_at FROM incomes WHERE user_id = ?
			UNION ALL
			SELECT id, amount_cents, date_ms, 'expense' AS kind, category, description, created_at FROM expenses WHERE user_id = ?
		) ORDER BY date_ms DESC, created_at DESC LIMIT ?`, userID, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent transactions: %w", err)
	}
	defer rows.Close()

	out := make([]core.RecentTransaction, 0, limit)
	for rows.Next() {
		var (
			rt     core.RecentTransaction
			dateMs int64
			kind   string
		)
		if err := rows.Scan(&rt.ID, &rt.Amount.Cents, &dateMs, &kind, &rt.Category, &rt.Description); err != nil {
			return nil, fmt.Errorf("scan recent transaction: %w", err)
		}
		rt.Date = core.DateFromMillis(dateMs)
		rt.Type = core.Kind(kind)
		out = append(out, rt)
	}
	return out, rows.Err()
}
