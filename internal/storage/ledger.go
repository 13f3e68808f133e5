package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cashflow/internal/core"
)

const transactionColumns = `id, user_id, amount_cents, category, description, date_ms, created_at, updated_at`

func ledgerTable(kind core.Kind) (string, error) {
	switch kind {
	case core.KindIncome:
		return "incomes", nil
	case core.KindExpense:
		return "expenses", nil
	default:
		return "", fmt.Errorf("unknown ledger kind %q", kind)
	}
}

func scanTransaction(kind core.Kind, row interface{ Scan(...any) error }) (core.Transaction, error) {
	var (
		t                       core.Transaction
		dateMs, created, update int64
	)
	if err := row.Scan(&t.ID, &t.UserID, &t.Amount.Cents, &t.Category, &t.Description, &dateMs, &created, &update); err != nil {
		return core.Transaction{}, err
	}
	t.Kind = kind
	t.Date = core.DateFromMillis(dateMs)
	t.CreatedAt = timeOrZero(created)
	t.UpdatedAt = timeOrZero(update)
	return t, nil
}

// CreateTransaction inserts t and applies adj to the matching budgets in
// the same transaction.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction, adj []core.BudgetAdjustment) (core.Transaction, error) {
	table, err := ledgerTable(t.Kind)
	if err != nil {
		return core.Transaction{}, err
	}

	now := r.nowMillis()
	t.ID = newID()
	t.CreatedAt = time.UnixMilli(now).UTC()
	t.UpdatedAt = t.CreatedAt

	err = r.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO `+table+` (`+transactionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.UserID, t.Amount.Cents, t.Category, t.Description, t.Date.UnixMilli(), now, now)
		if err != nil {
			return fmt.Errorf("insert %s: %w", t.Kind, err)
		}
		return applyAdjustments(ctx, tx, t.UserID, adj, now)
	})
	if err != nil {
		return core.Transaction{}, err
	}

	slog.InfoContext(ctx, "Transaction created", "kind", t.Kind, "id", t.ID, "amount", t.Amount.String())
	return t, nil
}

func getTransaction(ctx context.Context, q queryer, userID string, kind core.Kind, id string) (core.Transaction, error) {
	table, err := ledgerTable(kind)
	if err != nil {
		return core.Transaction{}, err
	}
	t, err := scanTransaction(kind, q.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM `+table+`
		WHERE id = ? AND user_id = ?`, id, userID))
	if isNoRows(err) {
		return core.Transaction{}, core.NotFoundf("%s not found", kind)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get %s: %w", kind, err)
	}
	return t, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, userID string, kind core.Kind, id string) (core.Transaction, error) {
	return getTransaction(ctx, r.db, userID, kind, id)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func ledgerWhere(userID string, f core.LedgerFilter) (string, []any) {
	clauses := []string{"user_id = ?"}
	args := []any{userID}

	if s := strings.TrimSpace(f.Search); s != "" {
		pattern := "%" + likeEscaper.Replace(s) + "%"
		clauses = append(clauses, `(casefold(description) LIKE casefold(?) ESCAPE '\' OR casefold(category) LIKE casefold(?) ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}
	if c := strings.TrimSpace(f.Category); c != "" {
		clauses = append(clauses, "casefold(category) = casefold(?)")
		args = append(args, c)
	}
	if f.MinAmount != nil {
		clauses = append(clauses, "amount_cents >= ?")
		args = append(args, f.MinAmount.Cents)
	}
	if f.MaxAmount != nil {
		clauses = append(clauses, "amount_cents <= ?")
		args = append(args, f.MaxAmount.Cents)
	}
	if f.StartDate != nil {
		clauses = append(clauses, "date_ms >= ?")
		args = append(args, f.StartDate.UnixMilli())
	}
	if f.EndDate != nil {
		clauses = append(clauses, "date_ms <= ?")
		args = append(args, f.EndDate.UnixMilli())
	}
	return strings.Join(clauses, " AND "), args
}

// ListTransactions returns one page of the ledger, newest first, and the
// total number of rows matching the filter.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID string, kind core.Kind, f core.LedgerFilter) ([]core.Transaction, int, error) {
	table, err := ledgerTable(kind)
	if err != nil {
		return nil, 0, err
	}
	f = f.Normalize()
	where, args := ledgerWhere(userID, f)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table+` WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", kind, err)
	}

	pageArgs := append(append([]any{}, args...), f.Limit, f.Offset())
	rows, err := r.db.QueryContext(ctx, `SELECT `+transactionColumns+` FROM `+table+` WHERE `+where+`
		ORDER BY date_ms DESC, created_at DESC LIMIT ? OFFSET ?`, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", kind, err)
	}
	defer rows.Close()

	items, err := collectTransactions(kind, rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// AllTransactions returns every row of the ledger for the user, newest first.
func (r *SQLiteRepository) AllTransactions(ctx context.Context, userID string, kind core.Kind) ([]core.Transaction, error) {
	table, err := ledgerTable(kind)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, `SELECT `+transactionColumns+` FROM `+table+`
		WHERE user_id = ? ORDER BY date_ms DESC, created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list all %s: %w", kind, err)
	}
	defer rows.Close()
	return collectTransactions(kind, rows)
}

func collectTransactions(kind core.Kind, rows *sql.Rows) ([]core.Transaction, error) {
	out := make([]core.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(kind, rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", kind, err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// UpdateTransaction loads the stored row, lets mutate compute the new row
// and its budget adjustments, and writes both inside one transaction.
func (r *SQLiteRepository) UpdateTransaction(
	ctx context.Context,
	userID string,
	kind core.Kind,
	id string,
	mutate func(old core.Transaction) (core.Transaction, []core.BudgetAdjustment, error),
) (core.Transaction, error) {
	table, err := ledgerTable(kind)
	if err != nil {
		return core.Transaction{}, err
	}

	var updated core.Transaction
	err = r.withTx(ctx, func(tx *sql.Tx) error {
		old, err := getTransaction(ctx, tx, userID, kind, id)
		if err != nil {
			return err
		}
		next, adj, err := mutate(old)
		if err != nil {
			return err
		}

		now := r.nowMillis()
		_, err = tx.ExecContext(ctx, `UPDATE `+table+` SET amount_cents = ?, category = ?, description = ?, date_ms = ?, updated_at = ?
			WHERE id = ? AND user_id = ?`,
			next.Amount.Cents, next.Category, next.Description, next.Date.UnixMilli(), now, id, userID)
		if err != nil {
			return fmt.Errorf("update %s: %w", kind, err)
		}
		if err := applyAdjustments(ctx, tx, userID, adj, now); err != nil {
			return err
		}

		next.UpdatedAt = time.UnixMilli(now).UTC()
		updated = next
		return nil
	})
	if err != nil {
		return core.Transaction{}, err
	}

	slog.InfoContext(ctx, "Transaction updated", "kind", kind, "id", id)
	return updated, nil
}

// DeleteTransaction removes the row and applies the adjustments plan
// derives from it, atomically.
func (r *SQLiteRepository) DeleteTransaction(
	ctx context.Context,
	userID string,
	kind core.Kind,
	id string,
	plan func(old core.Transaction) []core.BudgetAdjustment,
) (core.Transaction, error) {
	table, err := ledgerTable(kind)
	if err != nil {
		return core.Transaction{}, err
	}

	var deleted core.Transaction
	err = r.withTx(ctx, func(tx *sql.Tx) error {
		old, err := getTransaction(ctx, tx, userID, kind, id)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ? AND user_id = ?`, id, userID); err != nil {
			return fmt.Errorf("delete %s: %w", kind, err)
		}
		var adj []core.BudgetAdjustment
		if plan != nil {
			adj = plan(old)
		}
		if err := applyAdjustments(ctx, tx, userID, adj, r.nowMillis()); err != nil {
			return err
		}
		deleted = old
		return nil
	})
	if err != nil {
		return core.Transaction{}, err
	}

	slog.InfoContext(ctx, "Transaction deleted", "kind", kind, "id", id)
	return deleted, nil
}
