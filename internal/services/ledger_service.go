package services

import (
	"context"
	"fmt"
	"strings"

	"cashflow/internal/core"
	"cashflow/internal/storage"
)

// LedgerService serves the income and expense ledgers. Expense mutations
// carry their budget adjustments into the same storage transaction.
type LedgerService struct {
	storage *storage.SQLiteRepository
	kind    core.Kind
}

func NewLedgerService(storage *storage.SQLiteRepository, kind core.Kind) *LedgerService {
	return &LedgerService{storage: storage, kind: kind}
}

func (s *LedgerService) Kind() core.Kind { return s.kind }

func (s *LedgerService) Create(ctx context.Context, userID string, t core.Transaction) (core.Transaction, error) {
	t.Kind = s.kind
	t.UserID = userID
	t.Category = strings.TrimSpace(t.Category)
	t.Description = strings.TrimSpace(t.Description)
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	c, err := resolveCategory(ctx, s.storage, userID, t.Category, s.kind.CategoryType())
	if err != nil {
		return core.Transaction{}, err
	}
	t.Category = c.Name

	created, err := s.storage.CreateTransaction(ctx, t, core.PlanCreate(t))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save %s: %w", s.kind, err)
	}
	return created, nil
}

// List returns one page of the ledger. An end date given without a time
// of day covers that whole day.
func (s *LedgerService) List(ctx context.Context, userID string, f core.LedgerFilter) (core.Page[core.Transaction], error) {
	f = f.Normalize()
	if f.EndDate != nil && f.EndDate.IsMidnight() {
		end := f.EndDate.EndOfDay()
		f.EndDate = &end
	}
	if f.MinAmount != nil && f.MaxAmount != nil && f.MinAmount.Cents > f.MaxAmount.Cents {
		return core.Page[core.Transaction]{}, core.Invalidf("minAmount must not exceed maxAmount")
	}

	rows, total, err := s.storage.ListTransactions(ctx, userID, s.kind, f)
	if err != nil {
		return core.Page[core.Transaction]{}, fmt.Errorf("list %s: %w", s.kind, err)
	}
	if rows == nil {
		rows = []core.Transaction{}
	}
	return core.Page[core.Transaction]{
		Data:       rows,
		Pagination: core.NewPagination(total, f.Page, f.Limit),
	}, nil
}

func (s *LedgerService) Get(ctx context.Context, userID, id string) (core.Transaction, error) {
	return s.storage.GetTransaction(ctx, userID, s.kind, id)
}

// All returns the whole ledger, newest first.
func (s *LedgerService) All(ctx context.Context, userID string) ([]core.Transaction, error) {
	return s.storage.AllTransactions(ctx, userID, s.kind)
}

// Update merges the patch into the stored row. The merged row must be
// valid on its own.
func (s *LedgerService) Update(ctx context.Context, userID, id string, patch core.TransactionPatch) (core.Transaction, error) {
	if patch.Empty() {
		return core.Transaction{}, core.ErrEmptyUpdate
	}
	if patch.Category != nil {
		c, err := resolveCategory(ctx, s.storage, userID, *patch.Category, s.kind.CategoryType())
		if err != nil {
			return core.Transaction{}, err
		}
		patch.Category = &c.Name
	}

	return s.storage.UpdateTransaction(ctx, userID, s.kind, id,
		func(old core.Transaction) (core.Transaction, []core.BudgetAdjustment, error) {
			next := patch.Apply(old)
			if err := next.Validate(); err != nil {
				return core.Transaction{}, nil, err
			}
			return next, core.PlanUpdate(old, next), nil
		})
}

func (s *LedgerService) Delete(ctx context.Context, userID, id string) (core.Transaction, error) {
	return s.storage.DeleteTransaction(ctx, userID, s.kind, id, core.PlanDelete)
}
