package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cashflow/internal/core"
	"cashflow/internal/storage"
)

type BudgetService struct {
	storage *storage.SQLiteRepository
	now     func() time.Time
}

func NewBudgetService(storage *storage.SQLiteRepository) *BudgetService {
	return &BudgetService{storage: storage, now: time.Now}
}

// Create stores a budget whose running amount starts at the total of the
// expenses already inside its range.
func (s *BudgetService) Create(ctx context.Context, userID string, b core.Budget) (core.Budget, error) {
	b.Category = strings.TrimSpace(b.Category)
	b.UserID = userID
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	c, err := resolveCategory(ctx, s.storage, userID, b.Category, core.CategoryExpense)
	if err != nil {
		return core.Budget{}, err
	}
	b.Category = c.Name

	created, err := s.storage.CreateBudget(ctx, b)
	if err != nil {
		return core.Budget{}, fmt.Errorf("save budget: %w", err)
	}
	return created, nil
}

func (s *BudgetService) List(ctx context.Context, userID string) ([]core.Budget, error) {
	budgets, err := s.storage.ListBudgets(ctx, userID)
	if err != nil {
		return nil, err
	}
	if budgets == nil {
		budgets = []core.Budget{}
	}
	return budgets, nil
}

// Update edits category, range or limit. The running amount is not
// recomputed.
func (s *BudgetService) Update(ctx context.Context, userID, id string, patch core.BudgetPatch) (core.Budget, error) {
	if patch.Empty() {
		return core.Budget{}, core.ErrEmptyUpdate
	}
	if patch.Category != nil {
		c, err := resolveCategory(ctx, s.storage, userID, *patch.Category, core.CategoryExpense)
		if err != nil {
			return core.Budget{}, err
		}
		patch.Category = &c.Name
	}

	return s.storage.UpdateBudget(ctx, userID, id, func(old core.Budget) (core.Budget, error) {
		next := patch.Apply(old)
		if err := next.Validate(); err != nil {
			return core.Budget{}, err
		}
		return next, nil
	})
}

func (s *BudgetService) Delete(ctx context.Context, userID, id string) error {
	return s.storage.DeleteBudget(ctx, userID, id)
}

func (s *BudgetService) Summary(ctx context.Context, userID string) (core.BudgetSummary, error) {
	budgets, err := s.storage.ListBudgets(ctx, userID)
	if err != nil {
		return core.BudgetSummary{}, err
	}
	return core.SummarizeBudgets(budgets, s.now()), nil
}
