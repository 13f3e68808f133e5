package core

import (
	"testing"
	"time"
)

func expense(cents int64, category string, day int) Transaction {
	return Transaction{Kind: KindExpense, Amount: Money{Cents: cents}, Category: category, Date: NewDate(2024, 3, day)}
}

func TestPlanCreate(t *testing.T) {
	adj := PlanCreate(expense(50000, "Food", 15))
	if len(adj) != 1 || adj[0].Delta.Cents != 50000 || adj[0].Floor || adj[0].Category != "Food" {
		t.Fatalf("unexpected plan %+v", adj)
	}

	income := expense(50000, "Salary", 15)
	income.Kind = KindIncome
	if adj := PlanCreate(income); adj != nil {
		t.Fatalf("income must not touch budgets, got %+v", adj)
	}
}

func TestPlanDeleteFloorsAtZero(t *testing.T) {
	adj := PlanDelete(expense(700, "Food", 2))
	if len(adj) != 1 || adj[0].Delta.Cents != -700 || !adj[0].Floor {
		t.Fatalf("unexpected plan %+v", adj)
	}
}

func TestPlanUpdate(t *testing.T) {
	old := expense(10000, "Food", 10)

	t.Run("amount only", func(t *testing.T) {
		updated := old
		updated.Amount = Money{Cents: 4000}
		adj := PlanUpdate(old, updated)
		if len(adj) != 1 || adj[0].Delta.Cents != -6000 || adj[0].Floor {
			t.Fatalf("unexpected plan %+v", adj)
		}
	})

	t.Run("category change", func(t *testing.T) {
		updated := old
		updated.Category = "Travel"
		updated.Amount = Money{Cents: 12000}
		adj := PlanUpdate(old, updated)
		if len(adj) != 2 {
			t.Fatalf("expected two adjustments, got %+v", adj)
		}
		if adj[0].Category != "Food" || adj[0].Delta.Cents != -10000 {
			t.Fatalf("unexpected removal %+v", adj[0])
		}
		if adj[1].Category != "Travel" || adj[1].Delta.Cents != 12000 {
			t.Fatalf("unexpected addition %+v", adj[1])
		}
	})

	t.Run("date change", func(t *testing.T) {
		updated := old
		updated.Date = Date{Time: old.Date.Add(24 * time.Hour)}
		adj := PlanUpdate(old, updated)
		if len(adj) != 2 || !adj[0].Date.Equal(old.Date.Time) || !adj[1].Date.Equal(updated.Date.Time) {
			t.Fatalf("unexpected plan %+v", adj)
		}
	})

	t.Run("description only", func(t *testing.T) {
		updated := old
		updated.Description = "groceries"
		if adj := PlanUpdate(old, updated); adj != nil {
			t.Fatalf("expected no adjustments, got %+v", adj)
		}
	})
}

func TestSummarizeBudgets(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	budgets := []Budget{
		// running and under limit
		{StartDate: NewDate(2024, 3, 1), EndDate: NewDate(2024, 3, 31), Limit: Money{Cents: 1000}, Amount: Money{Cents: 300}},
		// running but over limit
		{StartDate: NewDate(2024, 3, 1), EndDate: NewDate(2024, 3, 31), Limit: Money{Cents: 1000}, Amount: Money{Cents: 1500}},
		// ended under limit
		{StartDate: NewDate(2024, 1, 1), EndDate: NewDate(2024, 1, 31), Limit: Money{Cents: 1000}, Amount: Money{Cents: 1000}},
		// ended over limit
		{StartDate: NewDate(2024, 2, 1), EndDate: NewDate(2024, 2, 29), Limit: Money{Cents: 1000}, Amount: Money{Cents: 2000}},
		// not started yet
		{StartDate: NewDate(2024, 4, 1), EndDate: NewDate(2024, 4, 30), Limit: Money{Cents: 500}, Amount: Money{}},
	}

	s := SummarizeBudgets(budgets, now)
	if s.TotalBudget.Cents != 4500 || s.TotalExpense.Cents != 4800 {
		t.Fatalf("unexpected totals %+v", s)
	}
	if s.ActiveBudget != 1 {
		t.Fatalf("expected 1 active, got %d", s.ActiveBudget)
	}
	if s.CompletedBudget != 3 {
		t.Fatalf("expected 3 completed, got %d", s.CompletedBudget)
	}
	if s.BudgetSucceed != 1 {
		t.Fatalf("expected 1 succeeded, got %d", s.BudgetSucceed)
	}
	if s.BudgetFailed != 2 {
		t.Fatalf("expected 2 failed, got %d", s.BudgetFailed)
	}

	if empty := SummarizeBudgets(nil, now); empty != (BudgetSummary{}) {
		t.Fatalf("expected zero summary, got %+v", empty)
	}
}

func TestTrailingMonths(t *testing.T) {
	months := TrailingMonths(time.Date(2025, 2, 20, 0, 0, 0, 0, time.UTC), 12)
	if len(months) != 12 {
		t.Fatalf("expected 12 months, got %d", len(months))
	}
	if months[0] != (YearMonth{Year: 2024, Month: time.March}) {
		t.Fatalf("unexpected first month %+v", months[0])
	}
	if months[11] != (YearMonth{Year: 2025, Month: time.February}) {
		t.Fatalf("unexpected last month %+v", months[11])
	}
	if months[9].Key() != "2024-12" || MonthName(months[9].Month) != "Dec" {
		t.Fatalf("unexpected year boundary %+v", months[9])
	}
}
