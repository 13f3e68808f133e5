package core

import "time"

// BudgetAdjustment moves the running total of the budget matching
// (Category, Date) by Delta. With Floor set the result is clamped at zero.
type BudgetAdjustment struct {
	Category string
	Date     time.Time
	Delta    Money
	Floor    bool
}

// PlanCreate returns the budget adjustments caused by adding t.
// Only expenses move budgets.
func PlanCreate(t Transaction) []BudgetAdjustment {
	if t.Kind != KindExpense {
		return nil
	}
	return []BudgetAdjustment{{Category: t.Category, Date: t.Date.Time, Delta: t.Amount}}
}

// PlanDelete returns the adjustments caused by removing t. The running
// total never goes below zero.
func PlanDelete(t Transaction) []BudgetAdjustment {
	if t.Kind != KindExpense {
		return nil
	}
	return []BudgetAdjustment{{
		Category: t.Category,
		Date:     t.Date.Time,
		Delta:    Money{Cents: -t.Amount.Cents},
		Floor:    true,
	}}
}

// PlanUpdate compares the stored and updated expense.
//
// A category or date change takes the old amount out of the budget matching
// the old row and puts the new amount into the budget matching the new row;
// the two lookups are independent and may hit the same budget, different
// budgets, or none. An amount-only change moves the single matching budget
// by the difference.
func PlanUpdate(old, updated Transaction) []BudgetAdjustment {
	if old.Kind != KindExpense {
		return nil
	}
	moved := old.Category != updated.Category || !old.Date.Equal(updated.Date.Time)
	switch {
	case moved:
		return []BudgetAdjustment{
			{Category: old.Category, Date: old.Date.Time, Delta: Money{Cents: -old.Amount.Cents}},
			{Category: updated.Category, Date: updated.Date.Time, Delta: updated.Amount},
		}
	case old.Amount != updated.Amount:
		return []BudgetAdjustment{{
			Category: updated.Category,
			Date:     updated.Date.Time,
			Delta:    updated.Amount.Sub(old.Amount),
		}}
	default:
		return nil
	}
}
