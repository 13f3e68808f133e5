package core

import "time"

// CategoryAmount is a total aggregated by category name.
type CategoryAmount struct {
	Category string `json:"category"`
	Amount   Money  `json:"amount"`
}

// NoCategory is reported when a ledger has no rows to rank.
var NoCategory = CategoryAmount{Category: "N/A"}

type Summary struct {
	TotalIncome        Money          `json:"totalIncome"`
	TotalExpense       Money          `json:"totalExpense"`
	Net                Money          `json:"net"`
	ProfitPercentage   float64        `json:"profitPercentage"`
	TopIncomeCategory  CategoryAmount `json:"topIncomeCategory"`
	TopExpenseCategory CategoryAmount `json:"topExpenseCategory"`
}

type MonthlyComparison struct {
	Month   string `json:"month"`
	Income  Money  `json:"income"`
	Expense Money  `json:"expense"`
}

type TrendPoint struct {
	Month   string `json:"month"`
	Year    int    `json:"year"`
	Income  Money  `json:"income"`
	Expense Money  `json:"expense"`
	Net     Money  `json:"net"`
}

type CategoryDistribution struct {
	IncomeCategories  []CategoryAmount `json:"incomeCategories"`
	ExpenseCategories []CategoryAmount `json:"expenseCategories"`
}

type MonthTotals struct {
	Income  Money `json:"income"`
	Expense Money `json:"expense"`
	Net     Money `json:"net"`
}

type MonthComparison struct {
	Month1 MonthTotals `json:"month1"`
	Month2 MonthTotals `json:"month2"`
}

// RecentTransaction is a ledger row tagged with the ledger it came from.
type RecentTransaction struct {
	ID          string `json:"id"`
	Amount      Money  `json:"amount"`
	Date        Date   `json:"date"`
	Type        Kind   `json:"type"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// BudgetSummary counts budgets by state. The counters overlap on purpose
// and are each computed from their own predicate.
type BudgetSummary struct {
	TotalBudget     Money `json:"totalBudget"`
	TotalExpense    Money `json:"totalExpense"`
	ActiveBudget    int   `json:"activeBudget"`
	CompletedBudget int   `json:"completedBudget"`
	BudgetSucceed   int   `json:"budgetSucceed"`
	BudgetFailed    int   `json:"budgetFailed"`
}

// SummarizeBudgets evaluates every budget against now.
func SummarizeBudgets(budgets []Budget, now time.Time) BudgetSummary {
	var s BudgetSummary
	for _, b := range budgets {
		s.TotalBudget = s.TotalBudget.Add(b.Limit)
		s.TotalExpense = s.TotalExpense.Add(b.Amount)

		started := !b.StartDate.After(now)
		ended := b.EndDate.Before(now)
		under := b.Amount.Cents < b.Limit.Cents

		if started && !ended && under {
			s.ActiveBudget++
		}
		if ended || !under {
			s.CompletedBudget++
		}
		if b.Amount.Cents <= b.Limit.Cents && ended {
			s.BudgetSucceed++
		}
		if b.Amount.Cents > b.Limit.Cents {
			s.BudgetFailed++
		}
	}
	return s
}

var monthNames = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// MonthName returns the three-letter English label for m.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNames[m-1]
}

// YearMonth identifies a calendar month.
type YearMonth struct {
	Year  int
	Month time.Month
}

// Key formats the month as YYYY-MM.
func (ym YearMonth) Key() string {
	return time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

// TrailingMonths returns the n calendar months ending with now's month,
// oldest first.
func TrailingMonths(now time.Time, n int) []YearMonth {
	now = now.UTC()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	out := make([]YearMonth, n)
	for i := 0; i < n; i++ {
		d := first.AddDate(0, i-(n-1), 0)
		out[i] = YearMonth{Year: d.Year(), Month: d.Month()}
	}
	return out
}

// ProfitPercentage is net/income*100 rounded to two decimals, or 0 when
// there is no income.
func ProfitPercentage(income, net Money) float64 {
	if income.Cents <= 0 {
		return 0
	}
	pct, _ := net.Decimal().Div(income.Decimal()).Shift(2).Round(2).Float64()
	return pct
}
