package services

import (
	"context"
	"testing"
	"time"

	"cashflow/internal/core"
	"cashflow/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedLedgers(t *testing.T, repo *storage.SQLiteRepository, userID string) {
	t.Helper()
	ctx := context.Background()
	incomes := NewLedgerService(repo, core.KindIncome)
	expenses := NewLedgerService(repo, core.KindExpense)

	add := func(svc *LedgerService, cents int64, category string, date core.Date) {
		_, err := svc.Create(ctx, userID, core.Transaction{Amount: money(cents), Category: category, Date: date})
		require.NoError(t, err)
	}
	add(incomes, 300000, "Salary", core.NewDate(2024, 6, 1))
	add(incomes, 50000, "Freelance", core.NewDate(2024, 1, 20))
	add(incomes, 100000, "Salary", core.NewDate(2023, 1, 1))
	add(expenses, 120000, "Housing", core.NewDate(2024, 6, 3))
	add(expenses, 20000, "Food", core.NewDate(2023, 12, 31))
	add(expenses, 5000, "Food", core.DateOf(time.Date(2024, 6, 30, 23, 0, 0, 0, time.UTC)))
}

func newTestAnalytics(repo *storage.SQLiteRepository) *AnalyticsService {
	svc := NewAnalyticsService(repo)
	svc.now = func() time.Time { return time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC) }
	return svc
}

func TestAnalyticsService_Summary(t *testing.T) {
	ctx := context.Background()
	repo := newTestStorage(t)
	user := newTestUser(t, repo, "alice")
	svc := newTestAnalytics(repo)

	empty, err := svc.Summary(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, core.NoCategory, empty.TopIncomeCategory)
	assert.Zero(t, empty.ProfitPercentage)

	seedLedgers(t, repo, user.ID)
	sum, err := svc.Summary(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, money(450000), sum.TotalIncome)
	assert.Equal(t, money(145000), sum.TotalExpense)
	assert.Equal(t, money(305000), sum.Net)
	assert.InDelta(t, 67.78, sum.ProfitPercentage, 0.001)
	assert.Equal(t, core.CategoryAmount{Category: "Salary", Amount: money(400000)}, sum.TopIncomeCategory)
	assert.Equal(t, core.CategoryAmount{Category: "Housing", Amount: money(120000)}, sum.TopExpenseCategory)
}

func TestAnalyticsService_MonthlyWindow(t *testing.T) {
	ctx := context.Background()
	repo := newTestStorage(t)
	user := newTestUser(t, repo, "alice")
	seedLedgers(t, repo, user.ID)
	svc := newTestAnalytics(repo)

	bars, err := svc.MonthlyComparison(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, bars, 12)
	assert.Equal(t, "Jul", bars[0].Month)
	assert.Equal(t, "Jun", bars[11].Month)
	assert.Equal(t, core.MonthlyComparison{Month: "Jun", Income: money(300000), Expense: money(125000)}, bars[11])
	assert.Equal(t, money(20000), bars[5].Expense, "December 2023")
	assert.Equal(t, money(50000), bars[6].Income, "January 2024")

	trend, err := svc.Trend(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, trend, 12)
	assert.Equal(t, 2023, trend[0].Year)
	assert.Equal(t, 2024, trend[11].Year)
	assert.Equal(t, money(175000), trend[11].Net)
	assert.Equal(t, money(-20000), trend[5].Net)
	for _, p := range trend[1:5] {
		assert.True(t, p.Income.IsZero() && p.Expense.IsZero())
	}
}

func TestAnalyticsService_CategoryDistribution(t *testing.T) {
	ctx := context.Background()
	repo := newTestStorage(t)
	user := newTestUser(t, repo, "alice")
	svc := newTestAnalytics(repo)

	dist, err := svc.CategoryDistribution(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, dist.IncomeCategories)
	assert.NotNil(t, dist.ExpenseCategories)

	seedLedgers(t, repo, user.ID)
	dist, err = svc.CategoryDistribution(ctx, user.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []core.CategoryAmount{
		{Category: "Salary", Amount: money(400000)},
		{Category: "Freelance", Amount: money(50000)},
	}, dist.IncomeCategories)
	assert.ElementsMatch(t, []core.CategoryAmount{
		{Category: "Housing", Amount: money(120000)},
		{Category: "Food", Amount: money(25000)},
	}, dist.ExpenseCategories)
}

func TestAnalyticsService_CompareMonths(t *testing.T) {
	ctx := context.Background()
	repo := newTestStorage(t)
	user := newTestUser(t, repo, "alice")
	svc := newTestAnalytics(repo)

	_, err := svc.CompareMonths(ctx, user.ID, "2024-01", "")
	require.ErrorIs(t, err, core.ErrValidation)
	assert.Equal(t, "month1 and month2 are required", core.Message(err, ""))

	_, err = svc.CompareMonths(ctx, user.ID, "2024-13", "2024-01")
	assert.ErrorIs(t, err, core.ErrValidation)

	cmp, err := svc.CompareMonths(ctx, user.ID, "2024-01", "2024-02")
	require.NoError(t, err)
	assert.Equal(t, core.MonthComparison{}, cmp)

	seedLedgers(t, repo, user.ID)
	cmp, err = svc.CompareMonths(ctx, user.ID, "2024-06", "2023-12")
	require.NoError(t, err)
	assert.Equal(t, core.MonthTotals{Income: money(300000), Expense: money(125000), Net: money(175000)}, cmp.Month1)
	assert.Equal(t, core.MonthTotals{Expense: money(20000), Net: money(-20000)}, cmp.Month2)
}

func TestAnalyticsService_Recent(t *testing.T) {
	ctx := context.Background()
	repo := newTestStorage(t)
	user := newTestUser(t, repo, "alice")
	seedLedgers(t, repo, user.ID)
	incomes := NewLedgerService(repo, core.KindIncome)
	for day := 1; day <= 8; day++ {
		_, err := incomes.Create(ctx, user.ID, core.Transaction{Amount: money(100), Category: "Freelance", Date: core.NewDate(2022, 1, day)})
		require.NoError(t, err)
	}

	recent, err := newTestAnalytics(repo).Recent(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, recent, 10)
	assert.Equal(t, core.KindExpense, recent[0].Type)
	assert.Equal(t, "Food", recent[0].Category)
	for i := 1; i < len(recent); i++ {
		assert.False(t, recent[i].Date.After(recent[i-1].Date.Time))
	}
}
