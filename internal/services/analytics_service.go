package services

import (
	"context"
	"strings"
	"time"

	"cashflow/internal/core"
	"cashflow/internal/storage"

	"golang.org/x/sync/errgroup"
)

const (
	trendMonths       = 12
	recentTransaction = 10
)

// AnalyticsService computes read-only aggregates over both ledgers.
// Independent queries run concurrently.
type AnalyticsService struct {
	storage *storage.SQLiteRepository
	now     func() time.Time
}

func NewAnalyticsService(storage *storage.SQLiteRepository) *AnalyticsService {
	return &AnalyticsService{storage: storage, now: time.Now}
}

func (s *AnalyticsService) Summary(ctx context.Context, userID string) (core.Summary, error) {
	var sum core.Summary
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		sum.TotalIncome, err = s.storage.LedgerTotal(gctx, userID, core.KindIncome, time.Time{}, time.Time{})
		return err
	})
	g.Go(func() (err error) {
		sum.TotalExpense, err = s.storage.LedgerTotal(gctx, userID, core.KindExpense, time.Time{}, time.Time{})
		return err
	})
	g.Go(func() (err error) {
		sum.TopIncomeCategory, err = s.storage.TopCategory(gctx, userID, core.KindIncome)
		return err
	})
	g.Go(func() (err error) {
		sum.TopExpenseCategory, err = s.storage.TopCategory(gctx, userID, core.KindExpense)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.Summary{}, err
	}

	sum.Net = sum.TotalIncome.Sub(sum.TotalExpense)
	sum.ProfitPercentage = core.ProfitPercentage(sum.TotalIncome, sum.Net)
	return sum, nil
}

// monthlyWindow loads per-month totals of both ledgers for the trailing
// months ending with the current one.
func (s *AnalyticsService) monthlyWindow(ctx context.Context, userID string) ([]core.YearMonth, map[string]core.Money, map[string]core.Money, error) {
	months := core.TrailingMonths(s.now(), trendMonths)
	from, _ := core.MonthRange(months[0].Year, months[0].Month)
	last := months[len(months)-1]
	_, to := core.MonthRange(last.Year, last.Month)

	var income, expense map[string]core.Money
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		income, err = s.storage.MonthlyTotals(gctx, userID, core.KindIncome, from, to)
		return err
	})
	g.Go(func() (err error) {
		expense, err = s.storage.MonthlyTotals(gctx, userID, core.KindExpense, from, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}
	return months, income, expense, nil
}

// MonthlyComparison returns income and expense for each of the last twelve
// months, oldest first. Empty months are zero.
func (s *AnalyticsService) MonthlyComparison(ctx context.Context, userID string) ([]core.MonthlyComparison, error) {
	months, income, expense, err := s.monthlyWindow(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]core.MonthlyComparison, len(months))
	for i, m := range months {
		out[i] = core.MonthlyComparison{
			Month:   core.MonthName(m.Month),
			Income:  income[m.Key()],
			Expense: expense[m.Key()],
		}
	}
	return out, nil
}

// Trend is MonthlyComparison with the year and net of each month.
func (s *AnalyticsService) Trend(ctx context.Context, userID string) ([]core.TrendPoint, error) {
	months, income, expense, err := s.monthlyWindow(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]core.TrendPoint, len(months))
	for i, m := range months {
		in, ex := income[m.Key()], expense[m.Key()]
		out[i] = core.TrendPoint{
			Month:   core.MonthName(m.Month),
			Year:    m.Year,
			Income:  in,
			Expense: ex,
			Net:     in.Sub(ex),
		}
	}
	return out, nil
}

func (s *AnalyticsService) CategoryDistribution(ctx context.Context, userID string) (core.CategoryDistribution, error) {
	var dist core.CategoryDistribution
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		dist.IncomeCategories, err = s.storage.CategoryTotals(gctx, userID, core.KindIncome)
		return err
	})
	g.Go(func() (err error) {
		dist.ExpenseCategories, err = s.storage.CategoryTotals(gctx, userID, core.KindExpense)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.CategoryDistribution{}, err
	}
	return dist, nil
}

// CompareMonths totals two YYYY-MM months side by side.
func (s *AnalyticsService) CompareMonths(ctx context.Context, userID, month1, month2 string) (core.MonthComparison, error) {
	if strings.TrimSpace(month1) == "" || strings.TrimSpace(month2) == "" {
		return core.MonthComparison{}, core.Invalidf("month1 and month2 are required")
	}
	y1, m1, err := core.ParseMonth(month1)
	if err != nil {
		return core.MonthComparison{}, err
	}
	y2, m2, err := core.ParseMonth(month2)
	if err != nil {
		return core.MonthComparison{}, err
	}

	var out core.MonthComparison
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.Month1, err = s.monthTotals(gctx, userID, y1, m1)
		return err
	})
	g.Go(func() (err error) {
		out.Month2, err = s.monthTotals(gctx, userID, y2, m2)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.MonthComparison{}, err
	}
	return out, nil
}

func (s *AnalyticsService) monthTotals(ctx context.Context, userID string, year int, month time.Month) (core.MonthTotals, error) {
	from, to := core.MonthRange(year, month)
	income, err := s.storage.LedgerTotal(ctx, userID, core.KindIncome, from, to)
	if err != nil {
		return core.MonthTotals{}, err
	}
	expense, err := s.storage.LedgerTotal(ctx, userID, core.KindExpense, from, to)
	if err != nil {
		return core.MonthTotals{}, err
	}
	return core.MonthTotals{Income: income, Expense: expense, Net: income.Sub(expense)}, nil
}

// Recent returns the newest rows across both ledgers.
func (s *AnalyticsService) Recent(ctx context.Context, userID string) ([]core.RecentTransaction, error) {
	return s.storage.RecentTransactions(ctx, userID, recentTransaction)
}
