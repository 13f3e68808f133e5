package services

import (
	"context"
	"fmt"

	"cashflow/internal/core"
	"cashflow/internal/export"
	"cashflow/internal/storage"

	"golang.org/x/sync/errgroup"
)

type ExportService struct {
	storage *storage.SQLiteRepository
}

func NewExportService(storage *storage.SQLiteRepository) *ExportService {
	return &ExportService{storage: storage}
}

// Collect validates req and loads every requested section in full.
func (s *ExportService) Collect(ctx context.Context, userID string, req export.Request) (export.Format, export.Dataset, error) {
	format, sections, err := req.Validate()
	if err != nil {
		return "", export.Dataset{}, err
	}

	var data export.Dataset
	g, gctx := errgroup.WithContext(ctx)
	for _, section := range sections {
		switch section {
		case export.SectionIncome:
			g.Go(func() (err error) {
				data.Income, err = s.storage.AllTransactions(gctx, userID, core.KindIncome)
				return err
			})
		case export.SectionExpense:
			g.Go(func() (err error) {
				data.Expense, err = s.storage.AllTransactions(gctx, userID, core.KindExpense)
				return err
			})
		case export.SectionBudget:
			g.Go(func() (err error) {
				data.Budgets, err = s.storage.ListBudgets(gctx, userID)
				return err
			})
		}
	}
	if err := g.Wait(); err != nil {
		return "", export.Dataset{}, fmt.Errorf("collect export: %w", err)
	}
	return format, data, nil
}
