package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"cashflow/internal/core"
)

var (
	ledgerCSVHeader = []string{"date", "amount", "category", "description"}
	budgetCSVHeader = []string{"category", "limit", "amount", "description", "startDate", "endDate"}
)

// WriteCSV emits one labelled table per non-empty section. Sections after
// the first start with a blank-line gap.
func WriteCSV(w io.Writer, data Dataset) error {
	var sections []string

	if len(data.Income) > 0 {
		table, err := csvTable(ledgerCSVHeader, ledgerRows(data.Income))
		if err != nil {
			return err
		}
		sections = append(sections, "INCOME\n"+table)
	}
	if len(data.Expense) > 0 {
		table, err := csvTable(ledgerCSVHeader, ledgerRows(data.Expense))
		if err != nil {
			return err
		}
		sections = append(sections, "\n\nEXPENSE\n"+table)
	}
	if len(data.Budgets) > 0 {
		table, err := csvTable(budgetCSVHeader, budgetRows(data.Budgets))
		if err != nil {
			return err
		}
		sections = append(sections, "\n\nBUDGET\n"+table)
	}

	if _, err := io.WriteString(w, strings.Join(sections, "\n")); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func ledgerRows(txs []core.Transaction) [][]string {
	rows := make([][]string, 0, len(txs))
	for _, t := range txs {
		rows = append(rows, []string{t.Date.String(), t.Amount.String(), t.Category, t.Description})
	}
	return rows
}

// budgetRows leaves the description column empty; budgets carry none.
func budgetRows(budgets []core.Budget) [][]string {
	rows := make([][]string, 0, len(budgets))
	for _, b := range budgets {
		rows = append(rows, []string{b.Category, b.Limit.String(), b.Amount.String(), "", b.StartDate.String(), b.EndDate.String()})
	}
	return rows
}

func csvTable(header []string, rows [][]string) (string, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.Write(header); err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return "", fmt.Errorf("write csv rows: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
