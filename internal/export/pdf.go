package export

import (
	"fmt"
	"io"
	"strings"

	"cashflow/internal/core"

	"github.com/go-pdf/fpdf"
)

const reportTitle = "Financial Report"

type field struct {
	name  string
	value string
}

// WritePDF renders a titled report with one section per non-empty dataset.
// Every row is a single "field: value" line.
func WritePDF(w io.Writer, data Dataset) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 10)
	pdf.SetTitle(reportTitle, true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, reportTitle, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	section := func(title string, lines []string) {
		if len(lines) == 0 {
			return
		}
		pdf.SetFont("Helvetica", "BU", 16)
		pdf.CellFormat(0, 9, title, "", 1, "L", false, 0, "")
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "", 10)
		for _, line := range lines {
			pdf.MultiCell(0, 5, tr(line), "", "L", false)
		}
		pdf.Ln(5)
	}

	section("Income", ledgerLines(data.Income))
	section("Expense", ledgerLines(data.Expense))
	section("Budget", budgetLines(data.Budgets))

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

func ledgerLines(txs []core.Transaction) []string {
	lines := make([]string, 0, len(txs))
	for _, t := range txs {
		lines = append(lines, joinFields([]field{
			{"date", t.Date.String()},
			{"category", t.Category},
			{"amount", moneyOrEmpty(t.Amount)},
			{"description", t.Description},
		}))
	}
	return lines
}

func budgetLines(budgets []core.Budget) []string {
	lines := make([]string, 0, len(budgets))
	for _, b := range budgets {
		lines = append(lines, joinFields([]field{
			{"category", b.Category},
			{"limit", moneyOrEmpty(b.Limit)},
			{"amount", moneyOrEmpty(b.Amount)},
			{"startDate", b.StartDate.String()},
			{"endDate", b.EndDate.String()},
		}))
	}
	return lines
}

func moneyOrEmpty(m core.Money) string {
	if m.IsZero() {
		return ""
	}
	return m.String()
}

// joinFields renders "name: value" pairs separated by " | ". Empty values
// show as N/A.
func joinFields(fields []field) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		v := f.value
		if v == "" {
			v = "N/A"
		}
		parts[i] = f.name + ": " + v
	}
	return strings.Join(parts, " | ")
}
