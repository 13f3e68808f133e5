// Package export renders a user's ledgers and budgets as a CSV file or a
// PDF report.
package export

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"cashflow/internal/core"
)

type Format string

const (
	FormatPDF Format = "pdf"
	// FormatCSV keeps the "excel" name clients already send.
	FormatCSV Format = "excel"
)

type Section string

const (
	SectionIncome  Section = "income"
	SectionExpense Section = "expense"
	SectionBudget  Section = "budget"
)

// Request is the body of an export call.
type Request struct {
	Types  []string `json:"types"`
	Format string   `json:"format"`
}

// Validate checks the request and returns the parsed format and the
// requested sections without duplicates.
func (r Request) Validate() (Format, []Section, error) {
	if len(r.Types) == 0 {
		return "", nil, core.Invalidf("Please select at least one type")
	}
	f := Format(strings.ToLower(strings.TrimSpace(r.Format)))
	if f != FormatPDF && f != FormatCSV {
		return "", nil, core.Invalidf("Invalid format selected")
	}

	var sections []Section
	for _, t := range r.Types {
		s := Section(strings.ToLower(strings.TrimSpace(t)))
		switch s {
		case SectionIncome, SectionExpense, SectionBudget:
		default:
			return "", nil, core.Invalidf("unknown export type %q", t)
		}
		if !slices.Contains(sections, s) {
			sections = append(sections, s)
		}
	}
	return f, sections, nil
}

// Dataset holds every row of the requested sections. A nil slice means the
// section was not requested.
type Dataset struct {
	Income  []core.Transaction
	Expense []core.Transaction
	Budgets []core.Budget
}

func FileName(f Format) string {
	if f == FormatPDF {
		return "expense-tracker-export.pdf"
	}
	return "expense-tracker-export.csv"
}

func ContentType(f Format) string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "text/csv"
}

// Render writes data to w in format f.
func Render(w io.Writer, f Format, data Dataset) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, data)
	case FormatPDF:
		return WritePDF(w, data)
	default:
		return fmt.Errorf("unsupported export format %q", f)
	}
}
