package export

import (
	"bytes"
	"strings"
	"testing"

	"cashflow/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleData() Dataset {
	return Dataset{
		Income: []core.Transaction{
			{Amount: core.Money{Cents: 300000}, Category: "Salary", Description: "March pay", Date: core.NewDate(2024, 3, 1)},
		},
		Expense: []core.Transaction{
			{Amount: core.Money{Cents: 1250}, Category: "Food", Description: "pizza, beer", Date: core.NewDate(2024, 3, 2)},
		},
		Budgets: []core.Budget{
			{Category: "Food", Limit: core.Money{Cents: 20000}, Amount: core.Money{Cents: 1250},
				StartDate: core.NewDate(2024, 3, 1), EndDate: core.NewDate(2024, 3, 31)},
		},
	}
}

func TestRequestValidate(t *testing.T) {
	f, sections, err := Request{Types: []string{"income", "Budget", "income"}, Format: "excel"}.Validate()
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)
	assert.Equal(t, []Section{SectionIncome, SectionBudget}, sections)

	_, _, err = Request{Format: "pdf"}.Validate()
	assert.ErrorIs(t, err, core.ErrValidation)
	assert.Equal(t, "Please select at least one type", core.Message(err, ""))

	_, _, err = Request{Types: []string{"income"}, Format: "docx"}.Validate()
	assert.ErrorIs(t, err, core.ErrValidation)
	assert.Equal(t, "Invalid format selected", core.Message(err, ""))

	_, _, err = Request{Types: []string{"savings"}, Format: "pdf"}.Validate()
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleData()))

	want := strings.Join([]string{
		"INCOME",
		"date,amount,category,description",
		"2024-03-01T00:00:00Z,3000,Salary,March pay",
		"",
		"",
		"EXPENSE",
		"date,amount,category,description",
		`2024-03-02T00:00:00Z,12.5,Food,"pizza, beer"`,
		"",
		"",
		"BUDGET",
		"category,limit,amount,description,startDate,endDate",
		"Food,200,12.5,,2024-03-01T00:00:00Z,2024-03-31T00:00:00Z",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestWriteCSVSkipsEmptySections(t *testing.T) {
	data := sampleData()
	data.Income = nil
	data.Budgets = []core.Budget{}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, data))
	assert.True(t, strings.HasPrefix(buf.String(), "\n\nEXPENSE\n"))
	assert.NotContains(t, buf.String(), "INCOME")
	assert.NotContains(t, buf.String(), "BUDGET")

	buf.Reset()
	require.NoError(t, WriteCSV(&buf, Dataset{}))
	assert.Empty(t, buf.String())
}

func TestPDFLines(t *testing.T) {
	data := sampleData()
	data.Income[0].Description = ""

	lines := ledgerLines(data.Income)
	require.Len(t, lines, 1)
	assert.Equal(t, "date: 2024-03-01T00:00:00Z | category: Salary | amount: 3000 | description: N/A", lines[0])

	lines = budgetLines(data.Budgets)
	assert.Equal(t, "category: Food | limit: 200 | amount: 12.5 | startDate: 2024-03-01T00:00:00Z | endDate: 2024-03-31T00:00:00Z", lines[0])

	data.Budgets[0].Amount = core.Money{}
	assert.Contains(t, budgetLines(data.Budgets)[0], "amount: N/A")
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatPDF, sampleData()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

	buf.Reset()
	require.NoError(t, Render(&buf, FormatPDF, Dataset{}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")), "an empty report still has a title page")

	assert.Error(t, Render(&buf, Format("xml"), Dataset{}))
	assert.Equal(t, "expense-tracker-export.pdf", FileName(FormatPDF))
	assert.Equal(t, "text/csv", ContentType(FormatCSV))
}
