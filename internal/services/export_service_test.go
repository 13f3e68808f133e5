package services

import (
	"context"
	"testing"

	"cashflow/internal/core"
	"cashflow/internal/export"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportService_Collect(t *testing.T) {
	ctx := context.Background()
	repo := newTestStorage(t)
	user := newTestUser(t, repo, "alice")
	other := newTestUser(t, repo, "bobby")
	seedLedgers(t, repo, user.ID)
	seedLedgers(t, repo, other.ID)
	svc := NewExportService(repo)

	_, _, err := svc.Collect(ctx, user.ID, export.Request{Format: "pdf"})
	assert.ErrorIs(t, err, core.ErrValidation)

	format, data, err := svc.Collect(ctx, user.ID, export.Request{Types: []string{"expense", "budget"}, Format: "excel"})
	require.NoError(t, err)
	assert.Equal(t, export.FormatCSV, format)
	assert.Nil(t, data.Income)
	assert.Len(t, data.Expense, 3)
	assert.Empty(t, data.Budgets)
	for _, e := range data.Expense {
		assert.Equal(t, user.ID, e.UserID)
	}

	format, data, err = svc.Collect(ctx, user.ID, export.Request{Types: []string{"income"}, Format: "pdf"})
	require.NoError(t, err)
	assert.Equal(t, export.FormatPDF, format)
	assert.Len(t, data.Income, 3)
	assert.Nil(t, data.Expense)
}
