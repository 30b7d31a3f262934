package transaction

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/fintrack-api/pkg/money"
)

func seedLedger(t *testing.T, store *fakeStore, userID uuid.UUID) {
	t.Helper()

	groceries := uuid.New()
	expenseID := uuid.New()
	incomeID := uuid.New()
	store.transactions[expenseID] = Transaction{
		ID:          expenseID,
		UserID:      userID,
		CategoryID:  &groceries,
		Category:    &CategoryRef{ID: groceries, Name: "Groceries", Type: "EXPENSE"},
		Amount:      money.NewAmount(-45.99),
		Type:        "EXPENSE",
		Description: "WALMART GROCERY STORE #1234",
		Date:        time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Currency:    "USD",
	}
	store.transactions[incomeID] = Transaction{
		ID:          incomeID,
		UserID:      userID,
		Amount:      money.NewAmount(2500),
		Type:        "INCOME",
		Description: "PAYROLL DEPOSIT ACME CORP",
		Date:        time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Currency:    "USD",
	}
}

func TestService_ExportCSV(t *testing.T) {
	svc, store, _ := newTestService(t)
	userID := uuid.New()
	seedLedger(t, store, userID)

	out, err := svc.ExportCSV(context.Background(), userID, ListFilter{})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "date,description,amount,currency,type,category", lines[0])
	assert.Contains(t, string(out), "2026-03-10,WALMART GROCERY STORE #1234,-45.99,USD,EXPENSE,Groceries")
	assert.Contains(t, string(out), "2026-03-01,PAYROLL DEPOSIT ACME CORP,2500.00,USD,INCOME,")
}

func TestService_ExportCSV_Empty(t *testing.T) {
	svc, _, _ := newTestService(t)

	out, err := svc.ExportCSV(context.Background(), uuid.New(), ListFilter{})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 1)
	assert.Equal(t, "date,description,amount,currency,type,category", lines[0])
}

func TestService_ExportCSV_FilterByType(t *testing.T) {
	svc, store, _ := newTestService(t)
	userID := uuid.New()
	seedLedger(t, store, userID)

	out, err := svc.ExportCSV(context.Background(), userID, ListFilter{Type: "INCOME"})
	require.NoError(t, err)

	assert.Contains(t, string(out), "PAYROLL DEPOSIT ACME CORP")
	assert.NotContains(t, string(out), "WALMART")
}

func TestService_ExportXLSX(t *testing.T) {
	svc, store, _ := newTestService(t)
	userID := uuid.New()
	seedLedger(t, store, userID)

	out, err := svc.ExportXLSX(context.Background(), userID, ListFilter{})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Transactions")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Date", "Description", "Amount", "Currency", "Type", "Category"}, rows[0])

	descriptions := []string{rows[1][1], rows[2][1]}
	assert.Contains(t, descriptions, "WALMART GROCERY STORE #1234")
	assert.Contains(t, descriptions, "PAYROLL DEPOSIT ACME CORP")
}
