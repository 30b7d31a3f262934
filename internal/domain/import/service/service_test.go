package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/fintrack-api/internal/domain/import/engine"
	"github.com/FACorreiaa/fintrack-api/internal/domain/import/enrich"
	"github.com/FACorreiaa/fintrack-api/internal/domain/import/extractor"
	"github.com/FACorreiaa/fintrack-api/internal/domain/import/repository"
	"github.com/FACorreiaa/fintrack-api/pkg/money"
	"github.com/FACorreiaa/fintrack-api/pkg/session"
)

type fakeExtractor struct {
	text string
	err  error
	mime string
}

func (f *fakeExtractor) Extract(_ context.Context, _ []byte, mimeType string) (string, error) {
	f.mime = mimeType
	return f.text, f.err
}

type fakeEngine struct {
	candidates []engine.Candidate
	err        error
	text       string
}

func (f *fakeEngine) Extract(_ context.Context, statementText string) ([]engine.Candidate, error) {
	f.text = statementText
	return f.candidates, f.err
}

type fakeEnricher struct {
	summary enrich.Summary
	err     error
}

func (f *fakeEnricher) Enrich(_ context.Context, _ uuid.UUID, candidates []engine.Candidate) ([]engine.Candidate, enrich.Summary, error) {
	if f.err != nil {
		return nil, enrich.Summary{}, f.err
	}
	return candidates, f.summary, nil
}

type fakeRepo struct {
	inserted []repository.TransactionRow
	count    int64
	err      error
}

func (f *fakeRepo) FindCategoriesByOwner(_ context.Context, _ uuid.UUID) ([]repository.Category, error) {
	return nil, nil
}

func (f *fakeRepo) HasDuplicate(_ context.Context, _ uuid.UUID, _ time.Time, _ money.Amount, _ string) (bool, error) {
	return false, nil
}

func (f *fakeRepo) BulkInsertTransactions(_ context.Context, _ uuid.UUID, rows []repository.TransactionRow) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.inserted = rows
	if f.count > 0 {
		return f.count, nil
	}
	return int64(len(rows)), nil
}

func mustCandidate(t *testing.T, date, description string, amount float64, txType engine.TransactionType) engine.Candidate {
	t.Helper()
	c, err := engine.NewCandidate(date, description, money.NewAmount(amount), txType)
	require.NoError(t, err)
	return c
}

func newTestService(ext Extractor, eng Engine, enr Enricher, repo repository.ImportRepository) (*ImportService, *session.Store[PreviewResult]) {
	previews := session.NewStore[PreviewResult](time.Minute, 10)
	metrics := NewMetrics(prometheus.NewRegistry())
	svc := NewImportService(ext, eng, enr, repo, previews, metrics, slog.New(slog.DiscardHandler))
	return svc, previews
}

func TestPreview_FullPipeline(t *testing.T) {
	candidates := []engine.Candidate{
		mustCandidate(t, "2024-01-15", "WALMART GROCERY", -85.30, engine.TypeExpense),
		mustCandidate(t, "2024-01-16", "PAYCHECK", 2500, engine.TypeIncome),
	}
	ext := &fakeExtractor{text: "statement body"}
	eng := &fakeEngine{candidates: candidates}
	enr := &fakeEnricher{summary: enrich.Summary{Total: 2, Categorized: 1, Uncategorized: 1}}
	svc, previews := newTestService(ext, eng, enr, &fakeRepo{})

	userID := uuid.New()
	result, err := svc.Preview(context.Background(), userID, []byte("raw"), extractor.MimeCSV)
	require.NoError(t, err)

	assert.Equal(t, extractor.MimeCSV, ext.mime)
	assert.Equal(t, "statement body", eng.text, "engine must receive the extracted text")
	assert.Len(t, result.Transactions, 2)
	assert.Equal(t, 2, result.Summary.Total)

	stored, ok := previews.Get(userID.String())
	require.True(t, ok, "preview should be stashed for re-fetch")
	assert.Equal(t, *result, stored)

	latest, ok := svc.LatestPreview(userID)
	require.True(t, ok)
	assert.Equal(t, result, latest)
}

func TestPreview_ExtractionErrorPropagates(t *testing.T) {
	ext := &fakeExtractor{err: extractor.ErrImageBasedPDF}
	svc, _ := newTestService(ext, &fakeEngine{}, &fakeEnricher{}, &fakeRepo{})

	_, err := svc.Preview(context.Background(), uuid.New(), []byte("raw"), extractor.MimePDF)
	require.Error(t, err)
	assert.ErrorIs(t, err, extractor.ErrImageBasedPDF)
}

func TestPreview_AIErrorPropagates(t *testing.T) {
	eng := &fakeEngine{err: engine.ErrAIExtraction}
	svc, _ := newTestService(&fakeExtractor{text: "t"}, eng, &fakeEnricher{}, &fakeRepo{})

	_, err := svc.Preview(context.Background(), uuid.New(), []byte("raw"), extractor.MimeCSV)
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrAIExtraction)
}

func TestPreview_EnrichErrorPropagates(t *testing.T) {
	enr := &fakeEnricher{err: errors.New("db down")}
	svc, _ := newTestService(&fakeExtractor{text: "t"}, &fakeEngine{}, enr, &fakeRepo{})

	_, err := svc.Preview(context.Background(), uuid.New(), []byte("raw"), extractor.MimeCSV)
	require.Error(t, err)
}

func TestConfirm_SavesRows(t *testing.T) {
	repo := &fakeRepo{}
	svc, previews := newTestService(&fakeExtractor{}, &fakeEngine{}, &fakeEnricher{}, repo)

	userID := uuid.New()
	previews.Put(userID.String(), PreviewResult{})
	categoryID := uuid.New()

	result, err := svc.Confirm(context.Background(), userID, []ConfirmTransaction{
		{Date: "2024-01-15", Description: "WALMART GROCERY", Amount: money.NewAmount(-85.30), Type: "EXPENSE", CategoryID: &categoryID},
		{Date: "2024-01-16", Description: "PAYCHECK", Amount: money.NewAmount(2500), Type: "INCOME", Currency: "eur"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Count)

	require.Len(t, repo.inserted, 2)
	assert.Equal(t, "USD", repo.inserted[0].Currency, "missing currency defaults to USD")
	assert.Equal(t, &categoryID, repo.inserted[0].CategoryID)
	assert.Equal(t, "EUR", repo.inserted[1].Currency, "currency codes are uppercased")
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), repo.inserted[0].Date)

	_, ok := previews.Get(userID.String())
	assert.False(t, ok, "stored preview is dropped after a successful commit")
}

func TestConfirm_NormalizesSign(t *testing.T) {
	repo := &fakeRepo{}
	svc, _ := newTestService(&fakeExtractor{}, &fakeEngine{}, &fakeEnricher{}, repo)

	_, err := svc.Confirm(context.Background(), uuid.New(), []ConfirmTransaction{
		{Date: "2024-01-20", Description: "Amazon Refund", Amount: money.NewAmount(-50), Type: "INCOME"},
	})
	require.NoError(t, err)
	require.Len(t, repo.inserted, 1)
	assert.True(t, repo.inserted[0].Amount.Equal(money.NewAmount(50)))
}

func TestConfirm_EmptyBatch(t *testing.T) {
	repo := &fakeRepo{}
	svc, _ := newTestService(&fakeExtractor{}, &fakeEngine{}, &fakeEnricher{}, repo)

	result, err := svc.Confirm(context.Background(), uuid.New(), nil)
	require.NoError(t, err)
	assert.Zero(t, result.Count)
	assert.Empty(t, repo.inserted)
}

func TestConfirm_RejectsInvalidRowBeforeWriting(t *testing.T) {
	repo := &fakeRepo{}
	svc, _ := newTestService(&fakeExtractor{}, &fakeEngine{}, &fakeEnricher{}, repo)

	for name, tx := range map[string]ConfirmTransaction{
		"bad date":     {Date: "01/15/2024", Description: "X", Amount: money.NewAmount(-1), Type: "EXPENSE"},
		"bad type":     {Date: "2024-01-15", Description: "X", Amount: money.NewAmount(-1), Type: "TRANSFER"},
		"empty desc":   {Date: "2024-01-15", Description: "  ", Amount: money.NewAmount(-1), Type: "EXPENSE"},
		"bad currency": {Date: "2024-01-15", Description: "X", Amount: money.NewAmount(-1), Type: "EXPENSE", Currency: "DOLLARS"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Confirm(context.Background(), uuid.New(), []ConfirmTransaction{tx})
			require.Error(t, err)
			assert.Empty(t, repo.inserted, "nothing should be written when validation fails")
		})
	}
}

func TestConfirm_CommitErrorWrapped(t *testing.T) {
	repo := &fakeRepo{err: errors.New("deadlock detected")}
	svc, previews := newTestService(&fakeExtractor{}, &fakeEngine{}, &fakeEnricher{}, repo)

	userID := uuid.New()
	previews.Put(userID.String(), PreviewResult{})

	_, err := svc.Confirm(context.Background(), userID, []ConfirmTransaction{
		{Date: "2024-01-15", Description: "X", Amount: money.NewAmount(-1), Type: "EXPENSE"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCommit)

	_, ok := previews.Get(userID.String())
	assert.True(t, ok, "preview survives a failed commit")
}
