// Package service orchestrates the statement import pipeline: document text
// extraction, LLM transaction extraction, enrichment, and the final commit.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/fintrack-api/internal/domain/import/engine"
	"github.com/FACorreiaa/fintrack-api/internal/domain/import/enrich"
	"github.com/FACorreiaa/fintrack-api/internal/domain/import/repository"
	"github.com/FACorreiaa/fintrack-api/pkg/money"
)

// ErrCommit is returned when confirmed transactions could not be saved.
var ErrCommit = errors.New("failed to save transactions")

// Extractor turns an uploaded file into statement text.
type Extractor interface {
	Extract(ctx context.Context, data []byte, mimeType string) (string, error)
}

// Engine turns statement text into transaction candidates.
type Engine interface {
	Extract(ctx context.Context, statementText string) ([]engine.Candidate, error)
}

// Enricher annotates candidates with categories and duplicate flags.
type Enricher interface {
	Enrich(ctx context.Context, userID uuid.UUID, candidates []engine.Candidate) ([]engine.Candidate, enrich.Summary, error)
}

// PreviewStore keeps the latest preview per user until it is confirmed or
// expires.
type PreviewStore interface {
	Put(key string, value PreviewResult)
	Get(key string) (PreviewResult, bool)
	Delete(key string)
}

// PreviewResult is what the user reviews before committing.
type PreviewResult struct {
	Transactions []engine.Candidate `json:"transactions"`
	Summary      enrich.Summary     `json:"summary"`
}

// ConfirmTransaction is one user-approved (possibly edited) transaction.
type ConfirmTransaction struct {
	Date        string       `json:"date"`
	Description string       `json:"description"`
	Amount      money.Amount `json:"amount"`
	Type        string       `json:"type"`
	CategoryID  *uuid.UUID   `json:"categoryId"`
	Currency    string       `json:"currency"`
}

// ConfirmResult reports how many transactions were saved.
type ConfirmResult struct {
	Count int64 `json:"count"`
}

// ImportService drives the preview/confirm import flow.
type ImportService struct {
	extractor Extractor
	engine    Engine
	enricher  Enricher
	repo      repository.ImportRepository
	previews  PreviewStore
	metrics   *Metrics
	tracer    trace.Tracer
	logger    *slog.Logger
}

// NewImportService wires the pipeline stages together.
func NewImportService(
	extractor Extractor,
	eng Engine,
	enricher Enricher,
	repo repository.ImportRepository,
	previews PreviewStore,
	metrics *Metrics,
	logger *slog.Logger,
) *ImportService {
	return &ImportService{
		extractor: extractor,
		engine:    eng,
		enricher:  enricher,
		repo:      repo,
		previews:  previews,
		metrics:   metrics,
		tracer:    otel.Tracer("import"),
		logger:    logger,
	}
}

// Preview runs the full extraction pipeline over an uploaded statement and
// returns candidates for the user to review. The result is also stashed in
// the preview store so a page reload can re-fetch it.
func (s *ImportService) Preview(ctx context.Context, userID uuid.UUID, data []byte, mimeType string) (*PreviewResult, error) {
	ctx, span := s.tracer.Start(ctx, "import.Preview")
	defer span.End()

	start := time.Now()

	s.logger.Info("starting statement import",
		slog.String("user_id", userID.String()),
		slog.String("mime_type", mimeType),
		slog.Int("size_bytes", len(data)),
	)

	text, err := s.extractText(ctx, data, mimeType)
	if err != nil {
		s.metrics.observePreview("extract_failed", time.Since(start))
		return nil, err
	}

	candidates, err := s.extractCandidates(ctx, text)
	if err != nil {
		s.metrics.observePreview("ai_failed", time.Since(start))
		return nil, err
	}

	enriched, summary, err := s.enrichCandidates(ctx, userID, candidates)
	if err != nil {
		s.metrics.observePreview("enrich_failed", time.Since(start))
		return nil, err
	}

	result := &PreviewResult{Transactions: enriched, Summary: summary}
	s.previews.Put(userID.String(), *result)

	s.metrics.observePreview("ok", time.Since(start))
	s.metrics.addCandidates(summary)

	s.logger.Info("statement preview ready",
		slog.String("user_id", userID.String()),
		slog.Int("total", summary.Total),
		slog.Int("categorized", summary.Categorized),
		slog.Int("duplicates", summary.Duplicates),
		slog.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

// LatestPreview returns the stored preview for a user, if one has not
// expired.
func (s *ImportService) LatestPreview(userID uuid.UUID) (*PreviewResult, bool) {
	result, ok := s.previews.Get(userID.String())
	if !ok {
		return nil, false
	}
	return &result, true
}

// Confirm validates and saves the user-approved transactions. All rows are
// saved atomically; a validation failure on any row rejects the batch before
// anything is written. An empty batch is a no-op.
func (s *ImportService) Confirm(ctx context.Context, userID uuid.UUID, transactions []ConfirmTransaction) (*ConfirmResult, error) {
	ctx, span := s.tracer.Start(ctx, "import.Confirm")
	defer span.End()

	if len(transactions) == 0 {
		return &ConfirmResult{Count: 0}, nil
	}

	rows := make([]repository.TransactionRow, 0, len(transactions))
	for i, tx := range transactions {
		row, err := s.toRow(tx)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		rows = append(rows, row)
	}

	count, err := s.repo.BulkInsertTransactions(ctx, userID, rows)
	if err != nil {
		s.logger.Error("commit failed",
			slog.String("user_id", userID.String()),
			slog.Int("rows", len(rows)),
			slog.Any("error", err),
		)
		s.metrics.confirms.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("%w: %v", ErrCommit, err)
	}

	s.previews.Delete(userID.String())
	s.metrics.confirms.WithLabelValues("ok").Inc()
	s.metrics.committed.Add(float64(count))

	s.logger.Info("import committed",
		slog.String("user_id", userID.String()),
		slog.Int64("count", count),
	)
	return &ConfirmResult{Count: count}, nil
}

func (s *ImportService) toRow(tx ConfirmTransaction) (repository.TransactionRow, error) {
	txType, err := engine.ParseTransactionType(tx.Type)
	if err != nil {
		return repository.TransactionRow{}, err
	}

	// Reuse candidate validation: date format, non-empty description, and
	// sign-type agreement.
	candidate, err := engine.NewCandidate(tx.Date, tx.Description, tx.Amount, txType)
	if err != nil {
		return repository.TransactionRow{}, err
	}

	date, err := time.Parse("2006-01-02", candidate.Date)
	if err != nil {
		return repository.TransactionRow{}, fmt.Errorf("invalid date %q: %w", candidate.Date, err)
	}

	currency, err := money.NormalizeCurrency(tx.Currency)
	if err != nil {
		return repository.TransactionRow{}, err
	}

	return repository.TransactionRow{
		Date:        date,
		Description: candidate.Description,
		Amount:      candidate.Amount,
		Type:        string(candidate.Type),
		CategoryID:  tx.CategoryID,
		Currency:    currency,
	}, nil
}

func (s *ImportService) extractText(ctx context.Context, data []byte, mimeType string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "import.extract_text")
	defer span.End()
	return s.extractor.Extract(ctx, data, mimeType)
}

func (s *ImportService) extractCandidates(ctx context.Context, text string) ([]engine.Candidate, error) {
	ctx, span := s.tracer.Start(ctx, "import.extract_transactions")
	defer span.End()
	return s.engine.Extract(ctx, text)
}

func (s *ImportService) enrichCandidates(ctx context.Context, userID uuid.UUID, candidates []engine.Candidate) ([]engine.Candidate, enrich.Summary, error) {
	ctx, span := s.tracer.Start(ctx, "import.enrich")
	defer span.End()
	return s.enricher.Enrich(ctx, userID, candidates)
}
