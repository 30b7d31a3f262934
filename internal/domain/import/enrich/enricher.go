package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/fintrack-api/internal/domain/import/engine"
	"github.com/FACorreiaa/fintrack-api/internal/domain/import/repository"
)

// Summary aggregates the enrichment outcome for the preview response.
type Summary struct {
	Total         int `json:"total"`
	Categorized   int `json:"categorized"`
	Uncategorized int `json:"uncategorized"`
	Duplicates    int `json:"duplicates"`
}

// Enricher runs auto-categorization and duplicate detection over extracted
// candidates.
type Enricher struct {
	repo      repository.ImportRepository
	prefixLen int
	logger    *slog.Logger
}

// New creates an Enricher. prefixLen is how many leading characters of the
// description participate in the duplicate probe.
func New(repo repository.ImportRepository, prefixLen int, logger *slog.Logger) *Enricher {
	return &Enricher{repo: repo, prefixLen: prefixLen, logger: logger}
}

// Enrich annotates each candidate with a suggested category, a duplicate
// flag, and a confidence level. Candidates keep their input order. Duplicate
// probes run concurrently, one per candidate; any probe failure fails the
// batch.
func (e *Enricher) Enrich(ctx context.Context, userID uuid.UUID, candidates []engine.Candidate) ([]engine.Candidate, Summary, error) {
	categories, err := e.repo.FindCategoriesByOwner(ctx, userID)
	if err != nil {
		return nil, Summary{}, fmt.Errorf("load categories: %w", err)
	}
	categorizer := NewCategorizer(categories)

	enriched := make([]engine.Candidate, len(candidates))
	probeErrs := make([]error, len(candidates))

	var wg sync.WaitGroup
	for i, candidate := range candidates {
		wg.Add(1)
		go func(i int, candidate engine.Candidate) {
			defer wg.Done()

			candidate.SuggestedCategoryID = categorizer.Suggest(candidate.Description)

			isDup, err := e.probeDuplicate(ctx, userID, candidate)
			if err != nil {
				probeErrs[i] = err
				return
			}
			candidate.IsDuplicate = isDup

			if candidate.SuggestedCategoryID != nil {
				candidate.Confidence = engine.ConfidenceHigh
			} else {
				candidate.Confidence = engine.ConfidenceMedium
			}

			enriched[i] = candidate
		}(i, candidate)
	}
	wg.Wait()

	for _, err := range probeErrs {
		if err != nil {
			return nil, Summary{}, fmt.Errorf("duplicate detection: %w", err)
		}
	}

	summary := Summary{Total: len(enriched)}
	for _, candidate := range enriched {
		if candidate.SuggestedCategoryID != nil {
			summary.Categorized++
		} else {
			summary.Uncategorized++
		}
		if candidate.IsDuplicate {
			summary.Duplicates++
		}
	}

	e.logger.Info("enriched transaction candidates",
		slog.Int("total", summary.Total),
		slog.Int("categorized", summary.Categorized),
		slog.Int("duplicates", summary.Duplicates),
	)
	return enriched, summary, nil
}

func (e *Enricher) probeDuplicate(ctx context.Context, userID uuid.UUID, candidate engine.Candidate) (bool, error) {
	date, err := time.Parse("2006-01-02", candidate.Date)
	if err != nil {
		return false, fmt.Errorf("invalid candidate date %q: %w", candidate.Date, err)
	}
	return e.repo.HasDuplicate(ctx, userID, date, candidate.Amount, prefix(candidate.Description, e.prefixLen))
}

// prefix returns the first n characters of s, not splitting multi-byte runes.
func prefix(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
