package transaction

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// searchDocument is the shape indexed for description search.
type searchDocument struct {
	Description string `json:"description"`
}

// Search runs a full-text query over the user's transaction descriptions.
// Matching is typo tolerant (edit distance 1). When the index yields
// nothing, a subsequence-based fuzzy ranking pass catches looser matches
// like "strbcks" against "STARBUCKS COFFEE #4821".
func (s *Service) Search(ctx context.Context, userID uuid.UUID, query string, limit int) ([]Transaction, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query is required", ErrInvalidInput)
	}
	if limit <= 0 {
		limit = 20
	}

	transactions, err := s.repo.List(ctx, userID, ListFilter{})
	if err != nil {
		return nil, err
	}
	if len(transactions) == 0 {
		return []Transaction{}, nil
	}

	hits, err := searchIndex(transactions, query, limit)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		hits = searchFuzzy(transactions, query, limit)
	}
	return hits, nil
}

// searchIndex builds an in-memory index over the descriptions and runs a
// match query against it.
func searchIndex(transactions []Transaction, query string, limit int) ([]Transaction, error) {
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = simple.Name

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("description", textFieldMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = simple.Name

	index, err := bleve.NewMemOnly(indexMapping)
	if err != nil {
		return nil, fmt.Errorf("create search index: %w", err)
	}
	defer index.Close()

	byID := make(map[string]Transaction, len(transactions))
	batch := index.NewBatch()
	for _, t := range transactions {
		id := t.ID.String()
		byID[id] = t
		if err := batch.Index(id, searchDocument{Description: t.Description}); err != nil {
			return nil, fmt.Errorf("index transaction %s: %w", id, err)
		}
	}
	if err := index.Batch(batch); err != nil {
		return nil, fmt.Errorf("index transactions: %w", err)
	}

	matchQuery := bleve.NewMatchQuery(query)
	matchQuery.SetFuzziness(1)

	request := bleve.NewSearchRequest(matchQuery)
	request.Size = limit

	result, err := index.Search(request)
	if err != nil {
		return nil, fmt.Errorf("search transactions: %w", err)
	}

	hits := make([]Transaction, 0, len(result.Hits))
	for _, hit := range result.Hits {
		if t, ok := byID[hit.ID]; ok {
			hits = append(hits, t)
		}
	}
	return hits, nil
}

// searchFuzzy ranks descriptions by subsequence similarity. Used as a
// fallback for queries too fragmentary for the index to match.
func searchFuzzy(transactions []Transaction, query string, limit int) []Transaction {
	descriptions := make([]string, len(transactions))
	for i, t := range transactions {
		descriptions[i] = t.Description
	}

	ranks := fuzzy.RankFindNormalizedFold(query, descriptions)
	sort.Sort(ranks)

	hits := make([]Transaction, 0, len(ranks))
	seen := make(map[int]bool, len(ranks))
	for _, rank := range ranks {
		if seen[rank.OriginalIndex] {
			continue
		}
		seen[rank.OriginalIndex] = true
		hits = append(hits, transactions[rank.OriginalIndex])
		if len(hits) == limit {
			break
		}
	}
	return hits
}
