package enrich

import (
	"strings"

	"github.com/cloudflare/ahocorasick"
	"github.com/google/uuid"

	"github.com/FACorreiaa/fintrack-api/internal/domain/import/repository"
)

// Categorizer suggests a category for a transaction description by keyword
// matching against the user's own categories. All keywords are compiled into
// one Aho-Corasick matcher so a description is scanned once regardless of how
// many categories the user has.
type Categorizer struct {
	matcher    *ahocorasick.Matcher
	keywords   []string
	categories []repository.Category
}

// NewCategorizer builds a categorizer for one user's categories. Categories
// whose names have no keyword table entry contribute no patterns and are
// never suggested.
func NewCategorizer(categories []repository.Category) *Categorizer {
	c := &Categorizer{categories: categories}

	seen := make(map[string]bool)
	for _, category := range categories {
		for _, kw := range CategoryKeywords[category.Name] {
			if !seen[kw] {
				seen[kw] = true
				c.keywords = append(c.keywords, kw)
			}
		}
	}

	if len(c.keywords) > 0 {
		patterns := make([][]byte, len(c.keywords))
		for i, kw := range c.keywords {
			patterns[i] = []byte(kw)
		}
		c.matcher = ahocorasick.NewMatcher(patterns)
	}
	return c
}

// Suggest returns the ID of the first category (in the user's category order)
// with a keyword present in the description, or nil when nothing matches.
// Matching is case-insensitive and idempotent: the same description always
// yields the same suggestion.
func (c *Categorizer) Suggest(description string) *uuid.UUID {
	if c.matcher == nil {
		return nil
	}

	// Enrichment calls Suggest from one goroutine per candidate; plain
	// Match mutates matcher state and is not safe for concurrent use.
	matched := c.matcher.MatchThreadSafe([]byte(strings.ToLower(description)))
	if len(matched) == 0 {
		return nil
	}

	hits := make(map[string]bool, len(matched))
	for _, idx := range matched {
		if idx >= 0 && idx < len(c.keywords) {
			hits[c.keywords[idx]] = true
		}
	}

	for _, category := range c.categories {
		for _, kw := range CategoryKeywords[category.Name] {
			if hits[kw] {
				id := category.ID
				return &id
			}
		}
	}
	return nil
}
