// Package repository persists import results and serves the lookups the
// enrichment stage needs (owner categories, duplicate probes).
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/fintrack-api/pkg/money"
)

// Category is the slice of a user category the import pipeline cares about.
type Category struct {
	ID   uuid.UUID
	Name string
	Type string
}

// TransactionRow is one confirmed transaction ready for insertion.
type TransactionRow struct {
	Date        time.Time
	Description string
	Amount      money.Amount
	Type        string
	CategoryID  *uuid.UUID
	Currency    string
}

// ImportRepository is the persistence surface of the import pipeline.
type ImportRepository interface {
	// FindCategoriesByOwner returns the user's categories in a stable order.
	FindCategoriesByOwner(ctx context.Context, userID uuid.UUID) ([]Category, error)
	// HasDuplicate reports whether the user already has a transaction with
	// the same date, same amount, and a description starting with prefix.
	HasDuplicate(ctx context.Context, userID uuid.UUID, date time.Time, amount money.Amount, descriptionPrefix string) (bool, error)
	// BulkInsertTransactions inserts all rows atomically and returns the count.
	BulkInsertTransactions(ctx context.Context, userID uuid.UUID, rows []TransactionRow) (int64, error)
}
