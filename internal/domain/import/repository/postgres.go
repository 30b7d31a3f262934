package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/FACorreiaa/fintrack-api/pkg/db"
	"github.com/FACorreiaa/fintrack-api/pkg/money"
)

// PostgresRepository is the pgx-backed ImportRepository.
type PostgresRepository struct {
	db db.Querier
}

// NewPostgresRepository creates an import repository over a pgx pool or a
// compatible mock.
func NewPostgresRepository(querier db.Querier) *PostgresRepository {
	return &PostgresRepository{db: querier}
}

// FindCategoriesByOwner returns the user's categories ordered by creation
// time, so keyword matching walks them in a deterministic order.
func (r *PostgresRepository) FindCategoriesByOwner(ctx context.Context, userID uuid.UUID) ([]Category, error) {
	query := `
		SELECT id, name, type
		FROM categories
		WHERE user_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Type); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// HasDuplicate probes for an existing transaction on the same date with the
// same amount whose description starts with the given prefix. The prefix
// comparison is case-sensitive.
func (r *PostgresRepository) HasDuplicate(ctx context.Context, userID uuid.UUID, date time.Time, amount money.Amount, descriptionPrefix string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM transactions
			WHERE user_id = $1
			  AND date = $2
			  AND amount = $3
			  AND description LIKE $4
		)
	`

	var exists bool
	err := r.db.QueryRow(ctx, query, userID, date, amount.Decimal(), escapeLike(descriptionPrefix)+"%").Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("duplicate probe: %w", err)
	}
	return exists, nil
}

// BulkInsertTransactions inserts all rows in one COPY, which is atomic: a
// failure on any row rolls back the whole batch.
func (r *PostgresRepository) BulkInsertTransactions(ctx context.Context, userID uuid.UUID, txRows []TransactionRow) (int64, error) {
	if len(txRows) == 0 {
		return 0, nil
	}

	copyRows := make([][]any, len(txRows))
	for i, row := range txRows {
		currency := row.Currency
		if currency == "" {
			currency = money.DefaultCurrency
		}
		copyRows[i] = []any{
			uuid.New(),
			userID,
			row.Date,
			row.Description,
			row.Amount.Decimal(),
			row.Type,
			row.CategoryID,
			currency,
		}
	}

	count, err := r.db.CopyFrom(ctx,
		pgx.Identifier{"transactions"},
		[]string{"id", "user_id", "date", "description", "amount", "type", "category_id", "currency"},
		pgx.CopyFromRows(copyRows),
	)
	if err != nil {
		return 0, fmt.Errorf("bulk insert transactions: %w", err)
	}
	return count, nil
}

// escapeLike neutralizes LIKE metacharacters so the prefix is matched
// literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
