package transaction

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/fintrack-api/pkg/db"
	"github.com/FACorreiaa/fintrack-api/pkg/money"
)

// Repository persists transactions.
type Repository struct {
	db db.Querier
}

// NewRepository creates a transaction repository.
func NewRepository(querier db.Querier) *Repository {
	return &Repository{db: querier}
}

const selectTransaction = `
	SELECT t.id, t.user_id, t.category_id, t.amount, t.type, t.description,
	       t.date, t.currency, t.is_recurring, t.recurring_frequency,
	       t.created_at, t.updated_at,
	       c.id, c.name, c.type, c.icon, c.color
	FROM transactions t
	LEFT JOIN categories c ON c.id = t.category_id
`

func scanTransaction(row pgx.Row) (Transaction, error) {
	var t Transaction
	var amount decimal.Decimal
	var catID *uuid.UUID
	var catName, catType *string
	var catIcon, catColor *string

	err := row.Scan(
		&t.ID, &t.UserID, &t.CategoryID, &amount, &t.Type, &t.Description,
		&t.Date, &t.Currency, &t.IsRecurring, &t.RecurringFrequency,
		&t.CreatedAt, &t.UpdatedAt,
		&catID, &catName, &catType, &catIcon, &catColor,
	)
	if err != nil {
		return Transaction{}, err
	}
	t.Amount = money.NewAmountFromDecimal(amount)

	if catID != nil && catName != nil && catType != nil {
		t.Category = &CategoryRef{
			ID:    *catID,
			Name:  *catName,
			Type:  *catType,
			Icon:  catIcon,
			Color: catColor,
		}
	}
	t.Currency = strings.TrimSpace(t.Currency)
	return t, nil
}

// List returns the user's transactions, newest first, honoring the filter.
func (r *Repository) List(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]Transaction, error) {
	var sb strings.Builder
	sb.WriteString(selectTransaction)
	sb.WriteString(" WHERE t.user_id = $1")

	args := []any{userID}
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.From != nil {
		sb.WriteString(" AND t.date >= " + arg(*filter.From))
	}
	if filter.To != nil {
		sb.WriteString(" AND t.date <= " + arg(*filter.To))
	}
	if filter.CategoryID != nil {
		sb.WriteString(" AND t.category_id = " + arg(*filter.CategoryID))
	}
	if filter.Type != "" {
		sb.WriteString(" AND t.type = " + arg(filter.Type))
	}

	sb.WriteString(" ORDER BY t.date DESC, t.created_at DESC")
	if filter.Limit > 0 {
		sb.WriteString(" LIMIT " + arg(filter.Limit))
	}
	if filter.Offset > 0 {
		sb.WriteString(" OFFSET " + arg(filter.Offset))
	}

	rows, err := r.db.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

// GetByID returns a transaction owned by the user.
func (r *Repository) GetByID(ctx context.Context, userID, transactionID uuid.UUID) (Transaction, error) {
	query := selectTransaction + " WHERE t.id = $1 AND t.user_id = $2"

	t, err := scanTransaction(r.db.QueryRow(ctx, query, transactionID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Transaction{}, ErrNotFound
	}
	if err != nil {
		return Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// Create inserts a transaction and returns it with the category joined.
func (r *Repository) Create(ctx context.Context, t Transaction) (Transaction, error) {
	query := `
		INSERT INTO transactions
			(user_id, category_id, amount, type, description, date, currency,
			 is_recurring, recurring_frequency)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	var id uuid.UUID
	err := r.db.QueryRow(ctx, query,
		t.UserID, t.CategoryID, t.Amount.Decimal(), t.Type, t.Description,
		t.Date, t.Currency, t.IsRecurring, t.RecurringFrequency,
	).Scan(&id)
	if err != nil {
		return Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	return r.GetByID(ctx, t.UserID, id)
}

// Update replaces a transaction's mutable fields.
func (r *Repository) Update(ctx context.Context, t Transaction) (Transaction, error) {
	query := `
		UPDATE transactions
		SET category_id = $3, amount = $4, type = $5, description = $6,
		    date = $7, currency = $8, is_recurring = $9,
		    recurring_frequency = $10, updated_at = now()
		WHERE id = $1 AND user_id = $2
	`

	tag, err := r.db.Exec(ctx, query,
		t.ID, t.UserID, t.CategoryID, t.Amount.Decimal(), t.Type,
		t.Description, t.Date, t.Currency, t.IsRecurring, t.RecurringFrequency,
	)
	if err != nil {
		return Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Transaction{}, ErrNotFound
	}

	return r.GetByID(ctx, t.UserID, t.ID)
}

// Delete removes a transaction owned by the user.
func (r *Repository) Delete(ctx context.Context, userID, transactionID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM transactions WHERE id = $1 AND user_id = $2`, transactionID, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
