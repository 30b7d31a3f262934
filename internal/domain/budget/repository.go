package budget

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/fintrack-api/pkg/db"
	"github.com/FACorreiaa/fintrack-api/pkg/money"
)

// Repository persists budgets.
type Repository struct {
	db db.Querier
}

// NewRepository creates a budget repository.
func NewRepository(querier db.Querier) *Repository {
	return &Repository{db: querier}
}

const selectBudget = `
	SELECT b.id, b.user_id, b.category_id, b.amount, b.period,
	       b.start_date, b.end_date, b.created_at,
	       c.id, c.name, c.type, c.icon, c.color
	FROM budgets b
	JOIN categories c ON c.id = b.category_id
`

func scanBudget(row pgx.Row) (Budget, error) {
	var b Budget
	var amount decimal.Decimal
	var cat CategoryRef

	err := row.Scan(
		&b.ID, &b.UserID, &b.CategoryID, &amount, &b.Period,
		&b.StartDate, &b.EndDate, &b.CreatedAt,
		&cat.ID, &cat.Name, &cat.Type, &cat.Icon, &cat.Color,
	)
	if err != nil {
		return Budget{}, err
	}
	b.Amount = money.NewAmountFromDecimal(amount)
	b.Category = &cat
	return b, nil
}

// List returns the user's budgets, newest first.
func (r *Repository) List(ctx context.Context, userID uuid.UUID) ([]Budget, error) {
	query := selectBudget + " WHERE b.user_id = $1 ORDER BY b.created_at DESC"

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

// GetByID returns a budget owned by the user.
func (r *Repository) GetByID(ctx context.Context, userID, budgetID uuid.UUID) (Budget, error) {
	query := selectBudget + " WHERE b.id = $1 AND b.user_id = $2"

	b, err := scanBudget(r.db.QueryRow(ctx, query, budgetID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Budget{}, ErrNotFound
	}
	if err != nil {
		return Budget{}, fmt.Errorf("get budget: %w", err)
	}
	return b, nil
}

// ExistsForPeriod reports whether the user already budgets this category
// and period.
func (r *Repository) ExistsForPeriod(ctx context.Context, userID, categoryID uuid.UUID, period string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM budgets WHERE user_id = $1 AND category_id = $2 AND period = $3)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, userID, categoryID, period).Scan(&exists); err != nil {
		return false, fmt.Errorf("check budget exists: %w", err)
	}
	return exists, nil
}

// Create inserts a budget and returns it with the category joined.
func (r *Repository) Create(ctx context.Context, b Budget) (Budget, error) {
	query := `
		INSERT INTO budgets (user_id, category_id, amount, period, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var id uuid.UUID
	err := r.db.QueryRow(ctx, query,
		b.UserID, b.CategoryID, b.Amount.Decimal(), b.Period, b.StartDate, b.EndDate,
	).Scan(&id)
	if err != nil {
		return Budget{}, fmt.Errorf("create budget: %w", err)
	}

	return r.GetByID(ctx, b.UserID, id)
}

// Update replaces a budget's mutable fields.
func (r *Repository) Update(ctx context.Context, b Budget) (Budget, error) {
	query := `
		UPDATE budgets
		SET amount = $3, period = $4, start_date = $5, end_date = $6
		WHERE id = $1 AND user_id = $2
	`

	tag, err := r.db.Exec(ctx, query,
		b.ID, b.UserID, b.Amount.Decimal(), b.Period, b.StartDate, b.EndDate,
	)
	if err != nil {
		return Budget{}, fmt.Errorf("update budget: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Budget{}, ErrNotFound
	}

	return r.GetByID(ctx, b.UserID, b.ID)
}

// Delete removes a budget owned by the user.
func (r *Repository) Delete(ctx context.Context, userID, budgetID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM budgets WHERE id = $1 AND user_id = $2`, budgetID, userID)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SpentInWindow sums the absolute expense amounts for a category between
// two dates, inclusive.
func (r *Repository) SpentInWindow(ctx context.Context, userID, categoryID uuid.UUID, from, to time.Time) (money.Amount, error) {
	query := `
		SELECT COALESCE(SUM(ABS(amount)), 0)
		FROM transactions
		WHERE user_id = $1 AND category_id = $2 AND type = 'EXPENSE'
		  AND date >= $3 AND date <= $4
	`

	var spent decimal.Decimal
	if err := r.db.QueryRow(ctx, query, userID, categoryID, from, to).Scan(&spent); err != nil {
		return money.Amount{}, fmt.Errorf("sum budget spend: %w", err)
	}
	return money.NewAmountFromDecimal(spent), nil
}
