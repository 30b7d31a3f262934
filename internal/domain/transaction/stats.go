package transaction

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/fintrack-api/pkg/money"
)

// Stats summarizes a slice of the ledger. Income and Expense are absolute
// sums; Net is income minus expense.
type Stats struct {
	Income  money.Amount `json:"income"`
	Expense money.Amount `json:"expense"`
	Net     money.Amount `json:"net"`
	Count   int64        `json:"count"`
}

// Stats aggregates the user's transactions, honoring the date and category
// filters.
func (r *Repository) Stats(ctx context.Context, userID uuid.UUID, filter ListFilter) (Stats, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT COALESCE(SUM(amount) FILTER (WHERE type = 'INCOME'), 0),
		       COALESCE(SUM(ABS(amount)) FILTER (WHERE type = 'EXPENSE'), 0),
		       COUNT(*)
		FROM transactions
		WHERE user_id = $1`)

	args := []any{userID}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.From != nil {
		sb.WriteString(" AND date >= " + arg(*filter.From))
	}
	if filter.To != nil {
		sb.WriteString(" AND date <= " + arg(*filter.To))
	}
	if filter.CategoryID != nil {
		sb.WriteString(" AND category_id = " + arg(*filter.CategoryID))
	}

	var income, expense decimal.Decimal
	var count int64
	if err := r.db.QueryRow(ctx, sb.String(), args...).Scan(&income, &expense, &count); err != nil {
		return Stats{}, fmt.Errorf("aggregate transactions: %w", err)
	}

	return Stats{
		Income:  money.NewAmountFromDecimal(income),
		Expense: money.NewAmountFromDecimal(expense),
		Net:     money.NewAmountFromDecimal(income.Sub(expense)),
		Count:   count,
	}, nil
}
