// Package budget manages spending budgets: one budget per category and
// period, with spend progress computed from the transaction ledger.
package budget

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/fintrack-api/pkg/money"
)

var (
	// ErrNotFound is returned when the budget does not exist or belongs to
	// another user.
	ErrNotFound = errors.New("budget not found")
	// ErrDuplicate is returned when the user already has a budget for the
	// category and period.
	ErrDuplicate = errors.New("budget already exists for this category and period")
	// ErrCategoryNotFound is returned when the referenced category does not
	// exist or belongs to another user.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrInvalidInput is returned for payloads that fail validation.
	ErrInvalidInput = errors.New("invalid budget input")
)

// CategoryRef is the embedded category returned with a budget.
type CategoryRef struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Type  string    `json:"type"`
	Icon  *string   `json:"icon"`
	Color *string   `json:"color"`
}

// Budget is a spending cap for one category over a recurring period.
type Budget struct {
	ID         uuid.UUID    `json:"id"`
	UserID     uuid.UUID    `json:"userId"`
	CategoryID uuid.UUID    `json:"categoryId"`
	Category   *CategoryRef `json:"category,omitempty"`
	Amount     money.Amount `json:"amount"`
	Period     string       `json:"period"`
	StartDate  time.Time    `json:"startDate"`
	EndDate    time.Time    `json:"endDate"`
	CreatedAt  time.Time    `json:"createdAt"`

	// Spent is the absolute sum of expenses in the category between
	// StartDate and EndDate. Computed on read, never stored.
	Spent money.Amount `json:"spent"`
}

// validPeriods are the accepted budget periods.
var validPeriods = map[string]bool{
	"WEEKLY":  true,
	"MONTHLY": true,
	"YEARLY":  true,
}

// ValidPeriod reports whether p is a known budget period.
func ValidPeriod(p string) bool {
	return validPeriods[p]
}

// monthBounds returns the first and last day of now's calendar month.
// Used as the default budget window when the caller gives none.
func monthBounds(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return start, end
}
