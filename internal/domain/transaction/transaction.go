// Package transaction manages the transaction ledger: CRUD, filtered
// listing, file export, and description search.
package transaction

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/fintrack-api/pkg/money"
)

var (
	// ErrNotFound is returned when the transaction does not exist or belongs
	// to another user.
	ErrNotFound = errors.New("transaction not found")
	// ErrCategoryNotFound is returned when the referenced category does not
	// exist or belongs to another user.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrInvalidInput is returned for payloads that fail validation.
	ErrInvalidInput = errors.New("invalid transaction input")
)

// CategoryRef is the embedded category slice returned with a transaction.
type CategoryRef struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Type  string    `json:"type"`
	Icon  *string   `json:"icon"`
	Color *string   `json:"color"`
}

// Transaction is one ledger entry. Amount is signed: positive for income,
// negative for expenses.
type Transaction struct {
	ID                 uuid.UUID    `json:"id"`
	UserID             uuid.UUID    `json:"userId"`
	CategoryID         *uuid.UUID   `json:"categoryId"`
	Category           *CategoryRef `json:"category,omitempty"`
	Amount             money.Amount `json:"amount"`
	Type               string       `json:"type"`
	Description        string       `json:"description"`
	Date               time.Time    `json:"date"`
	Currency           string       `json:"currency"`
	IsRecurring        bool         `json:"isRecurring"`
	RecurringFrequency *string      `json:"recurringFrequency"`
	CreatedAt          time.Time    `json:"createdAt"`
	UpdatedAt          time.Time    `json:"updatedAt"`
}

// ListFilter narrows a transaction listing. Zero values mean "no filter".
type ListFilter struct {
	From       *time.Time
	To         *time.Time
	CategoryID *uuid.UUID
	Type       string
	Limit      int
	Offset     int
}

// validFrequencies are the accepted recurring frequencies.
var validFrequencies = map[string]bool{
	"DAILY":   true,
	"WEEKLY":  true,
	"MONTHLY": true,
	"YEARLY":  true,
}

// ValidType reports whether t is a known transaction type.
func ValidType(t string) bool {
	return t == "INCOME" || t == "EXPENSE"
}

// parseDate parses a calendar date in YYYY-MM-DD form.
func parseDate(s string) (time.Time, error) {
	date, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return date, nil
}
