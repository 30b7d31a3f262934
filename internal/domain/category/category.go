// Package category manages user spending/income categories. Every user gets
// a seeded default set; defaults can be used but not modified or deleted.
package category

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when the category does not exist or belongs to
	// another user.
	ErrNotFound = errors.New("category not found")
	// ErrDuplicateName is returned when the user already has a category with
	// the same name and type.
	ErrDuplicateName = errors.New("category with this name already exists")
	// ErrDefaultImmutable is returned when a default category is modified or
	// deleted.
	ErrDefaultImmutable = errors.New("cannot modify default categories")
	// ErrInvalidInput is returned for payloads that fail validation.
	ErrInvalidInput = errors.New("invalid category input")
)

// Category is a user-owned transaction category.
type Category struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Icon      *string   `json:"icon"`
	Color     *string   `json:"color"`
	IsDefault bool      `json:"isDefault"`
	CreatedAt time.Time `json:"createdAt"`
}

// defaultCategory is one entry of the seeded default set.
type defaultCategory struct {
	Name string
	Type string
}

// defaultCategories is created for every user on first access. The expense
// names line up with the auto-categorization keyword table so imports can
// suggest them out of the box.
var defaultCategories = []defaultCategory{
	{Name: "Groceries", Type: "EXPENSE"},
	{Name: "Dining", Type: "EXPENSE"},
	{Name: "Transport", Type: "EXPENSE"},
	{Name: "Utilities", Type: "EXPENSE"},
	{Name: "Entertainment", Type: "EXPENSE"},
	{Name: "Shopping", Type: "EXPENSE"},
	{Name: "Healthcare", Type: "EXPENSE"},
	{Name: "Education", Type: "EXPENSE"},
	{Name: "Salary", Type: "INCOME"},
	{Name: "Other Income", Type: "INCOME"},
}

// ValidType reports whether t is a known category type.
func ValidType(t string) bool {
	return t == "INCOME" || t == "EXPENSE"
}
