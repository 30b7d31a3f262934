package transaction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/FACorreiaa/fintrack-api/internal/domain/category"
	"github.com/FACorreiaa/fintrack-api/pkg/money"
)

// Store is the persistence surface the service depends on.
type Store interface {
	List(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]Transaction, error)
	GetByID(ctx context.Context, userID, transactionID uuid.UUID) (Transaction, error)
	Create(ctx context.Context, t Transaction) (Transaction, error)
	Update(ctx context.Context, t Transaction) (Transaction, error)
	Delete(ctx context.Context, userID, transactionID uuid.UUID) error
	Stats(ctx context.Context, userID uuid.UUID, filter ListFilter) (Stats, error)
}

// CategoryGetter checks category ownership.
type CategoryGetter interface {
	GetByID(ctx context.Context, userID, categoryID uuid.UUID) (category.Category, error)
}

// Input is the payload for creating or updating a transaction.
type Input struct {
	CategoryID         *uuid.UUID   `json:"categoryId"`
	Amount             money.Amount `json:"amount"`
	Type               string       `json:"type"`
	Description        string       `json:"description"`
	Date               string       `json:"date"`
	Currency           string       `json:"currency"`
	IsRecurring        bool         `json:"isRecurring"`
	RecurringFrequency *string      `json:"recurringFrequency"`
}

// Service implements transaction business rules.
type Service struct {
	repo       Store
	categories CategoryGetter
	logger     *slog.Logger
}

// NewService creates a transaction service.
func NewService(repo Store, categories CategoryGetter, logger *slog.Logger) *Service {
	return &Service{repo: repo, categories: categories, logger: logger}
}

// List returns the user's transactions, newest first.
func (s *Service) List(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]Transaction, error) {
	return s.repo.List(ctx, userID, filter)
}

// Get returns one transaction owned by the user.
func (s *Service) Get(ctx context.Context, userID, transactionID uuid.UUID) (Transaction, error) {
	return s.repo.GetByID(ctx, userID, transactionID)
}

// Create validates and inserts a transaction.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, input Input) (Transaction, error) {
	t, err := s.build(ctx, userID, input)
	if err != nil {
		return Transaction{}, err
	}
	return s.repo.Create(ctx, t)
}

// Update validates and replaces a transaction's fields.
func (s *Service) Update(ctx context.Context, userID, transactionID uuid.UUID, input Input) (Transaction, error) {
	if _, err := s.repo.GetByID(ctx, userID, transactionID); err != nil {
		return Transaction{}, err
	}

	t, err := s.build(ctx, userID, input)
	if err != nil {
		return Transaction{}, err
	}
	t.ID = transactionID
	return s.repo.Update(ctx, t)
}

// Delete removes a transaction owned by the user.
func (s *Service) Delete(ctx context.Context, userID, transactionID uuid.UUID) error {
	return s.repo.Delete(ctx, userID, transactionID)
}

// Stats returns income/expense totals for the filtered slice of the ledger.
func (s *Service) Stats(ctx context.Context, userID uuid.UUID, filter ListFilter) (Stats, error) {
	return s.repo.Stats(ctx, userID, filter)
}

func (s *Service) build(ctx context.Context, userID uuid.UUID, input Input) (Transaction, error) {
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return Transaction{}, fmt.Errorf("%w: description is required", ErrInvalidInput)
	}
	if !ValidType(input.Type) {
		return Transaction{}, fmt.Errorf("%w: unknown type %q", ErrInvalidInput, input.Type)
	}

	date, err := parseDate(input.Date)
	if err != nil {
		return Transaction{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	currency, err := money.NormalizeCurrency(input.Currency)
	if err != nil {
		return Transaction{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if input.RecurringFrequency != nil && !validFrequencies[*input.RecurringFrequency] {
		return Transaction{}, fmt.Errorf("%w: unknown recurring frequency %q", ErrInvalidInput, *input.RecurringFrequency)
	}
	if input.IsRecurring && input.RecurringFrequency == nil {
		return Transaction{}, fmt.Errorf("%w: recurring transactions need a frequency", ErrInvalidInput)
	}

	// Sign must agree with the declared type.
	amount := input.Amount
	if input.Type == "INCOME" && amount.IsNegative() {
		amount = amount.Neg()
	}
	if input.Type == "EXPENSE" && amount.IsPositive() {
		amount = amount.Neg()
	}

	if input.CategoryID != nil {
		if _, err := s.categories.GetByID(ctx, userID, *input.CategoryID); err != nil {
			if errors.Is(err, category.ErrNotFound) {
				return Transaction{}, ErrCategoryNotFound
			}
			return Transaction{}, err
		}
	}

	return Transaction{
		UserID:             userID,
		CategoryID:         input.CategoryID,
		Amount:             amount,
		Type:               input.Type,
		Description:        description,
		Date:               date,
		Currency:           currency,
		IsRecurring:        input.IsRecurring,
		RecurringFrequency: input.RecurringFrequency,
	}, nil
}
