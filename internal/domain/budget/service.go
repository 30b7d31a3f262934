package budget

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/fintrack-api/internal/domain/category"
	"github.com/FACorreiaa/fintrack-api/pkg/money"
)

// Store is the persistence surface the service depends on.
type Store interface {
	List(ctx context.Context, userID uuid.UUID) ([]Budget, error)
	GetByID(ctx context.Context, userID, budgetID uuid.UUID) (Budget, error)
	ExistsForPeriod(ctx context.Context, userID, categoryID uuid.UUID, period string) (bool, error)
	Create(ctx context.Context, b Budget) (Budget, error)
	Update(ctx context.Context, b Budget) (Budget, error)
	Delete(ctx context.Context, userID, budgetID uuid.UUID) error
	SpentInWindow(ctx context.Context, userID, categoryID uuid.UUID, from, to time.Time) (money.Amount, error)
}

// CategoryGetter checks category ownership.
type CategoryGetter interface {
	GetByID(ctx context.Context, userID, categoryID uuid.UUID) (category.Category, error)
}

// CreateInput is the payload for creating a budget. StartDate and EndDate
// default to the current calendar month when omitted.
type CreateInput struct {
	CategoryID uuid.UUID    `json:"categoryId"`
	Amount     money.Amount `json:"amount"`
	Period     string       `json:"period"`
	StartDate  *string      `json:"startDate"`
	EndDate    *string      `json:"endDate"`
}

// UpdateInput is the payload for updating a budget. Nil fields keep their
// current value.
type UpdateInput struct {
	Amount    *money.Amount `json:"amount"`
	Period    *string       `json:"period"`
	StartDate *string       `json:"startDate"`
	EndDate   *string       `json:"endDate"`
}

// Service implements budget business rules.
type Service struct {
	repo       Store
	categories CategoryGetter
	logger     *slog.Logger
	now        func() time.Time
}

// NewService creates a budget service.
func NewService(repo Store, categories CategoryGetter, logger *slog.Logger) *Service {
	return &Service{repo: repo, categories: categories, logger: logger, now: time.Now}
}

// List returns the user's budgets with spend progress attached.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]Budget, error) {
	budgets, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range budgets {
		if err := s.attachSpent(ctx, &budgets[i]); err != nil {
			return nil, err
		}
	}
	return budgets, nil
}

// Get returns one budget with spend progress attached.
func (s *Service) Get(ctx context.Context, userID, budgetID uuid.UUID) (Budget, error) {
	b, err := s.repo.GetByID(ctx, userID, budgetID)
	if err != nil {
		return Budget{}, err
	}
	if err := s.attachSpent(ctx, &b); err != nil {
		return Budget{}, err
	}
	return b, nil
}

// Create validates and inserts a budget. One budget per category and
// period; the window defaults to the current month.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, input CreateInput) (Budget, error) {
	if !input.Amount.IsPositive() {
		return Budget{}, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	if !ValidPeriod(input.Period) {
		return Budget{}, fmt.Errorf("%w: unknown period %q", ErrInvalidInput, input.Period)
	}

	if _, err := s.categories.GetByID(ctx, userID, input.CategoryID); err != nil {
		if errors.Is(err, category.ErrNotFound) {
			return Budget{}, ErrCategoryNotFound
		}
		return Budget{}, err
	}

	exists, err := s.repo.ExistsForPeriod(ctx, userID, input.CategoryID, input.Period)
	if err != nil {
		return Budget{}, err
	}
	if exists {
		return Budget{}, ErrDuplicate
	}

	start, end := monthBounds(s.now())
	if input.StartDate != nil {
		if start, err = parseDate(*input.StartDate); err != nil {
			return Budget{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}
	if input.EndDate != nil {
		if end, err = parseDate(*input.EndDate); err != nil {
			return Budget{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}
	if end.Before(start) {
		return Budget{}, fmt.Errorf("%w: end date precedes start date", ErrInvalidInput)
	}

	created, err := s.repo.Create(ctx, Budget{
		UserID:     userID,
		CategoryID: input.CategoryID,
		Amount:     input.Amount,
		Period:     input.Period,
		StartDate:  start,
		EndDate:    end,
	})
	if err != nil {
		return Budget{}, err
	}
	if err := s.attachSpent(ctx, &created); err != nil {
		return Budget{}, err
	}

	s.logger.Info("budget created",
		slog.String("budget_id", created.ID.String()),
		slog.String("period", created.Period),
	)
	return created, nil
}

// Update modifies a budget's amount, period, or window.
func (s *Service) Update(ctx context.Context, userID, budgetID uuid.UUID, input UpdateInput) (Budget, error) {
	b, err := s.repo.GetByID(ctx, userID, budgetID)
	if err != nil {
		return Budget{}, err
	}

	if input.Amount != nil {
		if !input.Amount.IsPositive() {
			return Budget{}, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
		}
		b.Amount = *input.Amount
	}
	if input.Period != nil && *input.Period != b.Period {
		if !ValidPeriod(*input.Period) {
			return Budget{}, fmt.Errorf("%w: unknown period %q", ErrInvalidInput, *input.Period)
		}
		exists, err := s.repo.ExistsForPeriod(ctx, userID, b.CategoryID, *input.Period)
		if err != nil {
			return Budget{}, err
		}
		if exists {
			return Budget{}, ErrDuplicate
		}
		b.Period = *input.Period
	}
	if input.StartDate != nil {
		if b.StartDate, err = parseDate(*input.StartDate); err != nil {
			return Budget{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}
	if input.EndDate != nil {
		if b.EndDate, err = parseDate(*input.EndDate); err != nil {
			return Budget{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}
	if b.EndDate.Before(b.StartDate) {
		return Budget{}, fmt.Errorf("%w: end date precedes start date", ErrInvalidInput)
	}

	updated, err := s.repo.Update(ctx, b)
	if err != nil {
		return Budget{}, err
	}
	if err := s.attachSpent(ctx, &updated); err != nil {
		return Budget{}, err
	}
	return updated, nil
}

// Delete removes a budget owned by the user.
func (s *Service) Delete(ctx context.Context, userID, budgetID uuid.UUID) error {
	return s.repo.Delete(ctx, userID, budgetID)
}

func (s *Service) attachSpent(ctx context.Context, b *Budget) error {
	spent, err := s.repo.SpentInWindow(ctx, b.UserID, b.CategoryID, b.StartDate, b.EndDate)
	if err != nil {
		return err
	}
	b.Spent = spent
	return nil
}

func parseDate(raw string) (time.Time, error) {
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", raw)
	}
	return date, nil
}
