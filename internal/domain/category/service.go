package category

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// Store is the persistence surface the service depends on.
type Store interface {
	List(ctx context.Context, userID uuid.UUID) ([]Category, error)
	GetByID(ctx context.Context, userID, categoryID uuid.UUID) (Category, error)
	ExistsByName(ctx context.Context, userID uuid.UUID, name, categoryType string) (bool, error)
	Create(ctx context.Context, c Category) (Category, error)
	Update(ctx context.Context, c Category) (Category, error)
	Delete(ctx context.Context, userID, categoryID uuid.UUID) error
	SeedDefaults(ctx context.Context, userID uuid.UUID) error
	HasAny(ctx context.Context, userID uuid.UUID) (bool, error)
}

// CreateInput is the payload for creating a category.
type CreateInput struct {
	Name  string  `json:"name"`
	Type  string  `json:"type"`
	Icon  *string `json:"icon"`
	Color *string `json:"color"`
}

// UpdateInput is the payload for updating a category. Nil fields keep their
// current value.
type UpdateInput struct {
	Name  *string `json:"name"`
	Icon  *string `json:"icon"`
	Color *string `json:"color"`
}

// Service implements category business rules.
type Service struct {
	repo   Store
	logger *slog.Logger
}

// NewService creates a category service.
func NewService(repo Store, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// List returns the user's categories, seeding the default set on first
// access.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]Category, error) {
	hasAny, err := s.repo.HasAny(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !hasAny {
		if err := s.repo.SeedDefaults(ctx, userID); err != nil {
			return nil, err
		}
		s.logger.Info("seeded default categories", slog.String("user_id", userID.String()))
	}
	return s.repo.List(ctx, userID)
}

// Create adds a custom category. Names are unique per user and type.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, input CreateInput) (Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Category{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if !ValidType(input.Type) {
		return Category{}, fmt.Errorf("%w: unknown type %q", ErrInvalidInput, input.Type)
	}

	exists, err := s.repo.ExistsByName(ctx, userID, name, input.Type)
	if err != nil {
		return Category{}, err
	}
	if exists {
		return Category{}, ErrDuplicateName
	}

	return s.repo.Create(ctx, Category{
		UserID: userID,
		Name:   name,
		Type:   input.Type,
		Icon:   input.Icon,
		Color:  input.Color,
	})
}

// Update changes a custom category. Default categories are immutable.
func (s *Service) Update(ctx context.Context, userID, categoryID uuid.UUID, input UpdateInput) (Category, error) {
	current, err := s.repo.GetByID(ctx, userID, categoryID)
	if err != nil {
		return Category{}, err
	}
	if current.IsDefault {
		return Category{}, ErrDefaultImmutable
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return Category{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
		}
		if name != current.Name {
			exists, err := s.repo.ExistsByName(ctx, userID, name, current.Type)
			if err != nil {
				return Category{}, err
			}
			if exists {
				return Category{}, ErrDuplicateName
			}
		}
		current.Name = name
	}
	if input.Icon != nil {
		current.Icon = input.Icon
	}
	if input.Color != nil {
		current.Color = input.Color
	}

	return s.repo.Update(ctx, current)
}

// Delete removes a custom category. Default categories are immutable.
// Transactions referencing the category keep existing; the reference is
// cleared by the schema.
func (s *Service) Delete(ctx context.Context, userID, categoryID uuid.UUID) error {
	current, err := s.repo.GetByID(ctx, userID, categoryID)
	if err != nil {
		return err
	}
	if current.IsDefault {
		return ErrDefaultImmutable
	}
	return s.repo.Delete(ctx, userID, categoryID)
}
