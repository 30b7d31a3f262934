package category

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/FACorreiaa/fintrack-api/pkg/db"
)

// Repository persists categories.
type Repository struct {
	db db.Querier
}

// NewRepository creates a category repository.
func NewRepository(querier db.Querier) *Repository {
	return &Repository{db: querier}
}

const categoryColumns = "id, user_id, name, type, icon, color, is_default, created_at"

func scanCategory(row pgx.Row) (Category, error) {
	var c Category
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Type, &c.Icon, &c.Color, &c.IsDefault, &c.CreatedAt)
	return c, err
}

// List returns the user's categories, defaults first, then by name.
func (r *Repository) List(ctx context.Context, userID uuid.UUID) ([]Category, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE user_id = $1
		ORDER BY is_default DESC, name ASC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// GetByID returns a category owned by the user.
func (r *Repository) GetByID(ctx context.Context, userID, categoryID uuid.UUID) (Category, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE id = $1 AND user_id = $2
	`

	c, err := scanCategory(r.db.QueryRow(ctx, query, categoryID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Category{}, ErrNotFound
	}
	if err != nil {
		return Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// ExistsByName reports whether the user already has a category with this name
// and type.
func (r *Repository) ExistsByName(ctx context.Context, userID uuid.UUID, name, categoryType string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM categories
			WHERE user_id = $1 AND name = $2 AND type = $3
		)
	`

	var exists bool
	if err := r.db.QueryRow(ctx, query, userID, name, categoryType).Scan(&exists); err != nil {
		return false, fmt.Errorf("check category name: %w", err)
	}
	return exists, nil
}

// Create inserts a category and returns it with generated fields populated.
func (r *Repository) Create(ctx context.Context, c Category) (Category, error) {
	query := `
		INSERT INTO categories (user_id, name, type, icon, color, is_default)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + categoryColumns

	created, err := scanCategory(r.db.QueryRow(ctx, query, c.UserID, c.Name, c.Type, c.Icon, c.Color, c.IsDefault))
	if err != nil {
		return Category{}, fmt.Errorf("create category: %w", err)
	}
	return created, nil
}

// Update changes a category's name, icon, and color.
func (r *Repository) Update(ctx context.Context, c Category) (Category, error) {
	query := `
		UPDATE categories
		SET name = $3, icon = $4, color = $5
		WHERE id = $1 AND user_id = $2
		RETURNING ` + categoryColumns

	updated, err := scanCategory(r.db.QueryRow(ctx, query, c.ID, c.UserID, c.Name, c.Icon, c.Color))
	if errors.Is(err, pgx.ErrNoRows) {
		return Category{}, ErrNotFound
	}
	if err != nil {
		return Category{}, fmt.Errorf("update category: %w", err)
	}
	return updated, nil
}

// Delete removes a category owned by the user.
func (r *Repository) Delete(ctx context.Context, userID, categoryID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1 AND user_id = $2`, categoryID, userID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SeedDefaults inserts the default category set for a user. Existing rows
// with the same name and type are left untouched.
func (r *Repository) SeedDefaults(ctx context.Context, userID uuid.UUID) error {
	query := `
		INSERT INTO categories (user_id, name, type, is_default)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (user_id, name, type) DO NOTHING
	`

	for _, def := range defaultCategories {
		if _, err := r.db.Exec(ctx, query, userID, def.Name, def.Type); err != nil {
			return fmt.Errorf("seed default category %q: %w", def.Name, err)
		}
	}
	return nil
}

// HasAny reports whether the user has any categories at all.
func (r *Repository) HasAny(ctx context.Context, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM categories WHERE user_id = $1)`, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check categories: %w", err)
	}
	return exists, nil
}
