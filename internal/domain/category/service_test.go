package category

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	categories map[uuid.UUID]Category
	seeded     bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{categories: make(map[uuid.UUID]Category)}
}

func (f *fakeStore) add(c Category) Category {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	f.categories[c.ID] = c
	return c
}

func (f *fakeStore) List(_ context.Context, userID uuid.UUID) ([]Category, error) {
	var out []Category
	for _, c := range f.categories {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) GetByID(_ context.Context, userID, categoryID uuid.UUID) (Category, error) {
	c, ok := f.categories[categoryID]
	if !ok || c.UserID != userID {
		return Category{}, ErrNotFound
	}
	return c, nil
}

func (f *fakeStore) ExistsByName(_ context.Context, userID uuid.UUID, name, categoryType string) (bool, error) {
	for _, c := range f.categories {
		if c.UserID == userID && c.Name == name && c.Type == categoryType {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) Create(_ context.Context, c Category) (Category, error) {
	return f.add(c), nil
}

func (f *fakeStore) Update(_ context.Context, c Category) (Category, error) {
	if _, ok := f.categories[c.ID]; !ok {
		return Category{}, ErrNotFound
	}
	f.categories[c.ID] = c
	return c, nil
}

func (f *fakeStore) Delete(_ context.Context, userID, categoryID uuid.UUID) error {
	c, ok := f.categories[categoryID]
	if !ok || c.UserID != userID {
		return ErrNotFound
	}
	delete(f.categories, categoryID)
	return nil
}

func (f *fakeStore) SeedDefaults(_ context.Context, userID uuid.UUID) error {
	f.seeded = true
	for _, def := range defaultCategories {
		f.add(Category{UserID: userID, Name: def.Name, Type: def.Type, IsDefault: true})
	}
	return nil
}

func (f *fakeStore) HasAny(_ context.Context, userID uuid.UUID) (bool, error) {
	for _, c := range f.categories {
		if c.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func newTestService(store Store) *Service {
	return NewService(store, slog.New(slog.DiscardHandler))
}

func TestList_SeedsDefaultsOnFirstAccess(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	categories, err := svc.List(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.True(t, store.seeded)
	assert.Len(t, categories, len(defaultCategories))

	var names []string
	for _, c := range categories {
		assert.True(t, c.IsDefault)
		names = append(names, c.Name)
	}
	assert.Contains(t, names, "Groceries")
	assert.Contains(t, names, "Salary")
}

func TestList_DoesNotReseed(t *testing.T) {
	store := newFakeStore()
	userID := uuid.New()
	store.add(Category{UserID: userID, Name: "Custom", Type: "EXPENSE"})
	svc := newTestService(store)

	categories, err := svc.List(context.Background(), userID)
	require.NoError(t, err)
	assert.False(t, store.seeded)
	assert.Len(t, categories, 1)
}

func TestCreate(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	userID := uuid.New()

	t.Run("creates custom category", func(t *testing.T) {
		icon := "piggy-bank"
		created, err := svc.Create(context.Background(), userID, CreateInput{Name: "Savings", Type: "EXPENSE", Icon: &icon})
		require.NoError(t, err)
		assert.Equal(t, "Savings", created.Name)
		assert.False(t, created.IsDefault)
		require.NotNil(t, created.Icon)
		assert.Equal(t, "piggy-bank", *created.Icon)
	})

	t.Run("rejects duplicate name", func(t *testing.T) {
		_, err := svc.Create(context.Background(), userID, CreateInput{Name: "Savings", Type: "EXPENSE"})
		assert.ErrorIs(t, err, ErrDuplicateName)
	})

	t.Run("same name allowed for other type", func(t *testing.T) {
		_, err := svc.Create(context.Background(), userID, CreateInput{Name: "Savings", Type: "INCOME"})
		assert.NoError(t, err)
	})

	t.Run("rejects blank name", func(t *testing.T) {
		_, err := svc.Create(context.Background(), userID, CreateInput{Name: "  ", Type: "EXPENSE"})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		_, err := svc.Create(context.Background(), userID, CreateInput{Name: "X", Type: "TRANSFER"})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestUpdate(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	userID := uuid.New()

	custom := store.add(Category{UserID: userID, Name: "Hobbies", Type: "EXPENSE"})
	def := store.add(Category{UserID: userID, Name: "Groceries", Type: "EXPENSE", IsDefault: true})

	t.Run("renames custom category", func(t *testing.T) {
		name := "Crafts"
		updated, err := svc.Update(context.Background(), userID, custom.ID, UpdateInput{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "Crafts", updated.Name)
	})

	t.Run("default is immutable", func(t *testing.T) {
		name := "Food"
		_, err := svc.Update(context.Background(), userID, def.ID, UpdateInput{Name: &name})
		assert.ErrorIs(t, err, ErrDefaultImmutable)
	})

	t.Run("not found for other user", func(t *testing.T) {
		name := "X"
		_, err := svc.Update(context.Background(), uuid.New(), custom.ID, UpdateInput{Name: &name})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDelete(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	userID := uuid.New()

	custom := store.add(Category{UserID: userID, Name: "Hobbies", Type: "EXPENSE"})
	def := store.add(Category{UserID: userID, Name: "Groceries", Type: "EXPENSE", IsDefault: true})

	require.NoError(t, svc.Delete(context.Background(), userID, custom.ID))
	assert.ErrorIs(t, svc.Delete(context.Background(), userID, custom.ID), ErrNotFound)
	assert.ErrorIs(t, svc.Delete(context.Background(), userID, def.ID), ErrDefaultImmutable)
}
