package transaction

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/fintrack-api/pkg/money"
)

func seedSearchable(store *fakeStore, userID uuid.UUID, descriptions ...string) {
	for i, description := range descriptions {
		id := uuid.New()
		store.transactions[id] = Transaction{
			ID:          id,
			UserID:      userID,
			Amount:      money.NewAmount(-10),
			Type:        "EXPENSE",
			Description: description,
			Date:        time.Date(2026, 3, 1+i, 0, 0, 0, 0, time.UTC),
			Currency:    "USD",
		}
	}
}

func TestService_Search(t *testing.T) {
	svc, store, _ := newTestService(t)
	userID := uuid.New()
	seedSearchable(store, userID,
		"STARBUCKS COFFEE #4821",
		"WALMART GROCERY STORE",
		"SHELL GAS STATION 42",
	)

	hits, err := svc.Search(context.Background(), userID, "starbucks", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "STARBUCKS COFFEE #4821", hits[0].Description)
}

func TestService_Search_Typo(t *testing.T) {
	svc, store, _ := newTestService(t)
	userID := uuid.New()
	seedSearchable(store, userID,
		"STARBUCKS COFFEE #4821",
		"WALMART GROCERY STORE",
	)

	hits, err := svc.Search(context.Background(), userID, "starbacks", 10)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "STARBUCKS COFFEE #4821", hits[0].Description)
}

func TestService_Search_FuzzyFallback(t *testing.T) {
	svc, store, _ := newTestService(t)
	userID := uuid.New()
	seedSearchable(store, userID,
		"STARBUCKS COFFEE #4821",
		"WALMART GROCERY STORE",
	)

	// Too mangled for the index, caught by subsequence ranking.
	hits, err := svc.Search(context.Background(), userID, "strbcks", 10)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "STARBUCKS COFFEE #4821", hits[0].Description)
}

func TestService_Search_OtherUsersExcluded(t *testing.T) {
	svc, store, _ := newTestService(t)
	userID := uuid.New()
	seedSearchable(store, uuid.New(), "STARBUCKS COFFEE #4821")

	hits, err := svc.Search(context.Background(), userID, "starbucks", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestService_Search_NoMatch(t *testing.T) {
	svc, store, _ := newTestService(t)
	userID := uuid.New()
	seedSearchable(store, userID, "WALMART GROCERY STORE")

	hits, err := svc.Search(context.Background(), userID, "zzzzqqqq", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestService_Search_BlankQuery(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Search(context.Background(), uuid.New(), "   ", 10)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_Search_LimitApplied(t *testing.T) {
	svc, store, _ := newTestService(t)
	userID := uuid.New()
	seedSearchable(store, userID,
		"COFFEE SHOP A",
		"COFFEE SHOP B",
		"COFFEE SHOP C",
	)

	hits, err := svc.Search(context.Background(), userID, "coffee", 2)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}
