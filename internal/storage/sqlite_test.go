package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feastfox/internal/models"
)

func newTestSQLite(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "meals.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStorage(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store {
		return newTestSQLite(t)
	})
}

func TestSQLiteStorage_Persists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "meals.db")

	s, err := NewSQLiteStorage(path)
	require.NoError(t, err)
	created, err := s.Create(ctx, models.MealCreate{Meal: "Paella", Cuisine: "Spanish", Reason: "saffron"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStorage(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestSQLiteStorage_ListInCreationOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	for _, m := range SeedFields() {
		_, err := s.Create(ctx, m)
		require.NoError(t, err)
	}

	meals, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, meals, 7)
	for i, m := range meals {
		assert.Equal(t, SeedFields()[i], m.Fields())
	}
}

func TestSQLiteStorage_InMemory(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Create(ctx, models.MealCreate{Meal: "Soup"})
	require.NoError(t, err)

	meals, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, meals, 1)
}
