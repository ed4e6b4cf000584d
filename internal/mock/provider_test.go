package mock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feastfox/internal/models"
	"feastfox/internal/storage"
)

func newInstant() *Provider {
	return NewSeeded(WithLatency(0, 0))
}

func seedNames() map[string]bool {
	names := map[string]bool{}
	for _, m := range storage.SeedMeals() {
		names[m.Meal] = true
	}
	return names
}

func TestProvider_FetchDecisionFromSeeds(t *testing.T) {
	ctx := context.Background()
	p := newInstant()
	names := seedNames()

	for i := 0; i < 100; i++ {
		d, err := p.FetchDecision(ctx)
		require.NoError(t, err)
		assert.True(t, names[d.Meal], "unexpected meal %q", d.Meal)
	}
}

func TestProvider_FetchDecisionUsesRand(t *testing.T) {
	p := NewSeeded(WithLatency(0, 0), WithRand(func(n int) int { return n - 1 }))

	d, err := p.FetchDecision(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Beef Pho", d.Meal)
}

func TestProvider_EmptyStore(t *testing.T) {
	p := New(storage.NewMemoryStore(nil), WithLatency(0, 0))

	_, err := p.FetchDecision(context.Background())
	require.ErrorIs(t, err, models.ErrNoMeals)

	meals, err := p.ListMeals(context.Background())
	require.NoError(t, err)
	assert.Empty(t, meals)
}

func TestProvider_CreateThenList(t *testing.T) {
	ctx := context.Background()
	p := newInstant()
	in := models.MealCreate{Meal: "Sushi", Cuisine: "Japanese", Reason: "fresh"}

	created, err := p.CreateMeal(ctx, in)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	for _, m := range storage.SeedMeals() {
		assert.NotEqual(t, m.ID, created.ID)
	}

	meals, err := p.ListMeals(ctx)
	require.NoError(t, err)
	require.Len(t, meals, 8)
	assert.Equal(t, created, meals[7])
}

func TestProvider_UpdateUnknownID(t *testing.T) {
	ctx := context.Background()
	p := newInstant()
	before, err := p.ListMeals(ctx)
	require.NoError(t, err)

	_, err = p.UpdateMeal(ctx, "999", models.MealCreate{Meal: "Ghost"})
	require.ErrorIs(t, err, models.ErrMealNotFound)

	after, err := p.ListMeals(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestProvider_UpdateReplacesFields(t *testing.T) {
	ctx := context.Background()
	p := newInstant()
	in := models.MealCreate{Meal: "Carbonara", Cuisine: "Roman", Reason: "guanciale"}

	updated, err := p.UpdateMeal(ctx, "1", in)
	require.NoError(t, err)
	assert.Equal(t, in.WithID("1"), updated)

	got, err := p.GetMeal(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, updated, got)
}

func TestProvider_DeleteTwice(t *testing.T) {
	ctx := context.Background()
	p := newInstant()

	require.NoError(t, p.DeleteMeal(ctx, "3"))

	meals, err := p.ListMeals(ctx)
	require.NoError(t, err)
	assert.Len(t, meals, 6)
	for _, m := range meals {
		assert.NotEqual(t, "3", m.ID)
	}

	err = p.DeleteMeal(ctx, "3")
	require.ErrorIs(t, err, models.ErrMealNotFound)
}

func TestProvider_ListIsIdempotent(t *testing.T) {
	ctx := context.Background()
	p := newInstant()

	first, err := p.ListMeals(ctx)
	require.NoError(t, err)
	second, err := p.ListMeals(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestProvider_Latency(t *testing.T) {
	p := NewSeeded(WithLatency(60*time.Millisecond, 20*time.Millisecond))

	start := time.Now()
	_, err := p.FetchDecision(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)

	start = time.Now()
	_, err = p.ListMeals(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestProvider_DefaultLatency(t *testing.T) {
	p := NewSeeded()
	assert.Equal(t, DefaultDecisionLatency, p.decisionLatency)
	assert.Equal(t, DefaultLatency, p.latency)
}

func TestProvider_CancelDuringLatency(t *testing.T) {
	store := storage.NewMemoryStore(storage.SeedMeals())
	p := New(store, WithLatency(time.Second, time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.CreateMeal(ctx, models.MealCreate{Meal: "Late"})
	require.ErrorIs(t, err, context.DeadlineExceeded)

	meals, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, meals, 7, "a cancelled write must not be applied")
}

func TestProvider_SeparateInstances(t *testing.T) {
	ctx := context.Background()
	a := newInstant()
	b := newInstant()

	require.NoError(t, a.DeleteMeal(ctx, "1"))

	meals, err := b.ListMeals(ctx)
	require.NoError(t, err)
	assert.Len(t, meals, 7)
}
