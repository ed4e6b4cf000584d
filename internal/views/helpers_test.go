package views

import (
	"context"
	"sync"

	"feastfox/internal/mock"
	"feastfox/internal/models"
)

// flakyProvider wraps an instant mock provider and can fail chosen
// operations.
type flakyProvider struct {
	*mock.Provider

	mu        sync.Mutex
	listErr   error
	createErr error
	updateErr error
	deleteErr error
	lists     int
	creates   int
	updates   int
}

func newFlaky() *flakyProvider {
	return &flakyProvider{Provider: mock.NewSeeded(mock.WithLatency(0, 0))}
}

func (f *flakyProvider) ListMeals(ctx context.Context) ([]models.Meal, error) {
	f.mu.Lock()
	f.lists++
	err := f.listErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.Provider.ListMeals(ctx)
}

func (f *flakyProvider) CreateMeal(ctx context.Context, meal models.MealCreate) (models.Meal, error) {
	f.mu.Lock()
	f.creates++
	err := f.createErr
	f.mu.Unlock()
	if err != nil {
		return models.Meal{}, err
	}
	return f.Provider.CreateMeal(ctx, meal)
}

func (f *flakyProvider) UpdateMeal(ctx context.Context, id string, meal models.MealCreate) (models.Meal, error) {
	f.mu.Lock()
	f.updates++
	err := f.updateErr
	f.mu.Unlock()
	if err != nil {
		return models.Meal{}, err
	}
	return f.Provider.UpdateMeal(ctx, id, meal)
}

func (f *flakyProvider) DeleteMeal(ctx context.Context, id string) error {
	f.mu.Lock()
	err := f.deleteErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.Provider.DeleteMeal(ctx, id)
}

func (f *flakyProvider) listCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists
}

// gatedDecisions hands out decisions only when released, one per release.
type gatedDecisions struct {
	*mock.Provider
	release chan models.DinnerDecision
}

func newGated() *gatedDecisions {
	return &gatedDecisions{
		Provider: mock.NewSeeded(mock.WithLatency(0, 0)),
		release:  make(chan models.DinnerDecision),
	}
}

func (g *gatedDecisions) FetchDecision(ctx context.Context) (models.DinnerDecision, error) {
	select {
	case d := <-g.release:
		return d, nil
	case <-ctx.Done():
		return models.DinnerDecision{}, ctx.Err()
	}
}
