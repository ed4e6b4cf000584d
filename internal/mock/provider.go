// Package mock stands in for the meal API when no backend is configured.
package mock

import (
	"context"
	"time"

	"feastfox/internal/client"
	"feastfox/internal/dinner"
	"feastfox/internal/models"
	"feastfox/internal/storage"
)

const (
	DefaultDecisionLatency = 800 * time.Millisecond
	DefaultLatency         = 300 * time.Millisecond
)

// Provider serves meal operations out of a MemoryStore, sleeping before each
// result so loading states behave as they would over a network.
type Provider struct {
	store           *storage.MemoryStore
	decisionLatency time.Duration
	latency         time.Duration
	intn            func(int) int
}

var _ client.Provider = &Provider{}

type Option func(*Provider)

// WithLatency sets the simulated delay for decisions and for every other
// operation. Zero disables the delay.
func WithLatency(decision, other time.Duration) Option {
	return func(p *Provider) {
		p.decisionLatency = decision
		p.latency = other
	}
}

// WithRand replaces the random index source used for decisions.
func WithRand(intn func(int) int) Option {
	return func(p *Provider) {
		p.intn = intn
	}
}

func New(store *storage.MemoryStore, opts ...Option) *Provider {
	p := &Provider{
		store:           store,
		decisionLatency: DefaultDecisionLatency,
		latency:         DefaultLatency,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewSeeded builds a provider over a fresh store holding the seven starter
// meals.
func NewSeeded(opts ...Option) *Provider {
	return New(storage.NewMemoryStore(storage.SeedMeals()), opts...)
}

func (p *Provider) FetchDecision(ctx context.Context) (models.DinnerDecision, error) {
	if err := sleep(ctx, p.decisionLatency); err != nil {
		return models.DinnerDecision{}, err
	}
	meals, err := p.store.List(ctx)
	if err != nil {
		return models.DinnerDecision{}, err
	}
	return dinner.Pick(meals, p.intn)
}

func (p *Provider) ListMeals(ctx context.Context) ([]models.Meal, error) {
	if err := sleep(ctx, p.latency); err != nil {
		return nil, err
	}
	return p.store.List(ctx)
}

func (p *Provider) GetMeal(ctx context.Context, id string) (models.Meal, error) {
	if err := sleep(ctx, p.latency); err != nil {
		return models.Meal{}, err
	}
	return p.store.Get(ctx, id)
}

func (p *Provider) CreateMeal(ctx context.Context, meal models.MealCreate) (models.Meal, error) {
	if err := sleep(ctx, p.latency); err != nil {
		return models.Meal{}, err
	}
	return p.store.Create(ctx, meal)
}

func (p *Provider) UpdateMeal(ctx context.Context, id string, meal models.MealCreate) (models.Meal, error) {
	if err := sleep(ctx, p.latency); err != nil {
		return models.Meal{}, err
	}
	return p.store.Update(ctx, id, meal)
}

func (p *Provider) DeleteMeal(ctx context.Context, id string) error {
	if err := sleep(ctx, p.latency); err != nil {
		return err
	}
	return p.store.Delete(ctx, id)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
