package views

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"feastfox/internal/client"
	"feastfox/internal/models"
)

type Screen int

const (
	DecisionScreen Screen = iota
	MealsScreen
)

func (s Screen) String() string {
	switch s {
	case DecisionScreen:
		return "decision"
	case MealsScreen:
		return "meals"
	}
	return "unknown"
}

// ChangeFeed subscribes to change events from the meal store.
type ChangeFeed func(ctx context.Context) (<-chan models.ChangeEvent, error)

type CoordinatorOption func(*Coordinator)

// WithChangeFeed makes the meals screen re-fetch on remote changes.
func WithChangeFeed(feed ChangeFeed) CoordinatorOption {
	return func(c *Coordinator) {
		c.feed = feed
	}
}

// Coordinator owns which screen is active. Each switch tears the old screen
// down, cancelling its requests, and mounts a fresh one; no state crosses
// screens.
type Coordinator struct {
	provider client.Provider
	feed     ChangeFeed
	parent   context.Context
	changes  chan struct{}

	mu       sync.Mutex
	active   Screen
	cancel   context.CancelFunc
	decision *DecisionView
	meals    *MealsView
}

func NewCoordinator(ctx context.Context, p client.Provider, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		provider: p,
		parent:   ctx,
		changes:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.ShowDecision()
	return c
}

// Changes fires, coalesced, whenever any screen state changes.
func (c *Coordinator) Changes() <-chan struct{} {
	return c.changes
}

func (c *Coordinator) notify() {
	select {
	case c.changes <- struct{}{}:
	default:
	}
}

func (c *Coordinator) Active() Screen {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Decision returns the decision screen, or nil when it is not active.
func (c *Coordinator) Decision() *DecisionView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.decision
}

// Meals returns the meals screen, or nil when it is not active.
func (c *Coordinator) Meals() *MealsView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.meals
}

func (c *Coordinator) ShowDecision() {
	c.mu.Lock()
	ctx := c.teardown()
	v := NewDecisionView(c.provider, c.notify, c.ShowMeals)
	c.active = DecisionScreen
	c.decision = v
	c.mu.Unlock()

	v.Mount(ctx)
	c.notify()
}

func (c *Coordinator) ShowMeals() {
	c.mu.Lock()
	ctx := c.teardown()
	v := NewMealsView(c.provider, c.notify, c.ShowDecision)
	c.active = MealsScreen
	c.meals = v
	c.mu.Unlock()

	v.Load(ctx)
	if c.feed != nil {
		events, err := c.feed(ctx)
		if err != nil {
			log.Debug().Err(err).Msg("change feed unavailable")
		} else {
			v.Watch(ctx, events)
		}
	}
	c.notify()
}

// Close cancels whatever the active screen is doing.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// teardown drops the current screen and returns the context for the next one.
// Callers hold c.mu.
func (c *Coordinator) teardown() context.Context {
	if c.cancel != nil {
		c.cancel()
	}
	c.decision = nil
	c.meals = nil
	ctx, cancel := context.WithCancel(c.parent)
	c.cancel = cancel
	return ctx
}
