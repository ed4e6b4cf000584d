package storage

import (
	"context"
	"strconv"
	"sync"
	"time"

	"feastfox/internal/models"
)

// MemoryStore keeps meals in insertion order. Each instance owns its data, so
// two stores never share writes.
type MemoryStore struct {
	mu     sync.Mutex
	meals  []models.Meal
	nextID func() string
}

type MemoryOption func(*MemoryStore)

// WithIDFunc replaces the timestamp id generator.
func WithIDFunc(fn func() string) MemoryOption {
	return func(s *MemoryStore) {
		s.nextID = fn
	}
}

// WithClock derives ids from the given clock instead of time.Now.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		s.nextID = timestampIDs(now)
	}
}

func NewMemoryStore(seed []models.Meal, opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		meals:  append([]models.Meal(nil), seed...),
		nextID: timestampIDs(time.Now),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// timestampIDs makes ids out of the creation time. Two creates within the same
// nanosecond collide; that is accepted for a mock store.
func timestampIDs(now func() time.Time) func() string {
	return func() string {
		return strconv.FormatInt(now().UnixNano(), 10)
	}
}

func (s *MemoryStore) List(ctx context.Context) ([]models.Meal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Meal, len(s.meals))
	copy(out, s.meals)
	return out, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (models.Meal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Meal{}, models.ErrMealNotFound
	}
	return s.meals[i], nil
}

func (s *MemoryStore) Create(ctx context.Context, meal models.MealCreate) (models.Meal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := meal.WithID(s.nextID())
	s.meals = append(s.meals, created)
	return created, nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, meal models.MealCreate) (models.Meal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Meal{}, models.ErrMealNotFound
	}
	s.meals[i] = meal.WithID(id)
	return s.meals[i], nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.ErrMealNotFound
	}
	s.meals = append(s.meals[:i], s.meals[i+1:]...)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

func (s *MemoryStore) indexOf(id string) int {
	for i, m := range s.meals {
		if m.ID == id {
			return i
		}
	}
	return -1
}
