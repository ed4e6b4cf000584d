// internal/storage/store.go
package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"feastfox/internal/models"
)

// Store is the persistence contract shared by every backend. Lookups and
// writes against an unknown id fail with models.ErrMealNotFound.
type Store interface {
	List(ctx context.Context) ([]models.Meal, error)
	Get(ctx context.Context, id string) (models.Meal, error)
	Create(ctx context.Context, meal models.MealCreate) (models.Meal, error)
	Update(ctx context.Context, id string, meal models.MealCreate) (models.Meal, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendDynamoDB = "dynamodb"
	BackendPostgres = "postgres"
)

type Options struct {
	Backend        string
	DBPath         string
	DynamoEndpoint string
	Region         string
	Table          string
	PostgresDSN    string
	Seed           bool
}

// Open builds the backend named by opts.Backend and seeds it when it is empty
// and seeding is enabled.
func Open(ctx context.Context, opts Options) (Store, error) {
	var (
		store Store
		err   error
	)

	switch opts.Backend {
	case BackendMemory:
		store = NewMemoryStore(nil, WithIDFunc(uuid.NewString))
	case BackendSQLite, "":
		store, err = NewSQLiteStorage(opts.DBPath)
	case BackendDynamoDB:
		client, err := newDynamoClient(ctx, opts.DynamoEndpoint, opts.Region)
		if err != nil {
			return nil, err
		}
		dyn := NewDynamoStore(client, opts.Table)
		if err = dyn.EnsureTable(ctx); err != nil {
			return nil, fmt.Errorf("failed to ensure table %s: %w", opts.Table, err)
		}
		store = dyn
	case BackendPostgres:
		store, err = NewPostgresStore(ctx, opts.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", opts.Backend, err)
	}

	if opts.Seed {
		n, err := SeedIfEmpty(ctx, store, SeedFields())
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to seed store: %w", err)
		}
		if n > 0 {
			log.Info().Str("backend", opts.Backend).Int("meals", n).Msg("seeded meal store")
		}
	}

	return store, nil
}

// SeedIfEmpty creates the given meals when the store has none and reports how
// many were written.
func SeedIfEmpty(ctx context.Context, s Store, meals []models.MealCreate) (int, error) {
	existing, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}
	for _, m := range meals {
		if _, err := s.Create(ctx, m); err != nil {
			return 0, fmt.Errorf("failed to seed %q: %w", m.Meal, err)
		}
	}
	return len(meals), nil
}
