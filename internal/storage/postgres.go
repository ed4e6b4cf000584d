package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"feastfox/internal/models"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is empty")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.initSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) initSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS meals (
			id TEXT PRIMARY KEY,
			meal TEXT NOT NULL,
			cuisine TEXT NOT NULL,
			reason TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	return err
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]models.Meal, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, meal, cuisine, reason FROM meals
		ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query meals: %w", err)
	}
	defer rows.Close()

	meals := []models.Meal{}
	for rows.Next() {
		var m models.Meal
		if err := rows.Scan(&m.ID, &m.Meal, &m.Cuisine, &m.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan meal: %w", err)
		}
		meals = append(meals, m)
	}
	return meals, rows.Err()
}

func (s *PostgresStore) Get(ctx context.Context, id string) (models.Meal, error) {
	var m models.Meal
	err := s.pool.QueryRow(ctx,
		`SELECT id, meal, cuisine, reason FROM meals WHERE id = $1`, id,
	).Scan(&m.ID, &m.Meal, &m.Cuisine, &m.Reason)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Meal{}, models.ErrMealNotFound
	}
	if err != nil {
		return models.Meal{}, fmt.Errorf("failed to get meal %s: %w", id, err)
	}
	return m, nil
}

func (s *PostgresStore) Create(ctx context.Context, in models.MealCreate) (models.Meal, error) {
	m := in.WithID(uuid.NewString())
	_, err := s.pool.Exec(ctx, `
		INSERT INTO meals (id, meal, cuisine, reason) VALUES ($1, $2, $3, $4)`,
		m.ID, m.Meal, m.Cuisine, m.Reason,
	)
	if err != nil {
		return models.Meal{}, fmt.Errorf("failed to insert meal: %w", err)
	}
	return m, nil
}

func (s *PostgresStore) Update(ctx context.Context, id string, in models.MealCreate) (models.Meal, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE meals SET meal = $2, cuisine = $3, reason = $4 WHERE id = $1`,
		id, in.Meal, in.Cuisine, in.Reason,
	)
	if err != nil {
		return models.Meal{}, fmt.Errorf("failed to update meal %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return models.Meal{}, models.ErrMealNotFound
	}
	return in.WithID(id), nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM meals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete meal %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrMealNotFound
	}
	return nil
}
