// internal/storage/sqlite.go
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"feastfox/internal/models"
)

type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps ":memory:" databases alive and serialises writers.
	db.SetMaxOpenConns(1)

	storage := &SQLiteStorage{db: db}
	if err := storage.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS meals (
        id TEXT PRIMARY KEY,
        meal TEXT NOT NULL,
        cuisine TEXT NOT NULL,
        reason TEXT NOT NULL,
        created_at INTEGER NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_meals_created_at ON meals(created_at);
    `

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

func (s *SQLiteStorage) List(ctx context.Context) ([]models.Meal, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, meal, cuisine, reason
        FROM meals
        ORDER BY created_at, rowid
    `)
	if err != nil {
		return nil, fmt.Errorf("failed to query meals: %w", err)
	}
	defer rows.Close()

	meals := []models.Meal{}
	for rows.Next() {
		var meal models.Meal
		if err := rows.Scan(&meal.ID, &meal.Meal, &meal.Cuisine, &meal.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan meal: %w", err)
		}
		meals = append(meals, meal)
	}

	return meals, rows.Err()
}

func (s *SQLiteStorage) Get(ctx context.Context, id string) (models.Meal, error) {
	meal := models.Meal{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, meal, cuisine, reason FROM meals WHERE id = ?`, id,
	).Scan(&meal.ID, &meal.Meal, &meal.Cuisine, &meal.Reason)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Meal{}, models.ErrMealNotFound
	}
	if err != nil {
		return models.Meal{}, fmt.Errorf("failed to get meal %s: %w", id, err)
	}
	return meal, nil
}

func (s *SQLiteStorage) Create(ctx context.Context, in models.MealCreate) (models.Meal, error) {
	meal := in.WithID(uuid.NewString())

	_, err := s.db.ExecContext(ctx, `
        INSERT INTO meals (id, meal, cuisine, reason, created_at)
        VALUES (?, ?, ?, ?, ?)
    `, meal.ID, meal.Meal, meal.Cuisine, meal.Reason, time.Now().UnixNano())
	if err != nil {
		return models.Meal{}, fmt.Errorf("failed to insert meal: %w", err)
	}

	return meal, nil
}

func (s *SQLiteStorage) Update(ctx context.Context, id string, in models.MealCreate) (models.Meal, error) {
	res, err := s.db.ExecContext(ctx, `
        UPDATE meals SET meal = ?, cuisine = ?, reason = ?
        WHERE id = ?
    `, in.Meal, in.Cuisine, in.Reason, id)
	if err != nil {
		return models.Meal{}, fmt.Errorf("failed to update meal %s: %w", id, err)
	}
	if err := requireAffected(res); err != nil {
		return models.Meal{}, err
	}
	return in.WithID(id), nil
}

func (s *SQLiteStorage) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM meals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete meal %s: %w", id, err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return models.ErrMealNotFound
	}
	return nil
}
