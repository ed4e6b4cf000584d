// Package dinner picks suggestions out of the meal list.
package dinner

import (
	"context"
	"math/rand"
	"sort"

	"feastfox/internal/models"
)

// Lister is the read side of a meal store.
type Lister interface {
	List(ctx context.Context) ([]models.Meal, error)
}

// Pick chooses one meal uniformly at random. intn may be nil, in which case
// the global source is used.
func Pick(meals []models.Meal, intn func(int) int) (models.DinnerDecision, error) {
	if len(meals) == 0 {
		return models.DinnerDecision{}, models.ErrNoMeals
	}
	if intn == nil {
		intn = rand.Intn
	}
	return meals[intn(len(meals))].Decision(), nil
}

// Decide lists the store and picks one meal from it.
func Decide(ctx context.Context, store Lister) (models.DinnerDecision, error) {
	meals, err := store.List(ctx)
	if err != nil {
		return models.DinnerDecision{}, err
	}
	return Pick(meals, nil)
}

// Cuisines returns the distinct cuisines of the stored meals, sorted.
func Cuisines(ctx context.Context, store Lister) (models.CuisineList, error) {
	meals, err := store.List(ctx)
	if err != nil {
		return models.CuisineList{}, err
	}

	seen := make(map[string]struct{}, len(meals))
	cuisines := []string{}
	for _, m := range meals {
		if _, ok := seen[m.Cuisine]; ok {
			continue
		}
		seen[m.Cuisine] = struct{}{}
		cuisines = append(cuisines, m.Cuisine)
	}
	sort.Strings(cuisines)

	return models.CuisineList{Cuisines: cuisines, Count: len(cuisines)}, nil
}
