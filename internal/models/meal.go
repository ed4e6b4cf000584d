// internal/models/meal.go
package models

import (
	"errors"
)

var (
	ErrMealNotFound = errors.New("meal not found")
	// ErrNoMeals is returned when a decision is requested from an empty store.
	ErrNoMeals = errors.New("no meals available")
)

// DinnerDecision is a single suggestion. It is produced per request and never
// stored on its own.
type DinnerDecision struct {
	Meal    string `json:"meal"`
	Cuisine string `json:"cuisine"`
	Reason  string `json:"reason"`
}

type Meal struct {
	ID      string `json:"id"`
	Meal    string `json:"meal"`
	Cuisine string `json:"cuisine"`
	Reason  string `json:"reason"`
}

// MealCreate is the payload of create and update. The id always comes from the
// store.
type MealCreate struct {
	Meal    string `json:"meal"`
	Cuisine string `json:"cuisine"`
	Reason  string `json:"reason"`
}

func (m Meal) Decision() DinnerDecision {
	return DinnerDecision{Meal: m.Meal, Cuisine: m.Cuisine, Reason: m.Reason}
}

func (m Meal) Fields() MealCreate {
	return MealCreate{Meal: m.Meal, Cuisine: m.Cuisine, Reason: m.Reason}
}

// WithID builds the stored record for a payload.
func (c MealCreate) WithID(id string) Meal {
	return Meal{ID: id, Meal: c.Meal, Cuisine: c.Cuisine, Reason: c.Reason}
}

type CuisineList struct {
	Cuisines []string `json:"cuisines"`
	Count    int      `json:"count"`
}

type ChangeOp string

const (
	OpCreate ChangeOp = "create"
	OpUpdate ChangeOp = "update"
	OpDelete ChangeOp = "delete"
)

// KindMealsChanged is the only event kind published on the change feed.
const KindMealsChanged = "meals.changed"

type ChangeEvent struct {
	Kind string   `json:"kind"`
	Op   ChangeOp `json:"op"`
	ID   string   `json:"id"`
}
