package storage

import (
	"strconv"

	"feastfox/internal/models"
)

var seedMeals = []models.MealCreate{
	{Meal: "Spaghetti Carbonara", Cuisine: "Italian", Reason: "Classic comfort food that never disappoints!"},
	{Meal: "Chicken Tikka Masala", Cuisine: "Indian", Reason: "Spicy and flavourful, perfect for an adventure!"},
	{Meal: "Tacos al Pastor", Cuisine: "Mexican", Reason: "Fresh and vibrant flavours for a festive evening!"},
	{Meal: "Pad Thai", Cuisine: "Thai", Reason: "Sweet, sour, and satisfying all at once!"},
	{Meal: "Salmon Teriyaki", Cuisine: "Japanese", Reason: "Healthy and delicious with a perfect glaze!"},
	{Meal: "Greek Moussaka", Cuisine: "Greek", Reason: "Hearty and Mediterranean, a true delight!"},
	{Meal: "Beef Pho", Cuisine: "Vietnamese", Reason: "Aromatic and warming, perfect for any mood!"},
}

// SeedFields returns a fresh copy of the seven starter meals.
func SeedFields() []models.MealCreate {
	out := make([]models.MealCreate, len(seedMeals))
	copy(out, seedMeals)
	return out
}

// SeedMeals returns the starter meals with the fixed ids "1" to "7".
func SeedMeals() []models.Meal {
	out := make([]models.Meal, 0, len(seedMeals))
	for i, m := range seedMeals {
		out = append(out, m.WithID(strconv.Itoa(i+1)))
	}
	return out
}
