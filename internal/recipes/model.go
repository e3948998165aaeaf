// Package recipes stores the recipe library and imports ingredient lists
// into it.
package recipes

import (
	"time"

	"mealplanner/internal/ingredients"

	"github.com/samber/lo"
)

type Ingredient struct {
	Name     string               `json:"name"`
	Amount   float64              `json:"amount"`
	Unit     string               `json:"unit"`
	Category ingredients.Category `json:"category"`
	Notes    string               `json:"notes,omitempty"`
}

type Recipe struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Description  string       `json:"description,omitempty"`
	Servings     int          `json:"servings,omitempty"`
	PrepTime     int          `json:"prepTime,omitempty"` // minutes
	CookTime     int          `json:"cookTime,omitempty"` // minutes
	Ingredients  []Ingredient `json:"ingredients"`
	Instructions []string     `json:"instructions,omitempty"`
	Tags         []string     `json:"tags,omitempty"`
	Image        string       `json:"image,omitempty"`
	URL          string       `json:"url,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// IngredientsFromParsed converts parser output into recipe ingredients,
// skipping records without an item and filing unknown categories under Other.
func IngredientsFromParsed(parsed []ingredients.ParsedIngredient) []Ingredient {
	kept := lo.Filter(parsed, func(p ingredients.ParsedIngredient, _ int) bool {
		return p.Item != ""
	})
	return lo.Map(kept, func(p ingredients.ParsedIngredient, _ int) Ingredient {
		return Ingredient{
			Name:     p.Item,
			Amount:   p.Quantity,
			Unit:     p.Unit,
			Category: p.Category.OrOther(),
			Notes:    p.Notes,
		}
	})
}
