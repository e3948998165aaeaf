package paritycheck

import "mealplanner/internal/ingredients"

// Case is one input with the records a careful reader would expect.
type Case struct {
	Input    string                         `json:"input"`
	Expected []ingredients.ParsedIngredient `json:"expected,omitempty"`
}

// BuiltinCases returns the standard comparison inputs.
func BuiltinCases() []Case {
	return []Case{
		{
			Input:    "2 cups flour",
			Expected: []ingredients.ParsedIngredient{{Quantity: 2, Unit: "cups", Item: "flour"}},
		},
		{
			Input:    "1/2 tablespoon salt",
			Expected: []ingredients.ParsedIngredient{{Quantity: 0.5, Unit: "tablespoon", Item: "salt"}},
		},
		{
			Input:    "3-4 large eggs, beaten",
			Expected: []ingredients.ParsedIngredient{{Quantity: 4, Item: "large eggs", Notes: "beaten"}},
		},
		{
			Input: "salt and pepper to taste",
			Expected: []ingredients.ParsedIngredient{
				{Item: "salt", Notes: "to taste"},
				{Item: "pepper", Notes: "to taste"},
			},
		},
		{
			Input:    "1 (14 ounce) can diced tomatoes",
			Expected: []ingredients.ParsedIngredient{{Quantity: 1, Unit: "(14 ounce) can", Item: "diced tomatoes"}},
		},
		{
			Input:    "1 1/2 cups sugar",
			Expected: []ingredients.ParsedIngredient{{Quantity: 1.5, Unit: "cups", Item: "sugar"}},
		},
	}
}
