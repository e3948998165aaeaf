// Package shoppinglist builds the shared shopping list for a meal plan and
// applies the edits people make to it while shopping.
package shoppinglist

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"mealplanner/internal/ingredients"
	"mealplanner/internal/recipes"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

var (
	ErrItemNotFound = errors.New("shopping list item not found")
	ErrInvalidItem  = errors.New("invalid shopping list item")
)

type Item struct {
	ID        string               `json:"id"`
	Name      string               `json:"name"`
	Amount    float64              `json:"amount"`
	Unit      string               `json:"unit"`
	Category  ingredients.Category `json:"category"`
	Notes     string               `json:"notes,omitempty"`
	Checked   bool                 `json:"checked"`
	CreatedAt time.Time            `json:"createdAt"`
	MealKey   string               `json:"mealKey,omitempty"`
	RecipeID  string               `json:"recipeId,omitempty"`
	Manual    bool                 `json:"isManual"`
}

// checkKey identifies "the same thing to buy" across rebuilds.
func (i Item) checkKey() string {
	return i.Name + "-" + i.Unit
}

type List struct {
	ID        string    `json:"id"`
	PlanID    string    `json:"planId"`
	ShareID   string    `json:"shareId"`
	Name      string    `json:"name"`
	Items     []Item    `json:"items"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PlannedMeal is one slot of a meal plan. Leftover meals reuse food cooked
// earlier in the week.
type PlannedMeal struct {
	RecipeID    string               `json:"recipeId"`
	Servings    int                  `json:"servings,omitempty"`
	MealType    string               `json:"mealType,omitempty"`
	Leftover    bool                 `json:"isLeftover,omitempty"`
	Ingredients []recipes.Ingredient `json:"ingredients,omitempty"`
}

// New returns an empty list for a plan with fresh list and share IDs.
func New(planID string, now time.Time) *List {
	return &List{
		ID:        uuid.NewString(),
		PlanID:    planID,
		ShareID:   uuid.NewString(),
		Name:      "Shopping List - " + now.Format("1/2/2006"),
		Items:     []Item{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ExtractItems lists every ingredient of every non-leftover meal, in meal key
// order. The same ingredient in two meals yields two items.
func ExtractItems(meals map[string]PlannedMeal, now time.Time) []Item {
	items := []Item{}
	for _, key := range slices.Sorted(maps.Keys(meals)) {
		meal := meals[key]
		if meal.Leftover {
			continue
		}
		for _, ing := range meal.Ingredients {
			items = append(items, Item{
				ID:        uuid.NewString(),
				Name:      ing.Name,
				Amount:    ing.Amount,
				Unit:      ing.Unit,
				Category:  ing.Category.OrOther(),
				Notes:     ing.Notes,
				CreatedAt: now,
				MealKey:   key,
				RecipeID:  meal.RecipeID,
			})
		}
	}
	return items
}

// Rebuild replaces the plan-derived items with a fresh extraction. Manual
// items survive untouched and new items come back checked when an item with
// the same name and unit was checked before.
func (l *List) Rebuild(meals map[string]PlannedMeal, now time.Time) {
	checked := make(map[string]bool)
	for _, it := range l.Items {
		if it.Checked {
			checked[it.checkKey()] = true
		}
	}
	manual := lo.Filter(l.Items, func(it Item, _ int) bool { return it.Manual })

	fresh := ExtractItems(meals, now)
	for i := range fresh {
		fresh[i].Checked = checked[fresh[i].checkKey()]
	}
	l.Items = append(fresh, manual...)
	l.UpdatedAt = now
}

type ManualItem struct {
	Name     string               `json:"name"`
	Amount   float64              `json:"amount"`
	Unit     string               `json:"unit"`
	Category ingredients.Category `json:"category,omitempty"`
	Notes    string               `json:"notes,omitempty"`
}

// AddManual appends an item typed in by hand. Without a category the item is
// filed by the ingredient classifier.
func (l *List) AddManual(m ManualItem, now time.Time) (Item, error) {
	name := strings.TrimSpace(m.Name)
	if name == "" {
		return Item{}, fmt.Errorf("%w: name is required", ErrInvalidItem)
	}
	category := m.Category
	if category == "" {
		category = ingredients.GuessCategory(name)
	}
	it := Item{
		ID:        uuid.NewString(),
		Name:      name,
		Amount:    m.Amount,
		Unit:      strings.TrimSpace(m.Unit),
		Category:  category.OrOther(),
		Notes:     strings.TrimSpace(m.Notes),
		CreatedAt: now,
		Manual:    true,
	}
	l.Items = append(l.Items, it)
	l.UpdatedAt = now
	return it, nil
}

// Remove deletes an item and reports whether it was there.
func (l *List) Remove(id string, now time.Time) bool {
	before := len(l.Items)
	l.Items = slices.DeleteFunc(l.Items, func(it Item) bool { return it.ID == id })
	if len(l.Items) == before {
		return false
	}
	l.UpdatedAt = now
	return true
}

func (l *List) SetChecked(id string, checked bool, now time.Time) error {
	i := slices.IndexFunc(l.Items, func(it Item) bool { return it.ID == id })
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	l.Items[i].Checked = checked
	l.UpdatedAt = now
	return nil
}

func (l *List) ResetChecked(now time.Time) {
	for i := range l.Items {
		l.Items[i].Checked = false
	}
	l.UpdatedAt = now
}

type Group struct {
	Category ingredients.Category `json:"category"`
	Items    []Item               `json:"items"`
}

// GroupByCategory groups items in category display order, dropping empty
// groups. Items keep their list order within a group.
func GroupByCategory(items []Item) []Group {
	byCategory := lo.GroupBy(items, func(it Item) ingredients.Category { return it.Category.OrOther() })
	groups := []Group{}
	for _, c := range ingredients.Categories() {
		if group, ok := byCategory[c]; ok {
			groups = append(groups, Group{Category: c, Items: group})
		}
	}
	return groups
}
