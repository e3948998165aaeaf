package shoppinglist

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"mealplanner/internal/recipes"
)

type recipeGetter interface {
	Get(ctx context.Context, id string) (*recipes.Recipe, error)
}

type server struct {
	store   *Store
	recipes recipeGetter
}

// NewHandler serves the plan and shared shopping list endpoints. recipes
// fills in ingredients for planned meals that only name a recipe.
func NewHandler(store *Store, recipes recipeGetter) *server {
	return &server{store: store, recipes: recipes}
}

func (s *server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/plans/{plan}/shopping-list", s.handleGet)
	mux.HandleFunc("PUT /api/plans/{plan}/shopping-list", s.handleRebuild)
	mux.HandleFunc("POST /api/plans/{plan}/shopping-list/items", s.handleAddManual)
	mux.HandleFunc("DELETE /api/plans/{plan}/shopping-list/items/{item}", s.handleRemove)
	mux.HandleFunc("PUT /api/plans/{plan}/shopping-list/items/{item}/checked", s.handleChecked)
	mux.HandleFunc("POST /api/plans/{plan}/shopping-list/reset", s.handleReset)

	mux.HandleFunc("GET /api/shared/{share}", s.handleShared)
	mux.HandleFunc("PUT /api/shared/{share}/items/{item}/checked", s.handleSharedChecked)
}

type listView struct {
	*List
	Groups []Group `json:"groups"`
}

type rebuildRequest struct {
	Meals map[string]PlannedMeal `json:"meals"`
}

type checkedRequest struct {
	Checked bool `json:"checked"`
}

func (s *server) handleGet(w http.ResponseWriter, r *http.Request) {
	l, err := s.store.ForPlan(r.Context(), r.PathValue("plan"))
	if errors.Is(err, ErrNotFound) {
		// no list until something is planned
		writeJSON(w, r, http.StatusOK, listView{List: &List{PlanID: r.PathValue("plan"), Items: []Item{}}, Groups: []Group{}})
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view(l))
}

func (s *server) handleShared(w http.ResponseWriter, r *http.Request) {
	l, err := s.store.ByShareID(r.Context(), r.PathValue("share"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view(l))
}

func (s *server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req rebuildRequest
	if !decode(w, r, &req) {
		return
	}
	for key, meal := range req.Meals {
		if meal.Leftover || len(meal.Ingredients) > 0 || meal.RecipeID == "" || s.recipes == nil {
			continue
		}
		recipe, err := s.recipes.Get(ctx, meal.RecipeID)
		if err != nil {
			slog.WarnContext(ctx, "planned recipe not found", "meal", key, "recipe", meal.RecipeID, "error", err)
			continue
		}
		meal.Ingredients = recipe.Ingredients
		req.Meals[key] = meal
	}

	l, err := s.store.Update(ctx, r.PathValue("plan"), func(l *List, now time.Time) error {
		l.Rebuild(req.Meals, now)
		return nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	slog.InfoContext(ctx, "rebuilt shopping list", "plan", l.PlanID, "items", len(l.Items))
	writeJSON(w, r, http.StatusOK, view(l))
}

func (s *server) handleAddManual(w http.ResponseWriter, r *http.Request) {
	var m ManualItem
	if !decode(w, r, &m) {
		return
	}
	var added Item
	_, err := s.store.Update(r.Context(), r.PathValue("plan"), func(l *List, now time.Time) error {
		var err error
		added, err = l.AddManual(m, now)
		return err
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, added)
}

func (s *server) handleRemove(w http.ResponseWriter, r *http.Request) {
	l, err := s.store.Update(r.Context(), r.PathValue("plan"), func(l *List, now time.Time) error {
		if !l.Remove(r.PathValue("item"), now) {
			return ErrItemNotFound
		}
		return nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view(l))
}

func (s *server) handleChecked(w http.ResponseWriter, r *http.Request) {
	var req checkedRequest
	if !decode(w, r, &req) {
		return
	}
	l, err := s.store.Update(r.Context(), r.PathValue("plan"), func(l *List, now time.Time) error {
		return l.SetChecked(r.PathValue("item"), req.Checked, now)
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view(l))
}

func (s *server) handleSharedChecked(w http.ResponseWriter, r *http.Request) {
	var req checkedRequest
	if !decode(w, r, &req) {
		return
	}
	l, err := s.store.UpdateShared(r.Context(), r.PathValue("share"), func(l *List, now time.Time) error {
		return l.SetChecked(r.PathValue("item"), req.Checked, now)
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view(l))
}

func (s *server) handleReset(w http.ResponseWriter, r *http.Request) {
	l, err := s.store.Update(r.Context(), r.PathValue("plan"), func(l *List, now time.Time) error {
		l.ResetChecked(now)
		return nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view(l))
}

func (s *server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrItemNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrInvalidItem):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		slog.ErrorContext(r.Context(), "shopping list request failed", "path", r.URL.Path, "error", err)
		http.Error(w, "unable to update shopping list", http.StatusInternalServerError)
	}
}

func view(l *List) listView {
	return listView{List: l, Groups: GroupByCategory(l.Items)}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(r.Context(), "failed to write response", "error", err)
	}
}
