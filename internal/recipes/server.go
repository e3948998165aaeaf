package recipes

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"mealplanner/internal/importer"
	"mealplanner/internal/ingredients"
)

type ingredientParser interface {
	Default() importer.Strategy
	Parse(ctx context.Context, strategy importer.Strategy, text string) ([]ingredients.ParsedIngredient, error)
}

type server struct {
	store  *Store
	parser ingredientParser
}

func NewHandler(store *Store, parser ingredientParser) *server {
	return &server{store: store, parser: parser}
}

func (s *server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/recipes", s.handleList)
	mux.HandleFunc("POST /api/recipes", s.handleCreate)
	mux.HandleFunc("GET /api/recipes/{id}", s.handleSingle)
	mux.HandleFunc("PUT /api/recipes/{id}", s.handleUpdate)
}

// recipeRequest is a recipe plus, optionally, a pasted ingredient list to
// import in place of Ingredients.
type recipeRequest struct {
	Recipe
	IngredientsText string `json:"ingredientsText,omitempty"`
	Parser          string `json:"parser,omitempty"`
}

func (s *server) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list recipes", "error", err)
		http.Error(w, "unable to load recipes", http.StatusInternalServerError)
		return
	}
	writeJSON(w, r, http.StatusOK, list)
}

func (s *server) handleSingle(w http.ResponseWriter, r *http.Request) {
	recipe, err := s.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "recipe not found", http.StatusNotFound)
			return
		}
		slog.ErrorContext(r.Context(), "failed to load recipe", "id", r.PathValue("id"), "error", err)
		http.Error(w, "unable to load recipe", http.StatusInternalServerError)
		return
	}
	writeJSON(w, r, http.StatusOK, recipe)
}

func (s *server) handleCreate(w http.ResponseWriter, r *http.Request) {
	recipe, ok := s.decode(w, r)
	if !ok {
		return
	}
	recipe.ID = ""
	if err := s.store.Save(r.Context(), recipe); err != nil {
		http.Error(w, "unable to save recipe", http.StatusInternalServerError)
		return
	}
	writeJSON(w, r, http.StatusCreated, recipe)
}

func (s *server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	existing, err := s.store.Get(ctx, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "recipe not found", http.StatusNotFound)
			return
		}
		http.Error(w, "unable to load recipe", http.StatusInternalServerError)
		return
	}
	recipe, ok := s.decode(w, r)
	if !ok {
		return
	}
	recipe.ID = existing.ID
	recipe.CreatedAt = existing.CreatedAt
	if err := s.store.Save(ctx, recipe); err != nil {
		http.Error(w, "unable to save recipe", http.StatusInternalServerError)
		return
	}
	writeJSON(w, r, http.StatusOK, recipe)
}

func (s *server) decode(w http.ResponseWriter, r *http.Request) (*Recipe, bool) {
	ctx := r.Context()
	var req recipeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return nil, false
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		http.Error(w, "recipe name is required", http.StatusBadRequest)
		return nil, false
	}

	if strings.TrimSpace(req.IngredientsText) != "" {
		strategy, err := importer.ParseStrategy(req.Parser, s.parser.Default())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return nil, false
		}
		parsed, err := s.parser.Parse(ctx, strategy, req.IngredientsText)
		if err != nil {
			slog.ErrorContext(ctx, "failed to import recipe ingredients", "recipe", req.Name, "parser", strategy, "error", err)
			http.Error(w, ingredients.ErrParseFailed.Error(), http.StatusBadGateway)
			return nil, false
		}
		req.Ingredients = IngredientsFromParsed(parsed)
	}
	for i := range req.Ingredients {
		req.Ingredients[i].Category = req.Ingredients[i].Category.OrOther()
	}
	return &req.Recipe, true
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(r.Context(), "failed to write response", "error", err)
	}
}
