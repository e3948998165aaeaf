package recipes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"mealplanner/internal/cache"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

const recipeCachePrefix = "recipe/"

var ErrNotFound = errors.New("recipe not found")

// Store keeps one JSON document per recipe.
type Store struct {
	cache cache.ListCache
	now   func() time.Time
}

func NewStore(c cache.ListCache) *Store {
	return &Store{cache: c, now: time.Now}
}

// Save assigns an ID to new recipes and stamps the timestamps.
func (s *Store) Save(ctx context.Context, r *Recipe) error {
	now := s.now().UTC()
	opts := cache.Unconditional()
	if r.ID == "" {
		r.ID = uuid.NewString()
		r.CreatedAt = now
		opts = cache.IfNoneMatch()
	} else if r.CreatedAt.IsZero() {
		if existing, err := s.Get(ctx, r.ID); err == nil {
			r.CreatedAt = existing.CreatedAt
		} else {
			r.CreatedAt = now
		}
	}
	r.UpdatedAt = now
	if r.Ingredients == nil {
		r.Ingredients = []Ingredient{}
	}

	slog.InfoContext(ctx, "storing recipe", "name", r.Name, "id", r.ID, "ingredients", len(r.Ingredients))
	if err := s.cache.Put(ctx, recipeCachePrefix+r.ID, string(lo.Must(json.Marshal(r))), opts); err != nil {
		slog.ErrorContext(ctx, "failed to store recipe", "id", r.ID, "error", err)
		return fmt.Errorf("error saving recipe %s: %w", r.ID, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*Recipe, error) {
	if id == "" || strings.Contains(id, "/") {
		return nil, ErrNotFound
	}
	rc, err := s.cache.Get(ctx, recipeCachePrefix+id)
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer func() {
		if err := rc.Close(); err != nil {
			slog.ErrorContext(ctx, "failed to close cached recipe", "id", id, "error", err)
		}
	}()

	var r Recipe
	if err := json.NewDecoder(rc).Decode(&r); err != nil {
		return nil, fmt.Errorf("failed to decode recipe %s: %w", id, err)
	}
	return &r, nil
}

// List returns every recipe, newest first. Unreadable entries are logged and
// skipped.
func (s *Store) List(ctx context.Context) ([]Recipe, error) {
	ids, err := s.cache.List(ctx, recipeCachePrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	out := make([]Recipe, 0, len(ids))
	for _, id := range ids {
		r, err := s.Get(ctx, id)
		if err != nil {
			slog.WarnContext(ctx, "skipping unreadable recipe", "id", id, "error", err)
			continue
		}
		out = append(out, *r)
	}
	slices.SortStableFunc(out, func(a, b Recipe) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}
