package shoppinglist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"mealplanner/internal/cache"

	"github.com/samber/lo"
)

const (
	planPrefix  = "shoppinglist/plan/"
	sharePrefix = "shoppinglist/share/"
)

var ErrNotFound = errors.New("shopping list not found")

// Store persists one list per meal plan plus a share ID index pointing back
// at the plan.
type Store struct {
	cache cache.Cache
	now   func() time.Time

	// read-modify-write of a list is serialized within the process
	mu sync.Mutex
}

func NewStore(c cache.Cache) *Store {
	return &Store{cache: c, now: time.Now}
}

func validID(id string) bool {
	return id != "" && !strings.ContainsAny(id, "/\\") && id != "." && id != ".."
}

func (s *Store) ForPlan(ctx context.Context, planID string) (*List, error) {
	if !validID(planID) {
		return nil, ErrNotFound
	}
	return s.load(ctx, planPrefix+planID)
}

func (s *Store) ByShareID(ctx context.Context, shareID string) (*List, error) {
	if !validID(shareID) {
		return nil, ErrNotFound
	}
	planID, err := s.read(ctx, sharePrefix+shareID)
	if err != nil {
		return nil, err
	}
	return s.ForPlan(ctx, string(planID))
}

// Update loads the plan's list, creating it when missing, applies fn and
// saves the result. Nothing is saved when fn fails.
func (s *Store) Update(ctx context.Context, planID string, fn func(l *List, now time.Time) error) (*List, error) {
	if !validID(planID) {
		return nil, fmt.Errorf("invalid plan id %q", planID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	l, err := s.ForPlan(ctx, planID)
	created := false
	if errors.Is(err, ErrNotFound) {
		l, created = New(planID, now), true
	} else if err != nil {
		return nil, err
	}

	if err := fn(l, now); err != nil {
		return nil, err
	}

	if created {
		if err := s.cache.Put(ctx, sharePrefix+l.ShareID, planID, cache.IfNoneMatch()); err != nil {
			return nil, fmt.Errorf("failed to index share id: %w", err)
		}
		slog.InfoContext(ctx, "created shopping list", "plan", planID, "share", l.ShareID)
	}
	if err := s.cache.Put(ctx, planPrefix+planID, string(lo.Must(json.Marshal(l))), cache.Unconditional()); err != nil {
		slog.ErrorContext(ctx, "failed to save shopping list", "plan", planID, "error", err)
		return nil, fmt.Errorf("failed to save shopping list: %w", err)
	}
	return l, nil
}

// UpdateShared applies fn to the list behind a share link. Shared lists are
// never created this way.
func (s *Store) UpdateShared(ctx context.Context, shareID string, fn func(l *List, now time.Time) error) (*List, error) {
	l, err := s.ByShareID(ctx, shareID)
	if err != nil {
		return nil, err
	}
	return s.Update(ctx, l.PlanID, fn)
}

func (s *Store) load(ctx context.Context, key string) (*List, error) {
	raw, err := s.read(ctx, key)
	if err != nil {
		return nil, err
	}
	var l List
	if err := json.Unmarshal(raw, &l); err != nil {
		return nil, fmt.Errorf("failed to decode shopping list %s: %w", key, err)
	}
	if l.Items == nil {
		l.Items = []Item{}
	}
	return &l, nil
}

func (s *Store) read(ctx context.Context, key string) ([]byte, error) {
	rc, err := s.cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer func() {
		if err := rc.Close(); err != nil {
			slog.ErrorContext(ctx, "failed to close cached shopping list", "key", key, "error", err)
		}
	}()
	return io.ReadAll(rc)
}
