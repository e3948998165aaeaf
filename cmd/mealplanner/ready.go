package main

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"

	"mealplanner/internal/cache"
)

// readyOnce passes every check once, then stays ready.
type readyOnce struct {
	done   atomic.Bool
	checks []Readyable
}

type Readyable interface {
	Ready(context.Context) error
}

func (r *readyOnce) Ready(ctx context.Context) error {
	if r.done.Load() {
		return nil
	}
	for _, check := range r.checks {
		if err := check.Ready(ctx); err != nil {
			return err
		}
	}
	r.done.Store(true)
	return nil
}

func (r *readyOnce) Add(f ...Readyable) {
	r.checks = append(r.checks, f...)
}

func (r *readyOnce) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if err := r.Ready(req.Context()); err != nil {
		http.Error(w, "not ready: "+err.Error(), http.StatusServiceUnavailable)
		return
	}
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.ErrorContext(req.Context(), "failed to write readiness response", "error", err)
	}
}

// cacheReady succeeds once the cache backend answers a lookup.
type cacheReady struct {
	cache cache.Cache
}

func (c cacheReady) Ready(ctx context.Context) error {
	_, err := c.cache.Exists(ctx, "ready")
	return err
}
