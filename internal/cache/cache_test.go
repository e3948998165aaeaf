package cache

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"

	"mealplanner/internal/config"
)

func caches(t *testing.T) map[string]ListCache {
	return map[string]ListCache{
		"memory": NewInMemoryCache(),
		"file":   NewFileCache(t.TempDir()),
	}
}

func read(t *testing.T, c Cache, key string) string {
	t.Helper()
	r, err := c.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("Get(%q): %v", key, err)
	}
	defer r.Close()
	b, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read %q: %v", key, err)
	}
	return string(b)
}

func TestCacheRoundTrip(t *testing.T) {
	for name, c := range caches(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if _, err := c.Get(ctx, "recipes/missing"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
			ok, err := c.Exists(ctx, "recipes/missing")
			if err != nil || ok {
				t.Fatalf("Exists on missing key = %v, %v", ok, err)
			}

			if err := c.Put(ctx, "recipes/a", "first", Unconditional()); err != nil {
				t.Fatalf("Put: %v", err)
			}
			if err := c.Put(ctx, "recipes/a", "second", Unconditional()); err != nil {
				t.Fatalf("Put overwrite: %v", err)
			}
			if got := read(t, c, "recipes/a"); got != "second" {
				t.Fatalf("got %q, want second", got)
			}
			ok, err = c.Exists(ctx, "recipes/a")
			if err != nil || !ok {
				t.Fatalf("Exists = %v, %v", ok, err)
			}
		})
	}
}

func TestCachePutIfNoneMatch(t *testing.T) {
	for name, c := range caches(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := c.Put(ctx, "lists/x", "v1", IfNoneMatch()); err != nil {
				t.Fatalf("first conditional put: %v", err)
			}
			if err := c.Put(ctx, "lists/x", "v2", IfNoneMatch()); !errors.Is(err, ErrAlreadyExists) {
				t.Fatalf("expected ErrAlreadyExists, got %v", err)
			}
			if got := read(t, c, "lists/x"); got != "v1" {
				t.Fatalf("value changed to %q", got)
			}
		})
	}
}

func TestCachePutIfNoneMatchConcurrent(t *testing.T) {
	for name, c := range caches(t) {
		t.Run(name, func(t *testing.T) {
			const n = 16
			var wins, conflicts atomic.Int32
			var wg sync.WaitGroup
			for range n {
				wg.Add(1)
				go func() {
					defer wg.Done()
					err := c.Put(context.Background(), "race", "v", IfNoneMatch())
					switch {
					case err == nil:
						wins.Add(1)
					case errors.Is(err, ErrAlreadyExists):
						conflicts.Add(1)
					}
				}()
			}
			wg.Wait()
			if wins.Load() != 1 || conflicts.Load() != n-1 {
				t.Fatalf("wins=%d conflicts=%d", wins.Load(), conflicts.Load())
			}
		})
	}
}

func TestCacheList(t *testing.T) {
	for name, c := range caches(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, k := range []string{"recipes/b", "recipes/a", "shopping/p1", "recipes/c"} {
				if err := c.Put(ctx, k, k, Unconditional()); err != nil {
					t.Fatalf("Put(%q): %v", k, err)
				}
			}
			keys, err := c.List(ctx, "recipes/")
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			want := []string{"a", "b", "c"}
			if len(keys) != len(want) {
				t.Fatalf("got %v, want %v", keys, want)
			}
			for i := range want {
				if keys[i] != want[i] {
					t.Fatalf("got %v, want %v", keys, want)
				}
			}
		})
	}
}

func TestFileCacheListMissingDir(t *testing.T) {
	fc := NewFileCache(t.TempDir() + "/never-created")
	keys, err := fc.List(context.Background(), "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(keys) != 0 {
		t.Fatalf("expected no keys, got %v", keys)
	}
}

func TestFileCacheRejectsEscapingKeys(t *testing.T) {
	fc := NewFileCache(t.TempDir())
	for _, key := range []string{"", "../outside", "/etc/passwd"} {
		if err := fc.Put(context.Background(), key, "x", Unconditional()); err == nil {
			t.Errorf("Put(%q) should fail", key)
		}
	}
}

func TestMakeCacheDefaultsToFile(t *testing.T) {
	dir := t.TempDir()
	c, err := MakeCache(config.CacheConfig{Dir: dir})
	if err != nil {
		t.Fatalf("MakeCache: %v", err)
	}
	fc, ok := c.(*FileCache)
	if !ok {
		t.Fatalf("expected *FileCache, got %T", c)
	}
	if fc.Dir != dir {
		t.Fatalf("dir = %q", fc.Dir)
	}
}
