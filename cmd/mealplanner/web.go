package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mealplanner/internal/cache"
	"mealplanner/internal/config"
	"mealplanner/internal/importer"
	"mealplanner/internal/recipes"
	"mealplanner/internal/shoppinglist"
)

func newMux(cfg *config.Config, c cache.ListCache) (*http.ServeMux, error) {
	svc, err := importer.NewFromConfig(cfg, c)
	if err != nil {
		return nil, fmt.Errorf("failed to create import service: %w", err)
	}

	mux := http.NewServeMux()
	importer.NewHandler(svc).Register(mux)

	recipeStore := recipes.NewStore(c)
	recipes.NewHandler(recipeStore, svc).Register(mux)
	shoppinglist.NewHandler(shoppinglist.NewStore(c), recipeStore).Register(mux)

	ro := &readyOnce{}
	ro.Add(cacheReady{c})
	mux.Handle("/ready", ro)
	return mux, nil
}

func runServer(cfg *config.Config, addr string) error {
	c, err := cache.MakeCache(cfg.Cache)
	if err != nil {
		return fmt.Errorf("failed to create cache: %w", err)
	}

	mux, err := newMux(cfg, c)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           WithMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("Serving mealplanner", "address", addr, "parser", cfg.Parser.Default)
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case sig := <-shutdown:
		slog.Info("Shutdown signal received", "signal", sig)
		return gracefulShutdown(server)
	}
}

func gracefulShutdown(svr *http.Server) error {
	// prompt-driven imports can take most of a minute; kubernetes gives us 30s
	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	if err := svr.Shutdown(ctx); err != nil {
		slog.Error("Server shutdown error", "error", err)
		if closeErr := svr.Close(); closeErr != nil {
			slog.Error("Server close error", "error", closeErr)
		}
		return err
	}
	return nil
}
