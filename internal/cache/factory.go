package cache

import (
	"log/slog"

	"mealplanner/internal/config"
)

// MakeCache uses blob storage when an Azure account is configured and a
// directory on local disk otherwise.
func MakeCache(cfg config.CacheConfig) (ListCache, error) {
	if cfg.AzureAccountName != "" {
		slog.Info("using azure blob storage for cache", "account", cfg.AzureAccountName, "container", cfg.AzureContainer)
		return NewBlobCache(cfg.AzureAccountName, cfg.AzureAccountKey, cfg.AzureContainer)
	}
	slog.Info("using file cache", "dir", cfg.Dir)
	return NewFileCache(cfg.Dir), nil
}
