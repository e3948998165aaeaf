// Package logsink installs the process-wide slog handler and, when an OTLP
// collector is configured, the OpenTelemetry log and trace providers.
package logsink

import (
	"log/slog"
	"os"
	"strings"
)

type Config struct {
	ServiceName string
	Level       slog.Level
	// OTLPEndpoint enables export to a collector. The exporters read the
	// rest of their settings from the standard OTEL_* variables.
	OTLPEndpoint string
	Blob         BlobConfig
}

// BlobConfig ships JSON lines to an Azure append blob per host per day.
type BlobConfig struct {
	AccountName string
	AccountKey  string
	Container   string
}

func (b BlobConfig) Enabled() bool {
	return b.AccountName != "" && b.AccountKey != "" && b.Container != ""
}

func LoadConfig(serviceName string) Config {
	cfg := Config{
		ServiceName:  serviceName,
		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		Blob: BlobConfig{
			AccountName: os.Getenv("AZURE_STORAGE_ACCOUNT_NAME"),
			AccountKey:  os.Getenv("AZURE_STORAGE_PRIMARY_ACCOUNT_KEY"),
			Container:   os.Getenv("LOGSINK_CONTAINER"),
		},
	}
	if err := cfg.Level.UnmarshalText([]byte(strings.TrimSpace(os.Getenv("LOG_LEVEL")))); err != nil {
		cfg.Level = slog.LevelInfo
	}
	return cfg
}
