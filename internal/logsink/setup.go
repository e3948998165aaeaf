package logsink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// ShutdownFunc flushes and stops whatever Setup started.
type ShutdownFunc func(context.Context) error

// Setup installs the default slog logger: JSON on stderr, plus the append
// blob sink and the OpenTelemetry bridge when they are configured.
func Setup(ctx context.Context, cfg Config) (ShutdownFunc, error) {
	return setup(ctx, cfg, os.Stderr)
}

func setup(ctx context.Context, cfg Config, stderr io.Writer) (ShutdownFunc, error) {
	handlers := fanout{slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: cfg.Level})}
	var closers []ShutdownFunc
	shutdown := func(ctx context.Context) error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i](ctx))
		}
		return errors.Join(errs...)
	}

	if cfg.Blob.Enabled() {
		bh, err := NewBlobHandler(ctx, cfg.Blob, cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("failed to create blob log sink: %w", err)
		}
		handlers = append(handlers, bh)
		closers = append(closers, func(context.Context) error { return bh.Close() })
	}

	if cfg.OTLPEndpoint != "" {
		res := resource.NewSchemaless(attribute.String("service.name", cfg.ServiceName))

		logExporter, err := otlploghttp.New(ctx)
		if err != nil {
			_ = shutdown(ctx)
			return nil, fmt.Errorf("failed to create otlp log exporter: %w", err)
		}
		lp := sdklog.NewLoggerProvider(
			sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter)),
			sdklog.WithResource(res),
		)
		global.SetLoggerProvider(lp)
		closers = append(closers, lp.Shutdown)

		traceExporter, err := otlptracehttp.New(ctx)
		if err != nil {
			_ = shutdown(ctx)
			return nil, fmt.Errorf("failed to create otlp trace exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(traceExporter),
			sdktrace.WithResource(res),
		)
		otel.SetTracerProvider(tp)
		closers = append(closers, tp.Shutdown)

		handlers = append(handlers, otelslog.NewHandler(cfg.ServiceName, otelslog.WithLoggerProvider(lp)))
	}

	var h slog.Handler = handlers
	if len(handlers) == 1 {
		h = handlers[0]
	}
	slog.SetDefault(slog.New(h).With("service", cfg.ServiceName))
	return shutdown, nil
}
