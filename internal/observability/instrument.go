// Package observability wires the process-wide logging pipeline.
//
// Plain deployments get a text or JSON slog handler on stderr. When the "otel" format
// is selected, log records are bridged into an OpenTelemetry log pipeline instead:
// OTLP over gRPC or HTTP when an endpoint is configured through the standard
// OTEL_EXPORTER_OTLP_* environment variables, or a stdout exporter otherwise.
package observability

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/contrib/processors/minsev"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"golang.org/x/term"
)

const instrumentationName = "github.com/soukly/salla-relay"

// loggerProvider is retained for Shutdown. Nil unless the otel pipeline is active.
var loggerProvider *sdklog.LoggerProvider

// DefaultFormat picks "text" when stderr is a terminal and "json" otherwise.
func DefaultFormat() string {
	if term.IsTerminal(int(os.Stderr.Fd())) {
		return "text"
	}
	return "json"
}

// Instrument installs the default slog handler for the given level and format.
// Must be called once, before any component starts logging.
func Instrument(level slog.Level, format string) error {
	switch format {
	case "text":
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	case "json":
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	case "otel":
		provider, err := newLoggerProvider(context.Background(), level)
		if err != nil {
			return fmt.Errorf("creating logger provider: %w", err)
		}
		loggerProvider = provider
		slog.SetDefault(slog.New(otelslog.NewHandler(instrumentationName,
			otelslog.WithLoggerProvider(provider))))
	default:
		return fmt.Errorf("unsupported log format: %q", format)
	}

	return nil
}

// Shutdown flushes and stops the otel log pipeline, if one was installed.
func Shutdown(ctx context.Context) error {
	if loggerProvider == nil {
		return nil
	}
	return loggerProvider.Shutdown(ctx)
}

// newLoggerProvider builds the otel log pipeline: exporter → batch processor →
// severity filter → provider.
func newLoggerProvider(ctx context.Context, level slog.Level) (*sdklog.LoggerProvider, error) {
	exporter, err := newExporter(ctx)
	if err != nil {
		return nil, err
	}

	processor := minsev.NewLogProcessor(sdklog.NewBatchProcessor(exporter), severityFor(level))
	return sdklog.NewLoggerProvider(sdklog.WithProcessor(processor)), nil
}

// newExporter selects the log exporter from the standard OTLP environment variables.
// Without an endpoint the pipeline falls back to stdout.
func newExporter(ctx context.Context) (sdklog.Exporter, error) {
	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") == "" && os.Getenv("OTEL_EXPORTER_OTLP_LOGS_ENDPOINT") == "" {
		return stdoutlog.New()
	}

	if os.Getenv("OTEL_EXPORTER_OTLP_PROTOCOL") == "grpc" {
		return otlploggrpc.New(ctx)
	}
	return otlploghttp.New(ctx)
}

func severityFor(level slog.Level) minsev.Severity {
	switch {
	case level <= slog.LevelDebug:
		return minsev.SeverityDebug
	case level <= slog.LevelInfo:
		return minsev.SeverityInfo
	case level <= slog.LevelWarn:
		return minsev.SeverityWarn
	default:
		return minsev.SeverityError
	}
}
