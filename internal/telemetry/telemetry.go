// Package telemetry installs an OpenTelemetry tracer provider that writes
// spans as JSON to a file. Without Setup the global no-op provider is used.
package telemetry

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Setup exports spans to path and returns a shutdown func that flushes them
// and closes the file. An empty path installs nothing.
func Setup(path string) (func(context.Context) error, error) {
	if path == "" {
		return func(context.Context) error { return nil }, nil
	}
	fh, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create trace file: %w", err)
	}
	exp, err := stdouttrace.New(stdouttrace.WithWriter(fh))
	if err != nil {
		_ = fh.Close()
		return nil, fmt.Errorf("trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp))
	otel.SetTracerProvider(tp)

	return func(ctx context.Context) error {
		err := tp.Shutdown(ctx)
		if cerr := fh.Close(); err == nil {
			err = cerr
		}
		return err
	}, nil
}
