package telemetry

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestSetupWritesSpans(t *testing.T) {
	prev := otel.GetTracerProvider()
	defer otel.SetTracerProvider(prev)

	fn := filepath.Join(t.TempDir(), "trace.json")
	shutdown, err := Setup(fn)
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "unit-span")
	span.End()
	require.NoError(t, shutdown(context.Background()))

	data, err := os.ReadFile(fn)
	require.NoError(t, err)
	assert.Contains(t, string(data), "unit-span")
}

func TestSetupEmptyPathIsNoop(t *testing.T) {
	shutdown, err := Setup("")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
