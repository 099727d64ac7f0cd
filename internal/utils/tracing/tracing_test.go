package tracing

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInit_StdoutExportsSpans(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	ctx := context.Background()
	shutdown, err := Init(ctx, Config{ServiceName: "natively-test", Platform: "generic", UseStdout: true, Writer: &buf})
	require.NoError(t, err)

	// Act
	_, span := otel.Tracer("test").Start(ctx, "bridge.dispatch")
	span.End()
	require.NoError(t, shutdown(ctx))

	// Assert
	assert.Contains(t, buf.String(), "bridge.dispatch")
	assert.Contains(t, buf.String(), "natively-test")
}

func TestInit_NoExporter(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
