package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func restoreGlobals(t *testing.T) {
	t.Helper()
	prevTP := otel.GetTracerProvider()
	prevProp := otel.GetTextMapPropagator()
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})
}

func TestInitTracer_DisabledStillInstallsPropagator(t *testing.T) {
	restoreGlobals(t)

	shutdown, err := InitTracer(context.Background(), DefaultConfig("catalog-service"))
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))

	assert.ElementsMatch(t, []string{"traceparent", "tracestate", "baggage"}, otel.GetTextMapPropagator().Fields())
}

func TestInitTracer_Enabled(t *testing.T) {
	restoreGlobals(t)

	for _, rate := range []float64{1, 0.5, 0} {
		cfg := DefaultConfig("catalog-service")
		cfg.Enabled = true
		cfg.OTLPEndpoint = "127.0.0.1:0"
		cfg.SampleRate = rate

		shutdown, err := InitTracer(context.Background(), cfg)
		require.NoError(t, err)

		_, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider)
		assert.True(t, ok, "rate %v", rate)

		// Nothing was recorded, so the flush does not reach the endpoint.
		_ = shutdown(context.Background())
	}
}

func TestSampler(t *testing.T) {
	assert.Contains(t, Sampler(1).Description(), "root:AlwaysOnSampler")
	assert.Contains(t, Sampler(2).Description(), "root:AlwaysOnSampler")
	assert.Contains(t, Sampler(0).Description(), "root:AlwaysOffSampler")
	assert.Contains(t, Sampler(-1).Description(), "root:AlwaysOffSampler")
	assert.Contains(t, Sampler(0.25).Description(), "TraceIDRatioBased{0.25}")
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("catalog-service")
	assert.Equal(t, "catalog-service", cfg.ServiceName)
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 1.0, cfg.SampleRate)
	assert.Equal(t, "localhost:4318", cfg.OTLPEndpoint)
}

func TestTracer(t *testing.T) {
	_, span := Tracer("catalog").Start(context.Background(), "op")
	defer span.End()
	assert.NotNil(t, span)
}
