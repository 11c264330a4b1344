package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zfogg/citysearch/internal/config"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

func TestInitTracerDisabled(t *testing.T) {
	tp, err := InitTracer(config.TelemetryConfig{Enabled: false}, "test")
	require.NoError(t, err)
	assert.Nil(t, tp)
}

func TestSamplerFor(t *testing.T) {
	assert.Contains(t, samplerFor(1).Description(), "root:AlwaysOnSampler")
	assert.Contains(t, samplerFor(0).Description(), "root:AlwaysOffSampler")
	assert.Contains(t, samplerFor(0.25).Description(), "root:TraceIDRatioBased{0.25}")
}

func TestServiceResource(t *testing.T) {
	res := serviceResource("citysearch", "staging")

	name, ok := res.Set().Value(semconv.ServiceNameKey)
	require.True(t, ok)
	assert.Equal(t, "citysearch", name.AsString())

	env, ok := res.Set().Value(semconv.DeploymentEnvironmentKey)
	require.True(t, ok)
	assert.Equal(t, "staging", env.AsString())
}
