package observability

import (
	"context"
	"testing"
	"time"

	"infomaniak-workers/internal/common/config"
	"infomaniak-workers/internal/common/infomaniak"
	"infomaniak-workers/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservability_RecordExecution(t *testing.T) {
	obs := New("infomaniak-workers-test", logger.NewTestLogger(t))
	defer obs.Shutdown()

	hook := obs.Hook()
	assert.NotPanics(t, func() {
		hook(context.Background(), infomaniak.Execution{
			Node: "meeting", Resource: "Rooms", Operation: "Create A Room",
			ItemCount: 1, Duration: 20 * time.Millisecond,
		})
		hook(context.Background(), infomaniak.Execution{
			Node: "meeting", Resource: "Rooms", Operation: "Create A Room",
			Err: assert.AnError,
		})
	})
}

func TestObservability_ZeroValueIsSafe(t *testing.T) {
	var obs Observability
	assert.NotPanics(t, func() {
		obs.RecordExecution(context.Background(), infomaniak.Execution{Node: "ai-tools"})
		obs.Shutdown()
	})
}

func TestNewTracer(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		tracer, err := NewTracer(config.ObservabilityConfig{}, "1.0.0")
		require.NoError(t, err)
		assert.False(t, tracer.Enabled())
		assert.NoError(t, tracer.Shutdown(context.Background()))
	})

	t.Run("enabled", func(t *testing.T) {
		tracer, err := NewTracer(config.ObservabilityConfig{
			ServiceName:    "infomaniak-workers",
			TracingEnabled: true,
			JaegerEndpoint: "http://127.0.0.1:1/api/traces",
			SampleRatio:    0.5,
		}, "1.0.0")
		require.NoError(t, err)
		assert.True(t, tracer.Enabled())

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = tracer.Shutdown(ctx)
	})
}

func TestSampleRatio(t *testing.T) {
	assert.Equal(t, 1.0, sampleRatio(0))
	assert.Equal(t, 1.0, sampleRatio(3))
	assert.Equal(t, 0.25, sampleRatio(0.25))
}
