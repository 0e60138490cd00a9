package metrics

import (
	"context"
	"testing"

	"aquadash/internal/kv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumentKVCountsWrites(t *testing.T) {
	ctx := context.Background()
	m := New(prometheus.NewRegistry())
	s := InstrumentKV(kv.NewMemory(), m)

	require.NoError(t, s.Set(ctx, kv.KeyNotes, []byte("[]")))
	require.NoError(t, s.Set(ctx, kv.KeyNotes, []byte("[]")))
	require.NoError(t, s.Remove(ctx, kv.KeyAuth))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.KVWrites.WithLabelValues(kv.KeyNotes, "set")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.KVWrites.WithLabelValues(kv.KeyAuth, "remove")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveLogin("demo", true)
	m.ObserveTelemetry("marketing", false)

	base := kv.NewMemory()
	assert.Same(t, base, InstrumentKV(base, m).(*kv.Memory))
}

func TestObserveLoginAndTelemetry(t *testing.T) {
	m := New(nil)
	m.ObserveLogin("remote", false)
	m.ObserveLogin("demo", true)
	m.ObserveTelemetry("analytics", true)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoginAttempts.WithLabelValues("remote", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoginAttempts.WithLabelValues("demo", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TelemetryEvents.WithLabelValues("analytics", "recorded")))
}
