// Package metrics holds the prometheus collectors of the dashboard backend.
// A nil *Metrics is valid and records nothing, so stores can be built without one.
package metrics

import (
	"context"

	"aquadash/internal/kv"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	LoginAttempts   *prometheus.CounterVec
	KVWrites        *prometheus.CounterVec
	TelemetryEvents *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		LoginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aquadash",
			Name:      "login_attempts_total",
			Help:      "Login attempts per credential provider and outcome.",
		}, []string{"provider", "result"}),
		KVWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aquadash",
			Name:      "kv_writes_total",
			Help:      "Writes issued to the key-value store per key and operation.",
		}, []string{"key", "op"}),
		TelemetryEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aquadash",
			Name:      "telemetry_events_total",
			Help:      "Data collection events per consent category, recorded or dropped.",
		}, []string{"category", "outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.LoginAttempts, m.KVWrites, m.TelemetryEvents)
	}
	return m
}

func (m *Metrics) ObserveLogin(provider string, ok bool) {
	if m == nil {
		return
	}
	m.LoginAttempts.WithLabelValues(provider, outcome(ok, "success", "failure")).Inc()
}

func (m *Metrics) ObserveTelemetry(category string, recorded bool) {
	if m == nil {
		return
	}
	m.TelemetryEvents.WithLabelValues(category, outcome(recorded, "recorded", "dropped")).Inc()
}

func outcome(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}

type instrumented struct {
	kv.Store
	m *Metrics
}

// InstrumentKV counts every successful Set and Remove issued through s.
func InstrumentKV(s kv.Store, m *Metrics) kv.Store {
	if m == nil {
		return s
	}
	return &instrumented{Store: s, m: m}
}

func (i *instrumented) Set(ctx context.Context, key string, value []byte) error {
	if err := i.Store.Set(ctx, key, value); err != nil {
		return err
	}
	i.m.KVWrites.WithLabelValues(key, "set").Inc()
	return nil
}

func (i *instrumented) Remove(ctx context.Context, key string) error {
	if err := i.Store.Remove(ctx, key); err != nil {
		return err
	}
	i.m.KVWrites.WithLabelValues(key, "remove").Inc()
	return nil
}
