package docstore

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	readsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wanderlink_docstore_reads_total",
		Help: "Document reads by backend.",
	}, []string{"backend"})
	writesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wanderlink_docstore_writes_total",
		Help: "Document writes (unconditional and CAS) by backend.",
	}, []string{"backend"})
	casConflictsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wanderlink_docstore_cas_conflicts_total",
		Help: "Compare-and-swap version conflicts by backend.",
	}, []string{"backend"})
)

// WithMetrics wraps a store so every operation feeds the prometheus
// counters. Watch passes through when the inner store supports it.
func WithMetrics(inner Store, backend string) Store {
	return &metricsStore{inner: inner, backend: backend}
}

type metricsStore struct {
	inner   Store
	backend string
}

func (m *metricsStore) Read(ctx context.Context, name string) (*Document, error) {
	readsTotal.WithLabelValues(m.backend).Inc()
	return m.inner.Read(ctx, name)
}

func (m *metricsStore) Write(ctx context.Context, name string, value []byte) (uint64, error) {
	writesTotal.WithLabelValues(m.backend).Inc()
	return m.inner.Write(ctx, name, value)
}

func (m *metricsStore) CompareAndSwap(ctx context.Context, name string, value []byte, expect uint64) (uint64, error) {
	writesTotal.WithLabelValues(m.backend).Inc()
	v, err := m.inner.CompareAndSwap(ctx, name, value, expect)
	if err == ErrVersionMismatch {
		casConflictsTotal.WithLabelValues(m.backend).Inc()
	}
	return v, err
}

func (m *metricsStore) Remove(ctx context.Context, name string) error {
	return m.inner.Remove(ctx, name)
}

func (m *metricsStore) List(ctx context.Context, prefix string) ([]string, error) {
	return m.inner.List(ctx, prefix)
}

func (m *metricsStore) Close() error { return m.inner.Close() }

// Watch delegates to the inner store when it is a Watcher.
func (m *metricsStore) Watch(ctx context.Context) (Feed, error) {
	if w, ok := m.inner.(Watcher); ok {
		return w.Watch(ctx)
	}
	return nil, ErrWatchUnsupported
}
