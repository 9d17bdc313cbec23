// Package metrics implements the observability hooks with Prometheus
// collectors.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "stackarray"

// Metrics holds the collectors. It implements observability.PipelineHooks,
// observability.CacheHooks and observability.StoreHooks.
type Metrics struct {
	reg *prometheus.Registry

	computes        *prometheus.CounterVec
	computeDuration *prometheus.HistogramVec
	items           *prometheus.HistogramVec
	encodes         *prometheus.CounterVec
	encodeBytes     *prometheus.CounterVec
	cache           *prometheus.CounterVec
	cacheBytes      *prometheus.CounterVec
	storeOps        *prometheus.CounterVec
	storeDuration   *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg. A nil reg gets a
// fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		reg: reg,
		computes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "computes_total",
			Help:      "Array evaluations by kind and result.",
		}, []string{"kind", "result"}),
		computeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "compute_duration_seconds",
			Help:      "Time spent building and evaluating an array.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"kind"}),
		items: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "items",
			Help:      "Items produced per evaluation.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"kind"}),
		encodes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifacts_total",
			Help:      "Encoded artifacts by format and result.",
		}, []string{"format", "result"}),
		encodeBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifact_bytes_total",
			Help:      "Bytes of encoded artifacts.",
		}, []string{"format"}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_events_total",
			Help:      "Cache hits, misses and sets by key type.",
		}, []string{"key_type", "event"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_set_bytes_total",
			Help:      "Bytes written to the cache.",
		}, []string{"key_type"}),
		storeOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Array store operations by backend, operation and result.",
		}, []string{"backend", "op", "result"}),
		storeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_operation_duration_seconds",
			Help:      "Latency of array store operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"backend", "op"}),
	}
	reg.MustRegister(
		m.computes, m.computeDuration, m.items,
		m.encodes, m.encodeBytes,
		m.cache, m.cacheBytes,
		m.storeOps, m.storeDuration,
	)
	return m
}

// Registry returns the registry the collectors are registered with.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

func (m *Metrics) OnComputeStart(context.Context, string, string) {}

func (m *Metrics) OnComputeComplete(_ context.Context, _, kind string, items int, d time.Duration, err error) {
	m.computes.WithLabelValues(kind, result(err)).Inc()
	if err != nil {
		return
	}
	m.computeDuration.WithLabelValues(kind).Observe(d.Seconds())
	m.items.WithLabelValues(kind).Observe(float64(items))
}

func (m *Metrics) OnEncode(_ context.Context, format string, size int, _ time.Duration, err error) {
	m.encodes.WithLabelValues(format, result(err)).Inc()
	if err == nil {
		m.encodeBytes.WithLabelValues(format).Add(float64(size))
	}
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cache.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cache.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cache.WithLabelValues(keyType, "set").Inc()
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (m *Metrics) OnStoreOp(_ context.Context, backend, op string, d time.Duration, err error) {
	m.storeOps.WithLabelValues(backend, op, result(err)).Inc()
	m.storeDuration.WithLabelValues(backend, op).Observe(d.Seconds())
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
