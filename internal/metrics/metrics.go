// Package metrics counts cache and backend activity for a single opz run.
//
// opz is short lived, so nothing is served over HTTP. When a metrics file is
// configured the registry is dumped in the Prometheus text format at exit,
// ready for the node_exporter textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds the counters of one process. A nil *Collector is valid
// and records nothing.
type Collector struct {
	registry *prometheus.Registry

	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	backendCalls    *prometheus.CounterVec
	backendFailures *prometheus.CounterVec
	backendDuration *prometheus.HistogramVec
}

// New creates a collector with its own registry.
func New() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "opz_cache_hits_total",
			Help: "Item listings served from the directory cache",
		}),
		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "opz_cache_misses_total",
			Help: "Item listings that required a backend call",
		}),
		backendCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "opz_backend_calls_total",
			Help: "Invocations of the secrets CLI by operation",
		}, []string{"op"}),
		backendFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "opz_backend_failures_total",
			Help: "Failed invocations of the secrets CLI by operation",
		}, []string{"op"}),
		backendDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "opz_backend_call_duration_seconds",
			Help:    "Wall time of secrets CLI invocations",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}, []string{"op"}),
	}
}

// CacheHit records a listing served from cache.
func (c *Collector) CacheHit() {
	if c == nil {
		return
	}
	c.cacheHits.Inc()
}

// CacheMiss records a listing that went to the backend.
func (c *Collector) CacheMiss() {
	if c == nil {
		return
	}
	c.cacheMisses.Inc()
}

// ObserveBackend records one backend invocation.
func (c *Collector) ObserveBackend(op string, elapsed time.Duration, err error) {
	if c == nil {
		return
	}
	c.backendCalls.WithLabelValues(op).Inc()
	c.backendDuration.WithLabelValues(op).Observe(elapsed.Seconds())
	if err != nil {
		c.backendFailures.WithLabelValues(op).Inc()
	}
}

// WriteFile dumps all metrics to path in the text exposition format.
func (c *Collector) WriteFile(path string) error {
	if c == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, c.registry)
}
