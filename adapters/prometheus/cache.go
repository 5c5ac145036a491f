package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/codewandler/actr-go/core/cache"
)

type cacheMetrics struct {
	hits    prometheus.Counter
	misses  prometheus.Counter
	expired prometheus.Counter
	size    prometheus.Gauge
}

// NewCacheMetrics labels every series with name so several caches can share
// a registry.
func NewCacheMetrics(reg prometheus.Registerer, name string) cache.Metrics {
	labels := prometheus.Labels{"cache": name}
	m := &cacheMetrics{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "cache_hits_total",
			Help:        "Total number of cache hits",
			ConstLabels: labels,
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "cache_misses_total",
			Help:        "Total number of cache misses",
			ConstLabels: labels,
		}),
		expired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "cache_expired_total",
			Help:        "Total number of entries reclaimed after their TTL",
			ConstLabels: labels,
		}),
		size: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "cache_size",
			Help:        "Number of entries in the cache",
			ConstLabels: labels,
		}),
	}

	reg.MustRegister(m.hits, m.misses, m.expired, m.size)
	return m
}

func (m *cacheMetrics) Hit()       { m.hits.Inc() }
func (m *cacheMetrics) Miss()      { m.misses.Inc() }
func (m *cacheMetrics) Expired()   { m.expired.Inc() }
func (m *cacheMetrics) Size(n int) { m.size.Set(float64(n)) }

var _ cache.Metrics = (*cacheMetrics)(nil)
