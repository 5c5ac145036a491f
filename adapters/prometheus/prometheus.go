// Package prometheus provides Prometheus implementations of the metrics
// interfaces of the actor, pool, cluster and cache packages.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/codewandler/actr-go/core/metrics"
)

const namespace = "actr"

// timer wraps a Prometheus histogram to implement the Timer interface.
type timer struct {
	h     prometheus.Observer
	start time.Time
}

func newTimer(h prometheus.Observer) metrics.Timer {
	return &timer{h: h, start: time.Now()}
}

func (t *timer) ObserveDuration() {
	t.h.Observe(time.Since(t.start).Seconds())
}

// Default histogram buckets for latency metrics (in seconds).
var defaultBuckets = []float64{
	.0001, .0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5,
}

func boolToStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// AllMetrics bundles every implementation registered on one registry.
type AllMetrics struct {
	Actor   *actorMetrics
	Pool    *poolMetrics
	Cluster *clusterMetrics
	Cache   *cacheMetrics
}

// NewAllMetrics registers the metrics of all packages on reg. cacheName
// labels the cache metrics.
func NewAllMetrics(reg prometheus.Registerer, cacheName string) *AllMetrics {
	return &AllMetrics{
		Actor:   NewActorMetrics(reg).(*actorMetrics),
		Pool:    NewPoolMetrics(reg).(*poolMetrics),
		Cluster: NewClusterMetrics(reg).(*clusterMetrics),
		Cache:   NewCacheMetrics(reg, cacheName).(*cacheMetrics),
	}
}
