package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/codewandler/actr-go/core/cluster"
	"github.com/codewandler/actr-go/core/metrics"
)

type clusterMetrics struct {
	admissionsTotal *prometheus.CounterVec
	abortedTotal    prometheus.Counter
	drainedTotal    *prometheus.CounterVec
	awaitDuration   *prometheus.HistogramVec
}

func NewClusterMetrics(reg prometheus.Registerer) cluster.Metrics {
	m := &clusterMetrics{
		admissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cluster_admissions_total",
			Help:      "Scheduling requests by outcome",
		}, []string{"topic", "admitted"}),

		abortedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cluster_aborted_tasks_total",
			Help:      "Total number of runs cancelled by abort",
		}),

		drainedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cluster_drained_messages_total",
			Help:      "Total number of messages returned by termination",
		}, []string{"topic"}),

		awaitDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cluster_await_duration_seconds",
			Help:      "Time spent awaiting a topic to become passive",
			Buckets:   prometheus.ExponentialBuckets(.001, 4, 10),
		}, []string{"topic"}),
	}

	reg.MustRegister(m.admissionsTotal, m.abortedTotal, m.drainedTotal, m.awaitDuration)
	return m
}

func (m *clusterMetrics) Admitted(topic string) {
	m.admissionsTotal.WithLabelValues(topic, "true").Inc()
}

func (m *clusterMetrics) Rejected(topic string) {
	m.admissionsTotal.WithLabelValues(topic, "false").Inc()
}

func (m *clusterMetrics) Aborted(count int) { m.abortedTotal.Add(float64(count)) }

func (m *clusterMetrics) Drained(topic string, count int) {
	m.drainedTotal.WithLabelValues(topic).Add(float64(count))
}

func (m *clusterMetrics) AwaitDuration(topic string) metrics.Timer {
	return newTimer(m.awaitDuration.WithLabelValues(topic))
}

var _ cluster.Metrics = (*clusterMetrics)(nil)
