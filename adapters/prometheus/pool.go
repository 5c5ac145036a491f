package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/codewandler/actr-go/core/metrics"
	"github.com/codewandler/actr-go/core/pool"
)

type poolMetrics struct {
	inflight     prometheus.Gauge
	queued       prometheus.Gauge
	taskDuration prometheus.Histogram
	tasksTotal   *prometheus.CounterVec
}

func NewPoolMetrics(reg prometheus.Registerer) pool.Metrics {
	m := &poolMetrics{
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pool_inflight",
			Help:      "Number of tasks currently running",
		}),

		queued: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pool_queued",
			Help:      "Number of tasks waiting for a worker",
		}),

		taskDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pool_task_duration_seconds",
			Help:      "Task run time in seconds",
			Buckets:   defaultBuckets,
		}),

		tasksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pool_tasks_total",
			Help:      "Total number of tasks completed",
		}, []string{"success"}),
	}

	reg.MustRegister(m.inflight, m.queued, m.taskDuration, m.tasksTotal)
	return m
}

func (m *poolMetrics) Inflight(count int)          { m.inflight.Set(float64(count)) }
func (m *poolMetrics) Queued(count int)            { m.queued.Set(float64(count)) }
func (m *poolMetrics) TaskDuration() metrics.Timer { return newTimer(m.taskDuration) }

func (m *poolMetrics) TaskCompleted(success bool) {
	m.tasksTotal.WithLabelValues(boolToStr(success)).Inc()
}

var _ pool.Metrics = (*poolMetrics)(nil)
