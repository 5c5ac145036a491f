package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/codewandler/actr-go/core/actor"
	"github.com/codewandler/actr-go/core/metrics"
)

type actorMetrics struct {
	messageDuration *prometheus.HistogramVec
	messagesTotal   *prometheus.CounterVec
	panicTotal      *prometheus.CounterVec
	queueDepth      *prometheus.GaugeVec
	childrenTotal   *prometheus.CounterVec
}

func NewActorMetrics(reg prometheus.Registerer) actor.Metrics {
	m := &actorMetrics{
		messageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "actor_message_duration_seconds",
			Help:      "Operate time per message in seconds",
			Buckets:   defaultBuckets,
		}, []string{"topic"}),

		messagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actor_messages_total",
			Help:      "Total number of messages processed",
		}, []string{"topic", "success"}),

		panicTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actor_panics_total",
			Help:      "Total number of recovered Operate panics",
		}, []string{"topic"}),

		queueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "actor_queue_depth",
			Help:      "Last observed queue length of an actor of the topic",
		}, []string{"topic"}),

		childrenTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actor_children_total",
			Help:      "Total number of overflow children spawned",
		}, []string{"topic"}),
	}

	reg.MustRegister(
		m.messageDuration,
		m.messagesTotal,
		m.panicTotal,
		m.queueDepth,
		m.childrenTotal,
	)

	return m
}

func (m *actorMetrics) MessageDuration(topic string) metrics.Timer {
	return newTimer(m.messageDuration.WithLabelValues(topic))
}

func (m *actorMetrics) MessageProcessed(topic string, success bool) {
	m.messagesTotal.WithLabelValues(topic, boolToStr(success)).Inc()
}

func (m *actorMetrics) MessagePanic(topic string) {
	m.panicTotal.WithLabelValues(topic).Inc()
}

func (m *actorMetrics) QueueDepth(topic string, depth int) {
	m.queueDepth.WithLabelValues(topic).Set(float64(depth))
}

func (m *actorMetrics) ChildSpawned(topic string) {
	m.childrenTotal.WithLabelValues(topic).Inc()
}

var _ actor.Metrics = (*actorMetrics)(nil)
