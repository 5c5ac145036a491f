package actor

import "github.com/codewandler/actr-go/core/metrics"

// Metrics defines the instrumentation hooks of an actor chain.
// All methods are thread-safe.
type Metrics interface {
	// Message handling
	MessageDuration(topic string) metrics.Timer
	MessageProcessed(topic string, success bool)
	MessagePanic(topic string)

	// Queue
	QueueDepth(topic string, depth int)

	// Overflow chain
	ChildSpawned(topic string)
}

type nopMetrics struct{}

func (nopMetrics) MessageDuration(string) metrics.Timer { return metrics.NopTimer() }
func (nopMetrics) MessageProcessed(string, bool)        {}
func (nopMetrics) MessagePanic(string)                  {}

func (nopMetrics) QueueDepth(string, int) {}

func (nopMetrics) ChildSpawned(string) {}

// NopMetrics returns a no-op Metrics implementation.
func NopMetrics() Metrics { return nopMetrics{} }
