package cluster

import "github.com/codewandler/actr-go/core/metrics"

// Metrics defines the instrumentation hooks of a cluster.
// All methods are thread-safe.
type Metrics interface {
	// Admission
	Admitted(topic string)
	Rejected(topic string)

	// Termination
	Aborted(count int)
	Drained(topic string, count int)
	AwaitDuration(topic string) metrics.Timer
}

type nopMetrics struct{}

func (nopMetrics) Admitted(string) {}
func (nopMetrics) Rejected(string) {}

func (nopMetrics) Aborted(int)                        {}
func (nopMetrics) Drained(string, int)                {}
func (nopMetrics) AwaitDuration(string) metrics.Timer { return metrics.NopTimer() }

// NopMetrics returns a no-op Metrics implementation.
func NopMetrics() Metrics { return nopMetrics{} }
