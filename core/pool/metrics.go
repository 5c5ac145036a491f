package pool

import "github.com/codewandler/actr-go/core/metrics"

// Metrics defines the instrumentation hooks of a Pool.
// All methods are thread-safe.
type Metrics interface {
	Inflight(count int)
	Queued(count int)
	TaskDuration() metrics.Timer
	TaskCompleted(success bool)
}

type nopMetrics struct{}

func (nopMetrics) Inflight(int)                {}
func (nopMetrics) Queued(int)                  {}
func (nopMetrics) TaskDuration() metrics.Timer { return metrics.NopTimer() }
func (nopMetrics) TaskCompleted(bool)          {}

// NopMetrics returns a no-op Metrics implementation.
func NopMetrics() Metrics { return nopMetrics{} }
