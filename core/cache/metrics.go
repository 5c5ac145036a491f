package cache

// Metrics defines the instrumentation hooks of the cache implementations.
// All methods are thread-safe.
type Metrics interface {
	Hit()
	Miss()
	// Expired is called when the reclaimer evicts an entry whose TTL elapsed.
	Expired()
	Size(n int)
}

type nopMetrics struct{}

func (nopMetrics) Hit()     {}
func (nopMetrics) Miss()    {}
func (nopMetrics) Expired() {}
func (nopMetrics) Size(int) {}

// NopMetrics returns a Metrics implementation that records nothing.
func NopMetrics() Metrics { return nopMetrics{} }
