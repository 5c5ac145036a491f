// Package metrics holds the backend independent metric types shared by the
// runtime packages. adapters/prometheus provides the implementations.
package metrics

// Timer measures the duration of an operation. Call ObserveDuration when
// the operation completes to record the elapsed time.
//
//	defer m.MessageDuration(topic).ObserveDuration()
type Timer interface {
	ObserveDuration()
}
