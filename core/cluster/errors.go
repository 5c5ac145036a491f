package cluster

import "errors"

var (
	// Registration errors
	ErrOccupiedTopic = errors.New("topic already occupied")
	ErrInvalidTopic  = errors.New("invalid topic")

	// Lifecycle errors
	ErrClusterTerminated = errors.New("cluster terminated")
	ErrRouterDrained     = errors.New("router drained")
)
