package actor

import (
	"context"

	"github.com/codewandler/actr-go/core/cache"
)

type (
	// Node is the type-erased view of an actor used by routers and clusters.
	Node interface {
		ControlBlock() *ControlBlock
		Topic() Topic
		Priority() Priority
		WaitList() []Topic

		// TryAdmit flips the node from idle to scheduled. It returns false if
		// a run is already pending or in progress.
		TryAdmit() bool
		// Run drains the queue until it is empty, the node is terminated or
		// ctx is cancelled.
		Run(ctx context.Context)
		// Drain terminates the node and returns its unprocessed messages.
		Drain(recursive bool) []any

		Bind(r Router)
		Next() Node
		Depth() int
		ActiveCount() int
		Backlog() int
		ScheduleChain()
	}

	// Router is what an actor needs from the router it is registered with.
	Router interface {
		// RequestSchedule asks the owning cluster to run n.
		RequestSchedule(n Node)
		// NodeIdle is called after n went from active to passive.
		NodeIdle(n Node)
		// AwaitTopics blocks until every actor of the given topics is passive.
		AwaitTopics(ctx context.Context, topics []Topic) error
		IncrementCount(topic Topic)
		Lookup(topic Topic) (Node, bool)
		Cache() cache.Cache
	}
)

// Chain returns n followed by all of its descendants.
func Chain(n Node) []Node {
	var out []Node
	for it := n; it != nil; it = it.Next() {
		out = append(out, it)
	}
	return out
}

// Lookup resolves topic through r and asserts the payload type of its root
// actor.
func Lookup[T any](r interface{ Lookup(Topic) (Node, bool) }, topic Topic) (*Actor[T], bool) {
	n, ok := r.Lookup(topic)
	if !ok {
		return nil, false
	}
	a, ok := n.(*Actor[T])
	return a, ok
}
