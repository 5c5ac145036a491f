package cluster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/codewandler/actr-go/core/actor"
	"github.com/codewandler/actr-go/core/cache"
	"github.com/codewandler/actr-go/core/ds"
)

// Leftovers maps a topic to the messages its actors never processed.
type Leftovers map[actor.Topic][]any

// Count is the total number of leftover entries.
func (l Leftovers) Count() int {
	n := 0
	for _, msgs := range l {
		n += len(msgs)
	}
	return n
}

// Router maps topics to their root actors and relays run requests to the
// owning cluster.
type Router struct {
	cb      *actor.ControlBlock
	log     *slog.Logger
	cluster *Cluster

	mu      sync.RWMutex
	roots   map[actor.Topic]actor.Node
	topics  *ds.Set[actor.Topic]
	drained bool

	// counts is updated from inside actor admission and has its own lock.
	countMu sync.Mutex
	counts  map[actor.Topic]int
}

func newRouter(c *Cluster, log *slog.Logger) *Router {
	r := &Router{
		cb:      actor.NewControlBlock(actor.KindRouter, true),
		cluster: c,
		roots:   make(map[actor.Topic]actor.Node),
		topics:  ds.NewSet[actor.Topic](),
		counts:  make(map[actor.Topic]int),
	}
	r.log = log.With(slog.String("router", r.cb.ID()))
	r.cb.SetStatus(actor.StatusActive)
	return r
}

func (r *Router) ControlBlock() *actor.ControlBlock { return r.cb }

// Register binds n to the router under its topic.
func (r *Router) Register(n actor.Node) error {
	topic := n.Topic()
	if topic == "" {
		return fmt.Errorf("%w: empty", ErrInvalidTopic)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.drained {
		return ErrRouterDrained
	}
	if _, ok := r.roots[topic]; ok {
		return fmt.Errorf("%w: %s", ErrOccupiedTopic, topic)
	}

	n.ControlBlock().SetRoot(true)
	n.Bind(r)
	r.roots[topic] = n
	r.topics.Add(topic)

	r.countMu.Lock()
	r.counts[topic] = n.Depth()
	r.countMu.Unlock()

	r.log.Debug("registered root actor", slog.String("topic", string(topic)), slog.String("actor", n.ControlBlock().ID()))
	return nil
}

func (r *Router) Lookup(topic actor.Topic) (actor.Node, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.roots[topic]
	return n, ok
}

func (r *Router) Exists(topic actor.Topic) bool {
	_, ok := r.Lookup(topic)
	return ok
}

// Topics returns the registered topics in registration order.
func (r *Router) Topics() []actor.Topic {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.topics.Values()
}

// NodeCount is the number of actors ever created for topic, the root
// included.
func (r *Router) NodeCount(topic actor.Topic) int {
	r.countMu.Lock()
	defer r.countMu.Unlock()
	return r.counts[topic]
}

func (r *Router) IncrementCount(topic actor.Topic) {
	r.countMu.Lock()
	defer r.countMu.Unlock()
	if _, ok := r.counts[topic]; ok {
		r.counts[topic]++
	}
}

func (r *Router) RequestSchedule(n actor.Node) { r.cluster.ExecuteNode(n) }
func (r *Router) NodeIdle(actor.Node)          { r.cluster.signalIdle() }
func (r *Router) Cache() cache.Cache           { return r.cluster.cache }

// AwaitTopics waits for each topic in turn. Unknown topics are skipped.
func (r *Router) AwaitTopics(ctx context.Context, topics []actor.Topic) error {
	for _, topic := range topics {
		err := r.cluster.AwaitTermination(ctx, topic, false)
		switch {
		case err == nil:
		case errors.Is(err, ErrInvalidTopic):
			r.log.Warn("wait list names unknown topic", slog.String("topic", string(topic)))
		default:
			return err
		}
	}
	return nil
}

// TerminateTopic drains the chain of topic. The topic stays registered.
func (r *Router) TerminateTopic(topic actor.Topic) ([]any, error) {
	n, ok := r.Lookup(topic)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTopic, topic)
	}
	return n.Drain(true), nil
}

// DrainAll terminates every registered chain and clears the registry. A
// drained router rejects further registrations.
func (r *Router) DrainAll() Leftovers {
	r.mu.Lock()
	roots := r.roots
	topics := r.topics.Values()
	r.roots = make(map[actor.Topic]actor.Node)
	r.topics = ds.NewSet[actor.Topic]()
	r.drained = true
	r.mu.Unlock()

	r.countMu.Lock()
	r.counts = make(map[actor.Topic]int)
	r.countMu.Unlock()

	// drain outside r.mu
	out := make(Leftovers, len(topics))
	for _, topic := range topics {
		out[topic] = roots[topic].Drain(true)
	}

	r.cb.SetStatus(actor.StatusPassive)
	return out
}

var _ actor.Router = (*Router)(nil)
