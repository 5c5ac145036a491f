package cluster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/codewandler/actr-go/core/actor"
	"github.com/codewandler/actr-go/core/cache"
	"github.com/codewandler/actr-go/core/pool"
	"github.com/codewandler/actr-go/ports/kv"
)

// PoolBacklogKey holds the runs a permanent termination forcibly removed
// from the pool.
const PoolBacklogKey actor.Topic = "pool_waiting_queue"

const (
	DefaultShutdownTimeout  = time.Second
	DefaultPropagationDelay = 5 * time.Millisecond
)

type Options struct {
	Name string
	// Daemon clusters are terminated without awaiting their topics on
	// application shutdown.
	Daemon bool
	Pool   pool.Options
	// ShutdownTimeout bounds the graceful pool shutdown of a permanent
	// termination.
	ShutdownTimeout time.Duration
	// PropagationDelay is slept between aborting runs and draining.
	PropagationDelay time.Duration
	// Cache defaults to an unbounded cache.Delayed.
	Cache cache.Cache
	// Archive receives the leftovers of every termination if set.
	Archive kv.Store
	Log     *slog.Logger
	Metrics Metrics
}

// Cluster owns the worker pool, the router and the cache. It is the only
// component submitting actors to the pool.
type Cluster struct {
	cb      *actor.ControlBlock
	name    string
	daemon  bool
	log     *slog.Logger
	metrics Metrics

	router  *Router
	pool    *pool.Pool
	cache   cache.Cache
	archive kv.Store

	shutdownTimeout  time.Duration
	propagationDelay time.Duration

	poolMu     sync.Mutex
	inFlight   map[actor.Topic][]*pool.Handle
	paused     bool
	deferred   []actor.Node
	terminated bool

	idleMu sync.Mutex
	idle   chan struct{}
}

func New(opts Options) (*Cluster, error) {
	if opts.Name == "" {
		opts.Name = fmt.Sprintf("cluster-%s", gonanoid.Must(6))
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = NopMetrics()
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = DefaultShutdownTimeout
	}
	if opts.PropagationDelay < 0 {
		opts.PropagationDelay = 0
	} else if opts.PropagationDelay == 0 {
		opts.PropagationDelay = DefaultPropagationDelay
	}

	log := opts.Log.With(slog.String("cluster", opts.Name))

	if opts.Pool.Log == nil {
		opts.Pool.Log = log
	}
	p, err := pool.New(opts.Pool)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if opts.Cache == nil {
		opts.Cache = cache.NewDelayed(cache.DelayedOpts{Log: log})
	}

	c := &Cluster{
		cb:               actor.NewControlBlock(actor.KindCluster, true),
		name:             opts.Name,
		daemon:           opts.Daemon,
		log:              log,
		metrics:          opts.Metrics,
		pool:             p,
		cache:            opts.Cache,
		archive:          opts.Archive,
		shutdownTimeout:  opts.ShutdownTimeout,
		propagationDelay: opts.PropagationDelay,
		inFlight:         make(map[actor.Topic][]*pool.Handle),
		idle:             make(chan struct{}),
	}
	c.router = newRouter(c, log)
	c.cb.SetStatus(actor.StatusActive)

	log.Debug(
		"cluster created",
		slog.String("pool", string(p.Kind())),
		slog.Int("size", p.Size()),
		slog.Bool("daemon", opts.Daemon),
	)

	return c, nil
}

func (c *Cluster) Name() string                      { return c.name }
func (c *Cluster) Daemon() bool                      { return c.daemon }
func (c *Cluster) ControlBlock() *actor.ControlBlock { return c.cb }
func (c *Cluster) Router() *Router                   { return c.router }
func (c *Cluster) Cache() cache.Cache                { return c.cache }
func (c *Cluster) Pool() *pool.Pool                  { return c.pool }

// AddRootActor registers n under its topic.
func (c *Cluster) AddRootActor(n actor.Node) error {
	c.poolMu.Lock()
	terminated := c.terminated
	c.poolMu.Unlock()
	if terminated {
		return ErrClusterTerminated
	}

	if err := c.router.Register(n); err != nil {
		if errors.Is(err, ErrRouterDrained) {
			return ErrClusterTerminated
		}
		return err
	}
	return nil
}

// nodeTask runs an admitted node on the pool.
type nodeTask struct {
	node actor.Node
}

func (t nodeTask) Run(ctx context.Context) { t.node.Run(ctx) }
func (t nodeTask) Priority() int           { return t.node.Priority().Rank() }

// ExecuteNode admits n and submits it to the pool unless a run of n is
// already pending or in progress.
func (c *Cluster) ExecuteNode(n actor.Node) {
	topic := n.Topic()

	c.poolMu.Lock()
	defer c.poolMu.Unlock()

	if c.terminated {
		c.metrics.Rejected(string(topic))
		c.log.Debug("admission after termination", slog.String("topic", string(topic)))
		return
	}
	if !n.TryAdmit() {
		c.metrics.Rejected(string(topic))
		return
	}
	c.metrics.Admitted(string(topic))

	if c.paused {
		c.deferred = append(c.deferred, n)
		return
	}
	c.submit(n)
}

// submit must be called with c.poolMu held.
func (c *Cluster) submit(n actor.Node) {
	topic := n.Topic()

	h, err := c.pool.Submit(nodeTask{node: n})
	if err != nil {
		c.log.Error("submit failed", slog.String("topic", string(topic)), slog.Any("error", err))
		release(n)
		return
	}

	handles := c.inFlight[topic][:0]
	for _, old := range c.inFlight[topic] {
		if !old.IsDone() {
			handles = append(handles, old)
		}
	}
	c.inFlight[topic] = append(handles, h)
}

// release ends the admission of a node that will not run.
func release(n actor.Node) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	go n.Run(ctx)
}

// Pause defers pool submission of admitted actors until Resume.
func (c *Cluster) Pause() {
	c.poolMu.Lock()
	defer c.poolMu.Unlock()
	c.paused = true
}

// Resume submits the actors admitted while paused.
func (c *Cluster) Resume() {
	c.poolMu.Lock()
	defer c.poolMu.Unlock()

	c.paused = false
	deferred := c.deferred
	c.deferred = nil
	for _, n := range deferred {
		c.submit(n)
	}
}

// InFlight is the number of pending or running tasks of topic.
func (c *Cluster) InFlight(topic actor.Topic) int {
	c.poolMu.Lock()
	defer c.poolMu.Unlock()

	n := 0
	for _, h := range c.inFlight[topic] {
		if !h.IsDone() {
			n++
		}
	}
	return n
}

// AbortTasks cancels every in-flight run. Runs stop at the next message
// boundary and keep their remaining messages. It returns the number of
// cancelled tasks.
func (c *Cluster) AbortTasks() int {
	c.poolMu.Lock()
	n := c.abortLocked()
	c.poolMu.Unlock()
	return n
}

func (c *Cluster) abortLocked() int {
	n := 0
	for topic, handles := range c.inFlight {
		for _, h := range handles {
			if !h.IsDone() {
				h.Cancel()
				n++
			}
		}
		delete(c.inFlight, topic)
	}

	for _, node := range c.deferred {
		release(node)
		n++
	}
	c.deferred = nil

	c.metrics.Aborted(n)
	return n
}

// TerminateCluster aborts all runs, waits for the cancellation to propagate
// and drains every topic. A permanent termination also shuts down the pool
// and the cache; runs the pool could not finish in time are returned under
// PoolBacklogKey.
func (c *Cluster) TerminateCluster(ctx context.Context, permanent, verbose bool) Leftovers {
	c.poolMu.Lock()
	c.terminated = true
	aborted := c.abortLocked()
	c.poolMu.Unlock()

	if verbose {
		c.log.Info("aborted tasks", slog.Int("count", aborted))
	}

	if c.propagationDelay > 0 {
		select {
		case <-ctx.Done():
			c.log.Warn("propagation delay interrupted", slog.Any("error", ctx.Err()))
		case <-time.After(c.propagationDelay):
		}
	}

	leftovers := c.router.DrainAll()
	for topic, msgs := range leftovers {
		c.metrics.Drained(string(topic), len(msgs))
	}

	if permanent {
		sctx, cancel := context.WithTimeout(ctx, c.shutdownTimeout)
		backlog := c.pool.Shutdown(sctx)
		cancel()

		if len(backlog) > 0 {
			nodes := make([]any, 0, len(backlog))
			for _, t := range backlog {
				if nt, ok := t.(nodeTask); ok {
					nodes = append(nodes, nt.node)
				} else {
					nodes = append(nodes, t)
				}
			}
			leftovers[PoolBacklogKey] = nodes
		}
		c.cache.Close()
	}

	c.cb.SetStatus(actor.StatusPassive)
	c.signalIdle()

	c.archiveLeftovers(ctx, leftovers)

	if verbose {
		c.log.Info(
			"cluster terminated",
			slog.Bool("permanent", permanent),
			slog.Int("topics", len(leftovers)),
			slog.Int("leftovers", leftovers.Count()),
		)
	}
	return leftovers
}

// TerminateTopic drains the chain of topic without touching other topics.
func (c *Cluster) TerminateTopic(topic actor.Topic) ([]any, error) {
	msgs, err := c.router.TerminateTopic(topic)
	if err != nil {
		return nil, err
	}
	c.metrics.Drained(string(topic), len(msgs))
	return msgs, nil
}

func (c *Cluster) idleSignal() <-chan struct{} {
	c.idleMu.Lock()
	defer c.idleMu.Unlock()
	return c.idle
}

// signalIdle wakes everyone waiting for an actor to become passive.
func (c *Cluster) signalIdle() {
	c.idleMu.Lock()
	close(c.idle)
	c.idle = make(chan struct{})
	c.idleMu.Unlock()
}

// AwaitTermination blocks until every actor of topic is passive or ctx ends.
func (c *Cluster) AwaitTermination(ctx context.Context, topic actor.Topic, verbose bool) error {
	root, ok := c.router.Lookup(topic)
	if !ok {
		return fmt.Errorf("%w: %s", ErrInvalidTopic, topic)
	}

	timer := c.metrics.AwaitDuration(string(topic))
	defer timer.ObserveDuration()

	start := time.Now()
	for {
		wake := c.idleSignal()
		if chainPassive(root) {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("await %s: %w", topic, ctx.Err())
		case <-wake:
		}
	}

	if verbose {
		c.log.Info(
			"all tasks done",
			slog.String("topic", string(topic)),
			slog.Int("actors", root.Depth()),
			slog.Duration("took", time.Since(start)),
		)
	}
	return nil
}

// AwaitTerminationAll awaits every registered topic concurrently.
func (c *Cluster) AwaitTerminationAll(ctx context.Context, verbose bool) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, topic := range c.router.Topics() {
		g.Go(func() error {
			err := c.AwaitTermination(gctx, topic, verbose)
			if errors.Is(err, ErrInvalidTopic) {
				return nil
			}
			return err
		})
	}
	return g.Wait()
}

func chainPassive(root actor.Node) bool {
	for _, n := range actor.Chain(root) {
		if n.ControlBlock().IsActive() {
			return false
		}
	}
	return true
}

// NodeCount is the number of actors created for topic.
func (c *Cluster) NodeCount(topic actor.Topic) int { return c.router.NodeCount(topic) }

// ActiveCount is the number of active actors in the chain of topic.
func (c *Cluster) ActiveCount(topic actor.Topic) int {
	root, ok := c.router.Lookup(topic)
	if !ok {
		return 0
	}
	return root.ActiveCount()
}
