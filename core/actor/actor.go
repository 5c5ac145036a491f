package actor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/codewandler/actr-go/core/ds"
)

type Options[T any] struct {
	Topic    Topic
	Priority Priority
	// Division defaults to NoDivision.
	Division DivisionStrategy[T]
	// WaitList names topics that must be fully drained before any message of
	// this actor is processed.
	WaitList []Topic
	Log      *slog.Logger
	Metrics  Metrics
}

type routerRef struct {
	Router
}

// Actor owns a FIFO queue and an optional overflow child. At most one run of
// an actor is in progress at any time.
type Actor[T any] struct {
	cb       *ControlBlock
	topic    Topic
	priority Priority
	handler  Handler[T]
	division DivisionStrategy[T]
	waitList *ds.Set[Topic]
	baseLog  *slog.Logger
	log      *slog.Logger
	metrics  Metrics
	depth    int

	ref atomic.Pointer[routerRef]

	// scheduled is set from admission until the end of the run.
	scheduled atomic.Bool

	mu         sync.Mutex
	queue      []Message[T]
	queueLen   atomic.Int32
	inProgress atomic.Int32

	childMu sync.Mutex
	child   atomic.Pointer[Actor[T]]
}

// New creates a root actor. It is scheduled once it has been registered with
// a cluster.
func New[T any](opts Options[T], h Handler[T]) (*Actor[T], error) {
	if opts.Topic == "" {
		return nil, ErrEmptyTopic
	}
	if h == nil {
		return nil, ErrNilHandler
	}
	if opts.Division == nil {
		opts.Division = NoDivision[T]{}
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = NopMetrics()
	}

	return newActor(opts, h, NewControlBlock(KindWorker, true), 0), nil
}

func newActor[T any](opts Options[T], h Handler[T], cb *ControlBlock, depth int) *Actor[T] {
	return &Actor[T]{
		cb:       cb,
		topic:    opts.Topic,
		priority: opts.Priority,
		handler:  h,
		division: opts.Division,
		waitList: ds.NewSet(opts.WaitList...),
		baseLog:  opts.Log,
		log: opts.Log.With(
			slog.String("topic", string(opts.Topic)),
			slog.String("actor", cb.ID()),
			slog.Int("depth", depth),
		),
		metrics: opts.Metrics,
		depth:   depth,
	}
}

func (a *Actor[T]) ControlBlock() *ControlBlock { return a.cb }
func (a *Actor[T]) Topic() Topic                { return a.topic }
func (a *Actor[T]) Priority() Priority          { return a.priority }
func (a *Actor[T]) WaitList() []Topic           { return a.waitList.Values() }
func (a *Actor[T]) Status() Status              { return a.cb.Status() }

func (a *Actor[T]) router() Router {
	if r := a.ref.Load(); r != nil {
		return r.Router
	}
	return nil
}

// Bind attaches the actor and its descendants to r.
func (a *Actor[T]) Bind(r Router) {
	for it := a; it != nil; {
		it.childMu.Lock()
		it.ref.Store(&routerRef{r})
		next := it.child.Load()
		it.childMu.Unlock()
		it = next
	}
}

// ---- queue admission ----

// Load enqueues msg without asking for a run. Use ScheduleChain once loading
// is complete.
func (a *Actor[T]) Load(msg Message[T]) { a.LoadAll([]Message[T]{msg}) }

// LoadAll enqueues msgs without asking for a run.
func (a *Actor[T]) LoadAll(msgs []Message[T]) {
	a.admit(msgs, false)
}

// Send enqueues msg and asks the cluster to run the actor.
func (a *Actor[T]) Send(msg Message[T]) { a.SendAll([]Message[T]{msg}) }

// SendAll enqueues msgs and asks the cluster to run the actor.
func (a *Actor[T]) SendAll(msgs []Message[T]) {
	if a.admit(msgs, true) {
		a.requestSchedule()
	}
}

// admit places msgs into the local queue or hands them to the division
// strategy. It reports whether anything was queued locally.
func (a *Actor[T]) admit(msgs []Message[T], send bool) bool {
	if len(msgs) == 0 {
		return false
	}

	forward := a.division.OnLoad
	if send {
		forward = a.division.OnSend
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.division.IsOverloaded(a) {
		forward(a, msgs)
		return false
	}

	queued := false
	for i, msg := range msgs {
		if a.division.IsOverloaded(a) {
			forward(a, msgs[i:])
			break
		}
		a.queue = append(a.queue, msg)
		a.queueLen.Add(1)
		queued = true
	}

	if queued {
		a.metrics.QueueDepth(string(a.topic), len(a.queue))
	}
	return queued
}

func (a *Actor[T]) requestSchedule() {
	if a.scheduled.Load() {
		return
	}
	if r := a.router(); r != nil {
		r.RequestSchedule(a)
	}
}

// ScheduleChain asks for a run of this actor and every descendant.
func (a *Actor[T]) ScheduleChain() {
	for it := a; it != nil; it = it.child.Load() {
		it.requestSchedule()
	}
}

// TryAdmit marks the actor as scheduled and active. Only the first caller
// after a run has ended succeeds.
func (a *Actor[T]) TryAdmit() bool {
	if !a.scheduled.CompareAndSwap(false, true) {
		return false
	}
	a.cb.SetStatus(StatusActive)
	return true
}

// ---- overflow chain ----

func (a *Actor[T]) Child() *Actor[T] { return a.child.Load() }

func (a *Actor[T]) Next() Node {
	if c := a.child.Load(); c != nil {
		return c
	}
	return nil
}

// FetchChild returns the overflow child, creating it on first use.
func (a *Actor[T]) FetchChild() *Actor[T] {
	if c := a.child.Load(); c != nil {
		return c
	}

	a.childMu.Lock()
	defer a.childMu.Unlock()

	if c := a.child.Load(); c != nil {
		return c
	}

	c := newActor(Options[T]{
		Topic:    a.topic,
		Priority: a.priority,
		Division: a.division,
		WaitList: a.waitList.Values(),
		Log:      a.baseLog,
		Metrics:  a.metrics,
	}, a.handler.GenerateChild(), NewControlBlock(KindWorker, false), a.depth+1)

	r := a.router()
	if r != nil {
		c.ref.Store(&routerRef{r})
	}
	a.child.Store(c)

	if r != nil {
		r.IncrementCount(a.topic)
	}
	a.metrics.ChildSpawned(string(a.topic))
	a.log.Debug("spawned overflow actor", slog.String("child", c.cb.ID()))

	return c
}

// Depth is the length of the chain starting at this actor.
func (a *Actor[T]) Depth() int {
	n := 0
	for it := a; it != nil; it = it.child.Load() {
		n++
	}
	return n
}

// ActiveCount is the number of active actors in the chain starting at this
// actor. The value is a snapshot.
func (a *Actor[T]) ActiveCount() int {
	n := 0
	for it := a; it != nil; it = it.child.Load() {
		if it.cb.IsActive() {
			n++
		}
	}
	return n
}

// ---- queue inspection ----

func (a *Actor[T]) QueueLen() int      { return int(a.queueLen.Load()) }
func (a *Actor[T]) IsQueueEmpty() bool { return a.QueueLen() == 0 }

// Backlog is the number of queued messages plus the message currently being
// processed.
func (a *Actor[T]) Backlog() int {
	return int(a.queueLen.Load() + a.inProgress.Load())
}

// Queued returns a copy of the pending messages.
func (a *Actor[T]) Queued() []Message[T] {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Message[T], len(a.queue))
	copy(out, a.queue)
	return out
}

// ---- termination ----

// Terminate marks the actor passive and returns its pending messages,
// followed by those of its descendants when recursive is set. It may be
// called from within Operate.
func (a *Actor[T]) Terminate(recursive bool) []Message[T] {
	a.mu.Lock()
	a.cb.SetStatus(StatusPassive)
	leftover := a.queue
	a.queue = nil
	a.queueLen.Store(0)
	a.mu.Unlock()

	a.metrics.QueueDepth(string(a.topic), 0)
	a.notifyIdle()

	if recursive {
		if c := a.child.Load(); c != nil {
			leftover = append(leftover, c.Terminate(true)...)
		}
	}
	return leftover
}

func (a *Actor[T]) Drain(recursive bool) []any {
	msgs := a.Terminate(recursive)
	out := make([]any, len(msgs))
	for i, m := range msgs {
		out[i] = m
	}
	return out
}

func (a *Actor[T]) notifyIdle() {
	if r := a.router(); r != nil {
		r.NodeIdle(a)
	}
}

// ---- run loop ----

// Run processes queued messages until the queue is empty, the actor is
// terminated or ctx is cancelled. Unprocessed messages stay queued. Messages
// that arrive after a Terminate get a fresh run once this one ends.
func (a *Actor[T]) Run(ctx context.Context) {
	if err := a.awaitWaitList(ctx); err != nil {
		a.log.Warn("wait list barrier aborted", slog.Any("error", err))
	}

	rc := &runCtx[T]{Context: ctx, actor: a, log: a.log}
	for {
		msg, ok := a.next(ctx)
		if !ok {
			break
		}
		a.process(rc, msg)
	}

	if err := ctx.Err(); err != nil {
		a.log.Debug("run interrupted", slog.Any("error", err))
	} else if a.queueLen.Load() > 0 {
		// sent after a Terminate while this run was still in Operate
		a.requestSchedule()
	}
	a.notifyIdle()
}

func (a *Actor[T]) awaitWaitList(ctx context.Context) error {
	if a.waitList.IsEmpty() {
		return nil
	}

	topics := a.waitList.Filter(func(t Topic) bool {
		if t == a.topic {
			a.log.Warn("ignoring own topic in wait list")
			return false
		}
		return true
	}).Values()

	r := a.router()
	if r == nil || len(topics) == 0 {
		return nil
	}
	return r.AwaitTopics(ctx, topics)
}

// next dequeues the head of the queue. When the run has to end it resets
// the actor to passive and unscheduled under the queue lock, so a concurrent
// Send either sees the actor still running or can admit it again.
func (a *Actor[T]) next(ctx context.Context) (msg Message[T], ok bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.queue) == 0 || !a.cb.IsActive() || ctx.Err() != nil {
		a.cb.SetStatus(StatusPassive)
		a.scheduled.Store(false)
		return msg, false
	}

	msg = a.queue[0]
	var zero Message[T]
	a.queue[0] = zero
	a.queue = a.queue[1:]
	a.queueLen.Add(-1)
	a.inProgress.Store(1)

	a.metrics.QueueDepth(string(a.topic), len(a.queue))
	return msg, true
}

func (a *Actor[T]) process(rc *runCtx[T], msg Message[T]) {
	defer a.inProgress.Store(0)

	topic := string(a.topic)
	timer := a.metrics.MessageDuration(topic)
	err := a.operate(rc, msg)
	timer.ObserveDuration()

	a.metrics.MessageProcessed(topic, err == nil)
	if err != nil && !errors.Is(err, errPanicked) {
		a.log.Error("operate failed", slog.String("msg", msg.ID), slog.Any("error", err))
	}
}

var errPanicked = errors.New("operate panicked")

func (a *Actor[T]) operate(rc *runCtx[T], msg Message[T]) (err error) {
	defer func() {
		if r := recover(); r != nil {
			a.metrics.MessagePanic(string(a.topic))
			a.log.Error(
				"operate panicked",
				slog.String("msg", msg.ID),
				slog.Any("recovered", r),
				slog.String("stack", string(debug.Stack())),
			)
			err = fmt.Errorf("%w: %v", errPanicked, r)
		}
	}()
	return a.handler.Operate(rc, msg)
}

func (a *Actor[T]) String() string {
	return fmt.Sprintf("actor[%s] %s depth=%d queue=%d", a.topic, a.cb, a.depth, a.QueueLen())
}

var _ Node = (*Actor[any])(nil)
