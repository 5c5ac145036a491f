package pool

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"
	"sync/atomic"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

type Kind string

const (
	// KindFixed runs tasks on a fixed number of workers in submission order.
	KindFixed Kind = "fixed"
	// KindCached starts a worker whenever no worker is idle. Workers exit once
	// the queue is empty.
	KindCached Kind = "cached"
	// KindPrioritized runs tasks on a fixed number of workers, lowest
	// priority value first.
	KindPrioritized Kind = "prioritized"
)

func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindFixed, KindCached, KindPrioritized:
		return k, nil
	case "":
		return KindFixed, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Prioritized is implemented by tasks that carry a scheduling priority.
// Lower values run first on a KindPrioritized pool.
type Prioritized interface {
	Priority() int
}

// DefaultSize is the worker count used when Options.Size is not set.
func DefaultSize() int { return 2 * runtime.NumCPU() }

type Options struct {
	Kind    Kind
	Size    int
	Log     *slog.Logger
	Metrics Metrics
}

// Pool runs submitted tasks on a set of worker goroutines.
type Pool struct {
	kind    Kind
	size    int
	log     *slog.Logger
	metrics Metrics

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	cond    *sync.Cond
	queue   taskQueue
	closed  bool
	workers int
	idle    int
	seq     uint64

	inflight atomic.Int32
	wg       sync.WaitGroup
}

func New(opts Options) (*Pool, error) {
	if opts.Kind == "" {
		opts.Kind = KindFixed
	}
	if opts.Size <= 0 {
		opts.Size = DefaultSize()
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = NopMetrics()
	}

	p := &Pool{
		kind:    opts.Kind,
		size:    opts.Size,
		log:     opts.Log.With(slog.String("pool", string(opts.Kind))),
		metrics: opts.Metrics,
	}
	p.cond = sync.NewCond(&p.mu)
	p.ctx, p.cancel = context.WithCancel(context.Background())

	switch opts.Kind {
	case KindFixed, KindCached:
		p.queue = &fifoQueue{}
	case KindPrioritized:
		p.queue = &priorityQueue{}
	default:
		p.cancel()
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, opts.Kind)
	}

	if p.kind != KindCached {
		p.mu.Lock()
		for i := 0; i < p.size; i++ {
			p.spawn()
		}
		p.mu.Unlock()
	}

	return p, nil
}

func (p *Pool) Kind() Kind { return p.kind }

// Size is the configured worker count. It is meaningless for KindCached.
func (p *Pool) Size() int { return p.size }

// Submit queues t for execution.
func (p *Pool) Submit(t Task) (*Handle, error) {
	priority := 0
	if pt, ok := t.(Prioritized); ok {
		priority = pt.Priority()
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}

	p.seq++
	ctx, cancel := context.WithCancel(p.ctx)
	h := &Handle{
		id:       gonanoid.Must(),
		task:     t,
		priority: priority,
		seq:      p.seq,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	p.queue.push(h)
	queued := p.queue.len()

	switch {
	case p.idle > 0:
		p.cond.Signal()
	case p.kind == KindCached:
		p.spawn()
	}
	p.mu.Unlock()

	p.metrics.Queued(queued)
	return h, nil
}

// spawn must be called with p.mu held.
func (p *Pool) spawn() {
	p.workers++
	p.wg.Add(1)
	go p.work()
}

func (p *Pool) work() {
	defer p.wg.Done()

	for {
		p.mu.Lock()
		for p.queue.len() == 0 && !p.closed && p.kind != KindCached {
			p.idle++
			p.cond.Wait()
			p.idle--
		}
		h := p.queue.pop()
		if h == nil {
			p.workers--
			p.mu.Unlock()
			return
		}
		queued := p.queue.len()
		p.mu.Unlock()

		p.metrics.Queued(queued)
		p.run(h)
	}
}

func (p *Pool) run(h *Handle) {
	defer h.finish()
	h.state.Store(int32(HandleRunning))

	p.metrics.Inflight(int(p.inflight.Add(1)))
	defer func() {
		p.metrics.Inflight(int(p.inflight.Add(-1)))
	}()

	defer p.metrics.TaskDuration().ObserveDuration()

	defer func() {
		if r := recover(); r != nil {
			p.metrics.TaskCompleted(false)
			p.log.Error(
				"task panicked",
				slog.String("task", h.id),
				slog.Any("recovered", r),
				slog.String("stack", string(debug.Stack())),
			)
		}
	}()

	h.task.Run(h.ctx)
	p.metrics.TaskCompleted(true)
}

// Workers is the number of live worker goroutines.
func (p *Pool) Workers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.workers
}

// Inflight is the number of tasks currently running.
func (p *Pool) Inflight() int { return int(p.inflight.Load()) }

func (p *Pool) QueueLen() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue.len()
}

func (p *Pool) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Shutdown stops accepting tasks and waits for queued and running tasks to
// complete. If ctx ends first the pool is shut down forcefully and the tasks
// that never started are returned.
func (p *Pool) Shutdown(ctx context.Context) []Task {
	p.mu.Lock()
	p.closed = true
	p.cond.Broadcast()
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		return nil
	case <-ctx.Done():
		backlog := p.ShutdownNow()
		p.log.Warn(
			"pool did not terminate in time, forced shutdown",
			slog.Int("backlog", len(backlog)),
			slog.Int("inflight", p.Inflight()),
		)
		return backlog
	}
}

// ShutdownNow stops accepting tasks, drops the queue and cancels running
// tasks. It returns the tasks that never started and does not wait.
func (p *Pool) ShutdownNow() []Task {
	p.mu.Lock()
	p.closed = true
	dropped := p.queue.drain()
	p.cond.Broadcast()
	p.mu.Unlock()

	p.cancel()
	p.metrics.Queued(0)

	tasks := make([]Task, 0, len(dropped))
	for _, h := range dropped {
		h.finish()
		tasks = append(tasks, h.task)
	}
	return tasks
}

// Wait blocks until every worker has exited. It only returns after a
// shutdown.
func (p *Pool) Wait() {
	p.wg.Wait()
}
