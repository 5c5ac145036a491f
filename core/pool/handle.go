package pool

import (
	"context"
	"sync/atomic"
)

// Task is a unit of work run by a Pool worker. ctx is cancelled when the
// handle is cancelled or the pool is shut down forcefully.
type Task interface {
	Run(ctx context.Context)
}

// TaskFunc adapts a function to the Task interface.
type TaskFunc func(ctx context.Context)

func (f TaskFunc) Run(ctx context.Context) { f(ctx) }

type HandleState int32

const (
	HandleQueued HandleState = iota
	HandleRunning
	HandleDone
)

func (s HandleState) String() string {
	switch s {
	case HandleQueued:
		return "queued"
	case HandleRunning:
		return "running"
	case HandleDone:
		return "done"
	default:
		return "unknown"
	}
}

// Handle tracks a submitted task.
type Handle struct {
	id       string
	task     Task
	priority int
	seq      uint64

	ctx    context.Context
	cancel context.CancelFunc
	state  atomic.Int32
	done   chan struct{}
}

func (h *Handle) ID() string         { return h.id }
func (h *Handle) Task() Task         { return h.task }
func (h *Handle) Priority() int      { return h.priority }
func (h *Handle) State() HandleState { return HandleState(h.state.Load()) }

// Done is closed once the task has returned or was dropped from the queue.
func (h *Handle) Done() <-chan struct{} { return h.done }

func (h *Handle) IsDone() bool { return h.State() == HandleDone }

// Cancel cancels the context passed to the task. A task that has not started
// yet still runs, observing an already cancelled context.
func (h *Handle) Cancel() { h.cancel() }

func (h *Handle) Cancelled() bool { return h.ctx.Err() != nil }

func (h *Handle) finish() {
	if HandleState(h.state.Swap(int32(HandleDone))) != HandleDone {
		h.cancel()
		close(h.done)
	}
}
