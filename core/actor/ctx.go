package actor

import (
	"context"
	"log/slog"

	"github.com/codewandler/actr-go/core/cache"
)

// Ctx is passed to Handler.Operate. It is cancelled when the run is aborted.
type Ctx interface {
	context.Context
	Log() *slog.Logger
	Topic() Topic
	IsRoot() bool
	// Cache is the cluster cache, or a Nop cache if the actor is not
	// registered.
	Cache() cache.Cache
	// Lookup returns the root actor registered under topic.
	Lookup(topic Topic) (Node, bool)
	// Terminate drains the running actor and returns what was left in its
	// queue. The current run ends after Operate returns.
	Terminate(recursive bool) []any
}

type runCtx[T any] struct {
	context.Context
	actor *Actor[T]
	log   *slog.Logger
}

func (c *runCtx[T]) Log() *slog.Logger { return c.log }
func (c *runCtx[T]) Topic() Topic      { return c.actor.topic }
func (c *runCtx[T]) IsRoot() bool      { return c.actor.cb.IsRoot() }

func (c *runCtx[T]) Cache() cache.Cache {
	if r := c.actor.router(); r != nil {
		if cc := r.Cache(); cc != nil {
			return cc
		}
	}
	return cache.NewNop()
}

func (c *runCtx[T]) Lookup(topic Topic) (Node, bool) {
	r := c.actor.router()
	if r == nil {
		return nil, false
	}
	return r.Lookup(topic)
}

func (c *runCtx[T]) Terminate(recursive bool) []any {
	return c.actor.Drain(recursive)
}

var _ Ctx = (*runCtx[any])(nil)
