package cluster

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codewandler/actr-go/core/actor"
)

func TestRouter_Register(t *testing.T) {
	c := newTestCluster(t, Options{})
	r := c.Router()

	require.Equal(t, actor.KindRouter, r.ControlBlock().Kind())
	require.True(t, r.ControlBlock().IsActive())

	a := newStringActor(t, "a", 0, &chainHandler{j: newJournal()})
	require.NoError(t, r.Register(a))
	require.True(t, a.ControlBlock().IsRoot())
	require.True(t, r.Exists("a"))
	require.False(t, r.Exists("b"))

	typed, ok := actor.Lookup[string](r, "a")
	require.True(t, ok)
	require.Same(t, a, typed)

	_, ok = actor.Lookup[int](r, "a")
	require.False(t, ok)
}

func TestRouter_TopicsInRegistrationOrder(t *testing.T) {
	c := newTestCluster(t, Options{})

	for _, topic := range []actor.Topic{"zeta", "alpha", "mid"} {
		require.NoError(t, c.AddRootActor(newStringActor(t, topic, 0, &chainHandler{j: newJournal()})))
	}
	require.Equal(t, []actor.Topic{"zeta", "alpha", "mid"}, c.Router().Topics())
}

func TestRouter_Counts(t *testing.T) {
	c := newTestCluster(t, Options{})
	c.Pause()
	r := c.Router()

	a := newStringActor(t, "a", 1, &chainHandler{j: newJournal()})
	require.NoError(t, c.AddRootActor(a))
	require.Equal(t, 1, r.NodeCount("a"))

	a.LoadAll(actor.Messages("m0", "m1", "m2"))
	require.Equal(t, 3, r.NodeCount("a"))
	require.Equal(t, 3, a.Depth())

	r.IncrementCount("unknown")
	require.Equal(t, 0, r.NodeCount("unknown"))
}

func TestRouter_TerminateTopicKeepsRegistration(t *testing.T) {
	c := newTestCluster(t, Options{})
	c.Pause()

	a := newStringActor(t, "a", 0, &chainHandler{j: newJournal()})
	require.NoError(t, c.AddRootActor(a))
	a.LoadAll(actor.Messages("m0", "m1"))

	left, err := c.TerminateTopic("a")
	require.NoError(t, err)
	require.Len(t, left, 2)
	require.True(t, c.Router().Exists("a"))
	require.Equal(t, 0, a.QueueLen())
}

func TestRouter_DrainedRejectsRegistration(t *testing.T) {
	c := newTestCluster(t, Options{})
	r := c.Router()

	require.NoError(t, r.Register(newStringActor(t, "x", 0, &chainHandler{j: newJournal()})))

	out := r.DrainAll()
	require.Contains(t, out, actor.Topic("x"))
	require.Equal(t, actor.StatusPassive, r.ControlBlock().Status())

	err := r.Register(newStringActor(t, "y", 0, &chainHandler{j: newJournal()}))
	require.ErrorIs(t, err, ErrRouterDrained)

	err = c.AddRootActor(newStringActor(t, "y", 0, &chainHandler{j: newJournal()}))
	require.ErrorIs(t, err, ErrClusterTerminated)
}
