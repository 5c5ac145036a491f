package integration

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/codewandler/actr-go/core/actor"
	"github.com/codewandler/actr-go/core/app"
	"github.com/codewandler/actr-go/core/cluster"
	"github.com/codewandler/actr-go/core/config"
	"github.com/codewandler/actr-go/ports/kv"
)

const yamlConfig = `
name: integration
pool:
  kind: prioritized
  size: 4
  shutdown_timeout: 200ms
termination:
  propagation_delay: 2ms
cache:
  kind: lru
  size: 64
archive:
  kind: memory
`

type sums struct {
	mu  sync.Mutex
	got map[string]int
}

func (s *sums) add(k string, v int) {
	s.mu.Lock()
	s.got[k] += v
	s.mu.Unlock()
}

func (s *sums) get(k string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.got[k]
}

func newApp(t *testing.T) *app.App {
	t.Helper()
	cfg, err := config.NewLoader().LoadFromReader(strings.NewReader(yamlConfig))
	require.NoError(t, err)

	a, err := app.Run(app.Config{Cluster: cfg})
	require.NoError(t, err)
	return a
}

func TestIntegration(t *testing.T) {
	a := newApp(t)
	s := &sums{got: map[string]int{}}

	// "orders" fans out to "totals" by customer
	orders, err := actor.New(actor.Options[string]{
		Topic:    "orders",
		Priority: actor.PriorityHigh,
		Division: actor.NewSizeBased[string](10),
		Metrics:  a.ActorMetrics(),
	}, actor.HandlerFunc[string](func(ctx actor.Ctx, msg actor.Message[string]) error {
		totals, ok := actor.Lookup[string](ctx, "totals")
		if !ok {
			return fmt.Errorf("totals missing")
		}
		customer, _, _ := strings.Cut(msg.Payload, ":")
		totals.Send(actor.NewMessage(customer))
		return nil
	}))
	require.NoError(t, err)

	totals, err := actor.New(actor.Options[string]{
		Topic:    "totals",
		Division: actor.NewSizeBased[string](25),
		Metrics:  a.ActorMetrics(),
	}, actor.HandlerFunc[string](func(ctx actor.Ctx, msg actor.Message[string]) error {
		s.add(msg.Payload, 1)
		return nil
	}))
	require.NoError(t, err)

	require.NoError(t, a.AddRootActor(orders))
	require.NoError(t, a.AddRootActor(totals))
	require.ErrorIs(t, a.AddRootActor(totals), cluster.ErrOccupiedTopic)

	var batch []actor.Message[string]
	for i := 0; i < 300; i++ {
		batch = append(batch, actor.NewMessage(fmt.Sprintf("c%d:%d", i%3, i)))
	}
	orders.SendAll(batch)

	require.NoError(t, a.Cluster().AwaitTermination(t.Context(), "orders", true))
	require.NoError(t, a.Cluster().AwaitTermination(t.Context(), "totals", true))

	require.Equal(t, 100, s.get("c0"))
	require.Equal(t, 100, s.get("c1"))
	require.Equal(t, 100, s.get("c2"))
	require.Greater(t, orders.Depth(), 1)

	leftovers, err := a.Shutdown(t.Context())
	require.NoError(t, err)
	require.Zero(t, leftovers.Count())
}

func TestIntegration_SplitAcrossChain(t *testing.T) {
	a := newApp(t)

	var mu sync.Mutex
	processed := map[int][]string{}
	release := make(chan struct{})
	entered := make(chan struct{})

	var h func(depth int) actor.Handler[string]
	h = func(depth int) actor.Handler[string] {
		var once sync.Once
		return &splitHandler{
			operate: func(msg actor.Message[string]) {
				if depth == 0 {
					once.Do(func() {
						close(entered)
						<-release
					})
				}
				mu.Lock()
				processed[depth] = append(processed[depth], msg.Payload)
				mu.Unlock()
			},
			child: func() actor.Handler[string] { return h(depth + 1) },
		}
	}

	root, err := actor.New(actor.Options[string]{Topic: "t", Division: actor.NewSizeBased[string](5)}, h(0))
	require.NoError(t, err)
	require.NoError(t, a.AddRootActor(root))

	root.Send(actor.NewMessage("m0"))
	<-entered
	for i := 1; i < 12; i++ {
		root.Send(actor.NewMessage(fmt.Sprintf("m%d", i)))
		if child := root.Child(); child != nil {
			require.Eventually(t, func() bool { return child.Backlog() == 0 }, time.Second, time.Millisecond)
		}
	}
	close(release)

	require.NoError(t, a.Cluster().AwaitTermination(t.Context(), "t", true))

	mu.Lock()
	require.Len(t, processed[0], 5)
	require.Len(t, processed[1], 7)
	mu.Unlock()

	_, err = a.Shutdown(t.Context())
	require.NoError(t, err)
}

func TestIntegration_TerminationArchivesLeftovers(t *testing.T) {
	a := newApp(t)
	a.Cluster().Pause()

	act, err := actor.New(actor.Options[int]{Topic: "jobs", Division: actor.NewSizeBased[int](4)},
		actor.HandlerFunc[int](func(actor.Ctx, actor.Message[int]) error { return nil }))
	require.NoError(t, err)
	require.NoError(t, a.AddRootActor(act))

	act.SendAll(actor.Messages(1, 2, 3, 4, 5, 6, 7, 8, 9, 10))
	require.Equal(t, 3, act.Depth())

	leftovers := a.Cluster().TerminateCluster(t.Context(), true, true)
	require.Len(t, leftovers["jobs"], 10)

	keys, err := a.Archive().Keys(t.Context(), "leftovers/integration/")
	require.NoError(t, err)
	require.Equal(t, []string{"leftovers/integration/jobs"}, keys)

	rec, err := kv.Get[cluster.ArchivedLeftovers](t.Context(), a.Archive(), keys[0])
	require.NoError(t, err)
	require.Len(t, rec.Messages, 10)
	require.EqualValues(t, 1, rec.Messages[0].(map[string]any)["payload"])
}

type splitHandler struct {
	operate func(actor.Message[string])
	child   func() actor.Handler[string]
}

func (h *splitHandler) Operate(_ actor.Ctx, msg actor.Message[string]) error {
	h.operate(msg)
	return nil
}

func (h *splitHandler) GenerateChild() actor.Handler[string] { return h.child() }
