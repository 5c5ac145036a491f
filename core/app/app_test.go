package app

import (
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/codewandler/actr-go/adapters/nats"
	"github.com/codewandler/actr-go/core/actor"
	"github.com/codewandler/actr-go/core/cluster"
	"github.com/codewandler/actr-go/core/config"
	"github.com/codewandler/actr-go/ports/kv"
)

func newCountingActor(t *testing.T, a *App, topic actor.Topic, limit int, counter *atomic.Int32) *actor.Actor[string] {
	t.Helper()
	act, err := actor.New(actor.Options[string]{
		Topic:    topic,
		Division: actor.NewSizeBased[string](limit),
		Metrics:  a.ActorMetrics(),
		Log:      a.Log(),
	}, actor.HandlerFunc[string](func(actor.Ctx, actor.Message[string]) error {
		counter.Add(1)
		return nil
	}))
	require.NoError(t, err)
	require.NoError(t, a.AddRootActor(act))
	return act
}

func TestApp(t *testing.T) {
	a, err := Run(Config{})
	require.NoError(t, err)
	require.NotNil(t, a.Cluster())
	require.Nil(t, a.Archive())
	require.Empty(t, a.MetricsAddr())

	var n atomic.Int32
	act := newCountingActor(t, a, "words", 3, &n)
	act.SendAll(actor.Messages(strings.Fields("the quick brown fox jumps over the lazy dog")...))

	leftovers, err := a.Shutdown(t.Context())
	require.NoError(t, err)
	require.Zero(t, leftovers.Count())
	require.EqualValues(t, 9, n.Load())
	require.True(t, a.Cluster().Pool().Closed())
	require.Error(t, a.Context().Err())
}

func TestApp_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Pool.Kind = "elastic"

	_, err := New(Config{Cluster: cfg})
	require.ErrorIs(t, err, config.ErrInvalidPoolKind)
}

func TestApp_CacheKinds(t *testing.T) {
	for _, kind := range []config.CacheKind{config.CacheDelayed, config.CacheLRU, config.CacheNop} {
		t.Run(string(kind), func(t *testing.T) {
			cfg := config.Default()
			cfg.Cache.Kind = kind

			a, err := New(Config{Cluster: cfg})
			require.NoError(t, err)
			t.Cleanup(func() { _, _ = a.Shutdown(t.Context()) })

			a.Cluster().Cache().Put("k", 1)
			_, ok := a.Cluster().Cache().Get("k")
			require.Equal(t, kind != config.CacheNop, ok)
		})
	}
}

func TestApp_DaemonLeavesWork(t *testing.T) {
	cfg := config.Default()
	cfg.Daemon = true
	cfg.Archive.Kind = config.ArchiveMemory

	a, err := New(Config{Cluster: cfg})
	require.NoError(t, err)
	a.Cluster().Pause()

	var n atomic.Int32
	act := newCountingActor(t, a, "words", 100, &n)
	act.SendAll(actor.Messages("a", "b", "c"))

	leftovers, err := a.Shutdown(t.Context())
	require.NoError(t, err)
	require.Len(t, leftovers["words"], 3)
	require.Zero(t, n.Load())

	rec, err := kv.Get[cluster.ArchivedLeftovers](t.Context(), a.Archive(), cluster.ArchiveKey(a.Cluster().Name(), "words"))
	require.NoError(t, err)
	require.Len(t, rec.Messages, 3)
}

func TestApp_NatsArchiveSharesConnection(t *testing.T) {
	if testing.Short() {
		t.Skip("needs docker")
	}

	cfg := config.Default()
	cfg.Daemon = true
	cfg.Archive.Kind = config.ArchiveNATS
	cfg.Archive.NatsURL = nats.NewTestContainerURL(t)

	a, err := New(Config{Cluster: cfg})
	require.NoError(t, err)
	require.NotNil(t, a.NATS())

	nc, release, err := a.NATS()()
	require.NoError(t, err)
	require.Equal(t, "CONNECTED", nc.Status().String())
	release()
	require.Equal(t, "CONNECTED", nc.Status().String())

	a.Cluster().Pause()
	var n atomic.Int32
	act := newCountingActor(t, a, "words", 100, &n)
	act.SendAll(actor.Messages("a", "b"))

	leftovers, err := a.Shutdown(t.Context())
	require.NoError(t, err)
	require.Len(t, leftovers["words"], 2)
	require.Equal(t, "CLOSED", nc.Status().String())
}

func TestApp_NoNatsWithoutNatsArchive(t *testing.T) {
	a, err := New(Config{})
	require.NoError(t, err)
	require.Nil(t, a.NATS())
	_, err = a.Shutdown(t.Context())
	require.NoError(t, err)
}

func TestApp_MetricsEndpoint(t *testing.T) {
	cfg := config.Default()
	cfg.Metrics.Addr = "127.0.0.1:0"

	a, err := Run(Config{Cluster: cfg})
	require.NoError(t, err)
	require.NotEmpty(t, a.MetricsAddr())

	var n atomic.Int32
	act := newCountingActor(t, a, "words", 10, &n)
	act.SendAll(actor.Messages("a", "b"))
	require.NoError(t, a.Cluster().AwaitTermination(t.Context(), "words", false))

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + a.MetricsAddr() + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)

	require.Contains(t, string(body), `actr_actor_messages_total{success="true",topic="words"} 2`)
	require.Contains(t, string(body), "actr_pool_tasks_total")
	require.Contains(t, string(body), "go_goroutines")

	_, err = a.Shutdown(t.Context())
	require.NoError(t, err)
}
