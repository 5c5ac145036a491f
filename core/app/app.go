package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/codewandler/actr-go/adapters/nats"
	promadapter "github.com/codewandler/actr-go/adapters/prometheus"
	"github.com/codewandler/actr-go/core/actor"
	"github.com/codewandler/actr-go/core/cache"
	"github.com/codewandler/actr-go/core/cluster"
	"github.com/codewandler/actr-go/core/config"
	"github.com/codewandler/actr-go/core/pool"
	"github.com/codewandler/actr-go/ports/kv"
)

type Config struct {
	Context context.Context
	Log     *slog.Logger
	// Cluster defaults to config.Default().
	Cluster *config.Config
	// Registry receives all metrics. A fresh registry is created if nil.
	Registry *prometheus.Registry
	// Archive overrides the store selected by Cluster.Archive.
	Archive kv.Store
}

type App struct {
	ctx       context.Context
	cancelCtx context.CancelFunc
	log       *slog.Logger
	cfg       *config.Config

	registry *prometheus.Registry
	metrics  *promadapter.AllMetrics
	cluster  *cluster.Cluster
	archive  kv.Store
	nats     nats.Connector
	closers  []func()

	server   *http.Server
	listener net.Listener
}

func New(conf Config) (app *App, err error) {
	app = &App{}

	// === config ===
	cfg := conf.Cluster
	if cfg == nil {
		cfg = config.Default()
	}
	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	app.cfg = cfg

	// === logger ===
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	app.log = conf.Log

	// === context ===
	if conf.Context == nil {
		conf.Context = context.Background()
	}
	app.ctx, app.cancelCtx = context.WithCancel(conf.Context)

	// === metrics ===
	app.registry = conf.Registry
	if app.registry == nil {
		app.registry = prometheus.NewRegistry()
		app.registry.MustRegister(collectors.NewGoCollector())
	}
	app.metrics = promadapter.NewAllMetrics(app.registry, "cluster")

	// === archive ===
	app.archive = conf.Archive
	if app.archive == nil {
		if app.archive, err = app.openArchive(); err != nil {
			app.cancelCtx()
			return nil, err
		}
	}

	app.log.Debug("creating app", slog.Any("config", cfg))

	app.cluster, err = cluster.New(cluster.Options{
		Name:   cfg.Name,
		Daemon: cfg.Daemon,
		Pool: pool.Options{
			Kind:    cfg.Pool.Kind,
			Size:    cfg.Pool.Size,
			Metrics: app.metrics.Pool,
		},
		ShutdownTimeout:  cfg.Pool.ShutdownTimeout,
		PropagationDelay: cfg.Termination.PropagationDelay,
		Cache:            app.newCache(),
		Archive:          app.archive,
		Log:              app.log,
		Metrics:          app.metrics.Cluster,
	})
	if err != nil {
		app.close()
		return nil, fmt.Errorf("create cluster: %w", err)
	}

	app.log = app.log.With(slog.String("cluster", app.cluster.Name()))
	return app, nil
}

func (a *App) newCache() cache.Cache {
	switch a.cfg.Cache.Kind {
	case config.CacheLRU:
		return cache.NewLRU(cache.LRUOpts{Size: a.cfg.Cache.Size, Metrics: a.metrics.Cache})
	case config.CacheNop:
		return cache.NewNop()
	default:
		return cache.NewDelayed(cache.DelayedOpts{Log: a.log, Metrics: a.metrics.Cache})
	}
}

func (a *App) openArchive() (kv.Store, error) {
	switch a.cfg.Archive.Kind {
	case config.ArchiveMemory:
		return kv.NewMemStore(), nil
	case config.ArchiveNATS:
		a.nats = nats.ReuseConnection(nats.ConnectURL(a.cfg.Archive.NatsURL))
		store, err := nats.NewKvStore(a.ctx, nats.KvConfig{
			Connect: a.nats,
			Bucket:  a.cfg.Archive.Bucket,
		})
		if err != nil {
			return nil, fmt.Errorf("open nats archive: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		return store, nil
	default:
		return nil, nil
	}
}

// NATS leases the connection of the NATS archive. It is nil unless the
// archive kind is nats.
func (a *App) NATS() nats.Connector { return a.nats }

func (a *App) Cluster() *cluster.Cluster       { return a.cluster }
func (a *App) Registry() *prometheus.Registry  { return a.registry }
func (a *App) Archive() kv.Store               { return a.archive }
func (a *App) Context() context.Context        { return a.ctx }
func (a *App) ActorMetrics() actor.Metrics     { return a.metrics.Actor }
func (a *App) MetricsHandler() http.Handler    { return promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}) }
func (a *App) Log() *slog.Logger               { return a.log }
func (a *App) AddRootActor(n actor.Node) error { return a.cluster.AddRootActor(n) }

// MetricsAddr is the address the metrics endpoint listens on, empty if it
// is not running.
func (a *App) MetricsAddr() string {
	if a.listener == nil {
		return ""
	}
	return a.listener.Addr().String()
}

// Run starts the metrics endpoint if one is configured.
func (a *App) Run() error {
	if addr := a.cfg.Metrics.Addr; addr != "" {
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("listen %s: %w", addr, err)
		}
		a.listener = ln

		mux := http.NewServeMux()
		mux.Handle("/metrics", a.MetricsHandler())
		a.server = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

		go func() {
			if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.log.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		a.log.Info("serving metrics", slog.String("addr", ln.Addr().String()))
	}

	a.log.Info("app started")
	return nil
}

// Shutdown awaits every topic unless the cluster is a daemon, then
// terminates it permanently and returns what was left over.
func (a *App) Shutdown(ctx context.Context) (cluster.Leftovers, error) {
	var awaitErr error
	if !a.cluster.Daemon() {
		if awaitErr = a.cluster.AwaitTerminationAll(ctx, true); awaitErr != nil {
			a.log.Warn("await termination", slog.Any("error", awaitErr))
		}
	}

	leftovers := a.cluster.TerminateCluster(context.WithoutCancel(ctx), true, true)

	if a.server != nil {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		if err := a.server.Shutdown(sctx); err != nil {
			a.log.Warn("metrics server shutdown", slog.Any("error", err))
		}
		cancel()
	}
	a.close()

	return leftovers, awaitErr
}

func (a *App) close() {
	for _, c := range a.closers {
		c()
	}
	a.closers = nil
	a.cancelCtx()
}

func Run(conf Config) (app *App, err error) {
	app, err = New(conf)
	if err != nil {
		return nil, err
	}

	if err = app.Run(); err != nil {
		app.close()
		return nil, err
	}

	return app, nil
}
