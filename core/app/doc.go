// Package app wires a cluster together from a [config.Config]: Prometheus
// metrics, the shared cache, the leftover archive and an optional /metrics
// endpoint.
//
//	cfg, err := config.Load("actr.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	a, err := app.Run(app.Config{Cluster: cfg})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	words, _ := actor.New(actor.Options[string]{
//	    Topic:    "words",
//	    Division: actor.NewSizeBased[string](1000),
//	    Metrics:  a.ActorMetrics(),
//	}, handler)
//	_ = a.AddRootActor(words)
//	words.SendAll(msgs)
//
//	leftovers, err := a.Shutdown(ctx)
//
// # Shutdown
//
// [App.Shutdown] waits for every topic to become passive unless the cluster
// is a daemon, then terminates the cluster permanently. Whatever was not
// processed is returned and, with an archive configured, written to it.
package app
