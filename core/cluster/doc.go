// Package cluster schedules actors on a shared worker pool.
//
// A [Cluster] owns a [Router], a [pool.Pool] and a [cache.Cache]. Root actors
// are registered under their topic with [Cluster.AddRootActor]. Sending a
// message to an actor asks the router for a run; [Cluster.ExecuteNode]
// admits the actor only if no run of it is pending or in progress, records
// the task handle per topic and submits the actor to the pool.
//
//	cl, _ := cluster.New(cluster.Options{
//	    Name: "words",
//	    Pool: pool.Options{Kind: pool.KindFixed, Size: 4},
//	})
//	_ = cl.AddRootActor(counter)
//	counter.SendAll(actor.Messages(words...))
//	_ = cl.AwaitTermination(ctx, "count", false)
//
// # Termination
//
// [Cluster.TerminateCluster] aborts all in-flight runs, waits a short
// propagation delay, drains every topic and returns the unprocessed
// messages per topic. A permanent termination also shuts down the pool,
// gracefully within [Options.ShutdownTimeout] and forcefully after it, and
// reports the runs that never started under [PoolBacklogKey]. If
// [Options.Archive] is set the leftovers are written to it as JSON.
//
// [Cluster.AwaitTermination] blocks until every actor of a topic is passive.
// Waiters are woken on each active to passive transition.
package cluster
