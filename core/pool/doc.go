// Package pool provides the worker pools that execute actor runs.
//
// Three kinds are available:
//
//   - [KindFixed]: a fixed number of workers serving a FIFO queue
//   - [KindCached]: a worker is started whenever none is idle
//   - [KindPrioritized]: a fixed number of workers serving the task with the
//     lowest [Prioritized.Priority] first
//
// Submitted tasks are tracked through a [Handle]. Cancelling a handle cancels
// the context passed to [Task.Run]; the task itself decides when to stop.
//
//	p, _ := pool.New(pool.Options{Kind: pool.KindFixed, Size: 4})
//	h, _ := p.Submit(pool.TaskFunc(func(ctx context.Context) { ... }))
//	<-h.Done()
//
//	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
//	defer cancel()
//	backlog := p.Shutdown(ctx)
package pool
