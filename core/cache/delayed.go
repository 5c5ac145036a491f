package cache

import (
	"container/heap"
	"log/slog"
	"sync"
	"time"
)

type DelayedOpts struct {
	Log     *slog.Logger
	Metrics Metrics
}

// slot boxes a stored value. The reclaimer compares slot pointers so that an
// expiry scheduled for an old value never removes a newer one.
type slot struct {
	val any
}

type expiry struct {
	key string
	s   *slot
	at  time.Time
}

type expiryQueue []expiry

func (q expiryQueue) Len() int           { return len(q) }
func (q expiryQueue) Less(i, j int) bool { return q[i].at.Before(q[j].at) }
func (q expiryQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *expiryQueue) Push(x any)        { *q = append(*q, x.(expiry)) }
func (q *expiryQueue) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	*q = old[:n-1]
	return it
}

// Delayed is an unbounded cache whose entries may carry a TTL. A single
// background goroutine removes entries once their TTL has elapsed.
type Delayed struct {
	log     *slog.Logger
	metrics Metrics

	mu    sync.Mutex
	store map[string]*slot
	queue expiryQueue

	wake      chan struct{}
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func NewDelayed(opts DelayedOpts) *Delayed {
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = NopMetrics()
	}

	d := &Delayed{
		log:     opts.Log.With(slog.String("cache", "delayed")),
		metrics: opts.Metrics,
		store:   make(map[string]*slot),
		wake:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	go d.reclaim()

	return d
}

func (d *Delayed) Get(key string) (any, bool) {
	d.mu.Lock()
	s, ok := d.store[key]
	d.mu.Unlock()

	if !ok {
		d.metrics.Miss()
		return nil, false
	}
	d.metrics.Hit()
	return s.val, true
}

// Put stores val under key. Storing nil removes the key, empty keys are
// ignored.
func (d *Delayed) Put(key string, val any, opts ...PutOption) {
	if key == "" {
		return
	}
	if val == nil {
		d.Delete(key)
		return
	}

	o := applyPutOptions(opts)
	s := &slot{val: val}

	d.mu.Lock()
	select {
	case <-d.stop:
		d.mu.Unlock()
		return
	default:
	}

	d.store[key] = s
	n := len(d.store)

	earliest := false
	if o.TTL > 0 {
		heap.Push(&d.queue, expiry{key: key, s: s, at: time.Now().Add(o.TTL)})
		earliest = d.queue[0].s == s
	}
	d.mu.Unlock()

	d.metrics.Size(n)
	if earliest {
		d.signal()
	}
}

func (d *Delayed) Delete(key string) {
	d.mu.Lock()
	delete(d.store, key)
	n := len(d.store)
	d.mu.Unlock()

	d.metrics.Size(n)
}

func (d *Delayed) Clear() {
	d.mu.Lock()
	d.store = make(map[string]*slot)
	d.queue = nil
	d.mu.Unlock()

	d.metrics.Size(0)
}

func (d *Delayed) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.store)
}

// Close stops the reclaimer and drops all entries. Puts after Close are
// ignored.
func (d *Delayed) Close() {
	d.closeOnce.Do(func() {
		d.mu.Lock()
		close(d.stop)
		d.mu.Unlock()

		<-d.done
		d.Clear()
	})
}

func (d *Delayed) signal() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *Delayed) reclaim() {
	defer close(d.done)

	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		wait := d.expireDue(time.Now())

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(wait)

		select {
		case <-d.stop:
			return
		case <-d.wake:
		case <-timer.C:
		}
	}
}

// expireDue removes every entry whose deadline is at or before now and
// returns how long to sleep until the next deadline.
func (d *Delayed) expireDue(now time.Time) time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()

	expired := 0
	defer func() {
		if expired > 0 {
			d.metrics.Size(len(d.store))
		}
	}()

	for d.queue.Len() > 0 {
		next := d.queue[0]
		if next.at.After(now) {
			return next.at.Sub(now)
		}
		heap.Pop(&d.queue)

		if cur, ok := d.store[next.key]; ok && cur == next.s {
			delete(d.store, next.key)
			expired++
			d.metrics.Expired()
			d.log.Debug("entry expired", slog.String("key", next.key))
		}
	}
	return time.Hour
}

var _ Cache = (*Delayed)(nil)
