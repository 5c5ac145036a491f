package cache

import (
	"container/list"
	"sync"
	"time"
)

type LRUOpts struct {
	Size    int
	Metrics Metrics
}

type lruEntry struct {
	key       string
	val       any
	expiresAt time.Time
}

func (e *lruEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

type lruOp int

const (
	opGet lruOp = iota
	opPut
	opDelete
	opClear
	opLen
)

type lruReq struct {
	op   lruOp
	key  string
	val  any
	opts PutOptions
	resp chan lruResp
}

type lruResp struct {
	val any
	ok  bool
	n   int
}

// LRU is a bounded cache evicting the least recently used entry. All state is
// owned by a single goroutine, callers talk to it over a channel. Expired
// entries are evicted lazily on access.
type LRU struct {
	reqCh     chan lruReq
	closed    chan struct{}
	closeOnce sync.Once
	metrics   Metrics
}

func NewLRU(opts LRUOpts) *LRU {
	if opts.Size <= 0 {
		opts.Size = 128
	}
	if opts.Metrics == nil {
		opts.Metrics = NopMetrics()
	}

	l := &LRU{
		reqCh:   make(chan lruReq),
		closed:  make(chan struct{}),
		metrics: opts.Metrics,
	}

	go l.run(opts.Size)

	return l
}

func (l *LRU) do(req lruReq) (lruResp, bool) {
	if req.resp == nil {
		req.resp = make(chan lruResp, 1)
	}
	select {
	case <-l.closed:
		return lruResp{}, false
	case l.reqCh <- req:
	}
	select {
	case <-l.closed:
		return lruResp{}, false
	case r := <-req.resp:
		return r, true
	}
}

func (l *LRU) Get(key string) (any, bool) {
	r, ok := l.do(lruReq{op: opGet, key: key})
	if !ok {
		return nil, false
	}
	return r.val, r.ok
}

// Put stores val under key. Storing nil removes the key, empty keys are
// ignored.
func (l *LRU) Put(key string, val any, opts ...PutOption) {
	if key == "" {
		return
	}
	if val == nil {
		l.Delete(key)
		return
	}
	l.do(lruReq{op: opPut, key: key, val: val, opts: applyPutOptions(opts)})
}

func (l *LRU) Delete(key string) { l.do(lruReq{op: opDelete, key: key}) }
func (l *LRU) Clear()            { l.do(lruReq{op: opClear}) }

func (l *LRU) Len() int {
	r, _ := l.do(lruReq{op: opLen})
	return r.n
}

// Close stops the owning goroutine. Calls after Close return immediately.
func (l *LRU) Close() {
	l.closeOnce.Do(func() { close(l.closed) })
}

func (l *LRU) run(size int) {
	ll := list.New()
	items := make(map[string]*list.Element)

	remove := func(ele *list.Element) {
		ll.Remove(ele)
		delete(items, ele.Value.(*lruEntry).key)
	}

	for {
		var req lruReq
		select {
		case <-l.closed:
			return
		case req = <-l.reqCh:
		}

		switch req.op {
		case opGet:
			ele, ok := items[req.key]
			if ok && ele.Value.(*lruEntry).expired(time.Now()) {
				remove(ele)
				l.metrics.Expired()
				l.metrics.Size(ll.Len())
				ok = false
			}
			if !ok {
				l.metrics.Miss()
				req.resp <- lruResp{}
				continue
			}
			l.metrics.Hit()
			ll.MoveToFront(ele)
			req.resp <- lruResp{val: ele.Value.(*lruEntry).val, ok: true}

		case opPut:
			var expiresAt time.Time
			if req.opts.TTL > 0 {
				expiresAt = time.Now().Add(req.opts.TTL)
			}
			if ele, ok := items[req.key]; ok {
				ll.MoveToFront(ele)
				e := ele.Value.(*lruEntry)
				e.val = req.val
				e.expiresAt = expiresAt
			} else {
				items[req.key] = ll.PushFront(&lruEntry{key: req.key, val: req.val, expiresAt: expiresAt})
				if ll.Len() > size {
					if last := ll.Back(); last != nil {
						remove(last)
					}
				}
			}
			l.metrics.Size(ll.Len())
			req.resp <- lruResp{}

		case opDelete:
			if ele, ok := items[req.key]; ok {
				remove(ele)
				l.metrics.Size(ll.Len())
			}
			req.resp <- lruResp{}

		case opClear:
			ll.Init()
			items = make(map[string]*list.Element)
			l.metrics.Size(0)
			req.resp <- lruResp{}

		case opLen:
			req.resp <- lruResp{n: ll.Len()}
		}
	}
}

var _ Cache = (*LRU)(nil)
