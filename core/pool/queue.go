package pool

import "container/heap"

type taskQueue interface {
	push(h *Handle)
	pop() *Handle
	len() int
	drain() []*Handle
}

type fifoQueue struct {
	items []*Handle
}

func (q *fifoQueue) push(h *Handle) { q.items = append(q.items, h) }
func (q *fifoQueue) len() int       { return len(q.items) }

func (q *fifoQueue) pop() *Handle {
	if len(q.items) == 0 {
		return nil
	}
	h := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return h
}

func (q *fifoQueue) drain() []*Handle {
	out := q.items
	q.items = nil
	return out
}

// priorityQueue orders handles by ascending priority, ties are served in
// submission order.
type priorityQueue struct {
	items handleHeap
}

func (q *priorityQueue) push(h *Handle) { heap.Push(&q.items, h) }
func (q *priorityQueue) len() int       { return q.items.Len() }

func (q *priorityQueue) pop() *Handle {
	if q.items.Len() == 0 {
		return nil
	}
	return heap.Pop(&q.items).(*Handle)
}

func (q *priorityQueue) drain() []*Handle {
	out := make([]*Handle, 0, q.items.Len())
	for q.items.Len() > 0 {
		out = append(out, heap.Pop(&q.items).(*Handle))
	}
	return out
}

type handleHeap []*Handle

func (h handleHeap) Len() int { return len(h) }
func (h handleHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority < h[j].priority
	}
	return h[i].seq < h[j].seq
}
func (h handleHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *handleHeap) Push(x any)   { *h = append(*h, x.(*Handle)) }
func (h *handleHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return it
}
