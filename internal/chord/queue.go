package chord

import "container/heap"

// queueItem is one entry in the environment's event queue: an event with
// its delivery time and the sequence number it was scheduled at. Sequence
// breaks ties between events scheduled for the same simulated instant,
// giving strict FIFO-per-tick ordering (spec §5).
type queueItem struct {
	at    float64
	seq   uint64
	event Event
}

// eventHeap implements container/heap.Interface, ordered by (at, seq).
// This is the "explicit min-heap priority queue keyed on (delivery_time,
// seq)" the REDESIGN FLAGS section calls for, replacing the coroutine
// scheduler of the system this was modeled on.
type eventHeap []*queueItem

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].at != h[j].at {
		return h[i].at < h[j].at
	}
	return h[i].seq < h[j].seq
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(*queueItem))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

var _ heap.Interface = (*eventHeap)(nil)
