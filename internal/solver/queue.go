package solver

import (
	"sync/atomic"

	"github.com/GenerallyIntelligent/stockcamel/internal/camel"
	lfring "github.com/LENSHOOD/go-lock-free-ring-buffer"
)

// workItem is one unit of pending work: a board together with the
// search depth remaining below it.
type workItem struct {
	Board camel.Board
	Depth int
}

// sharedQueue wraps the lock-free MPMC ring buffer with an
// approximate occupancy counter. The scheduler's queue-size check
// (deciding whether to push newly-generated work or recurse privately
// instead) only ever needs a cheap, eventually-consistent estimate of
// outstanding work, so a separately-maintained atomic counter beside
// the ring buffer's own CAS-based head/tail bookkeeping is enough, and
// avoids depending on the ring buffer exposing an exact Len itself.
type sharedQueue struct {
	ring lfring.RingBuffer[workItem]
	size atomic.Int64
}

func newSharedQueue(capacity uint64) *sharedQueue {
	return &sharedQueue{ring: lfring.NewRingBuffer[workItem](capacity)}
}

// Push offers item to the queue, reporting whether it was accepted.
// The queue rejecting an offer (it is full) is a programmer error: the
// caller is expected to have sized the queue generously relative to
// worker count, per the core's error model.
func (q *sharedQueue) Push(item workItem) bool {
	if q.ring.Offer(item) {
		q.size.Add(1)
		return true
	}
	return false
}

// Pop removes and returns the oldest item, if any.
func (q *sharedQueue) Pop() (workItem, bool) {
	item, ok := q.ring.Poll()
	if ok {
		q.size.Add(-1)
	}
	return item, ok
}

// Len is an approximate, possibly stale, occupancy count.
func (q *sharedQueue) Len() int {
	if n := q.size.Load(); n > 0 {
		return int(n)
	}
	return 0
}
