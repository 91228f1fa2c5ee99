package eventqueue

import "sync"

// Queue is a blocking, concurrency-safe FIFO that transfers ownership of
// items from producers to consumers. The zero value is not usable; create
// instances with New.
//
// All methods are safe for concurrent use by multiple goroutines.
type Queue[T any] struct {
	mu      sync.Mutex
	cond    *sync.Cond
	items   []T
	stopped bool

	// Drop accounting (diagnostics only, see Stats)
	droppedAfterStop uint64
	cleared          uint64
}

// Stats is a snapshot of queue drop accounting.
type Stats struct {
	// Len is the number of buffered items at snapshot time (advisory).
	Len int
	// Stopped reports whether Stop has been requested.
	Stopped bool
	// DroppedAfterStop counts items discarded because they were pushed
	// after Stop. Non-zero values indicate a producer that keeps pushing
	// past shutdown; harmless, but worth a log line upstream.
	DroppedAfterStop uint64
	// Cleared counts items discarded by Clear calls.
	Cleared uint64
}

// New creates an empty, active queue.
func New[T any]() *Queue[T] {
	q := &Queue[T]{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends item to the tail and wakes at most one blocked consumer.
//
// After Stop the item is silently dropped: producers racing shutdown
// cannot meaningfully act on a rejection, so none is surfaced. The drop
// is counted in Stats.
func (q *Queue[T]) Push(item T) {
	q.mu.Lock()
	if q.stopped {
		q.droppedAfterStop++
		q.mu.Unlock()
		return
	}
	q.items = append(q.items, item)
	// Exactly one waiter per item; woken consumers re-check the
	// predicate, so a racing consumer taking the item first is safe.
	q.cond.Signal()
	q.mu.Unlock()
}

// WaitPop blocks until an item is available or Stop is called.
//
// Returns (item, true) with ownership of the head item transferred to the
// caller, or (zero, false) only when the queue is stopped AND empty.
// Draining takes priority over shutdown: buffered items are delivered
// even after Stop. The wait is a true condition wait; a blocked caller
// consumes no CPU.
func (q *Queue[T]) WaitPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	// Standard wait-in-a-loop: guards against spurious wakeups and
	// against another consumer draining the queue between wake and
	// lock re-acquisition.
	for len(q.items) == 0 && !q.stopped {
		q.cond.Wait()
	}

	if len(q.items) == 0 {
		// Only reachable when stopped: end-of-stream.
		var zero T
		return zero, false
	}

	return q.popFrontLocked(), true
}

// TryPop removes and returns the head item without blocking.
// ok is false when the queue is empty, regardless of stopped state.
func (q *Queue[T]) TryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		var zero T
		return zero, false
	}

	return q.popFrontLocked(), true
}

// Stop requests shutdown and wakes every blocked consumer.
//
// After Stop, Push becomes a no-op while WaitPop and TryPop keep
// returning buffered items until the queue is drained, then WaitPop
// reports end-of-stream. Idempotent: safe to call multiple times, from
// multiple goroutines.
func (q *Queue[T]) Stop() {
	q.mu.Lock()
	q.stopped = true
	q.cond.Broadcast()
	q.mu.Unlock()
}

// Clear discards all buffered items without delivering them.
//
// Stopped state is unchanged and no consumer is woken (the queue becomes
// empty, not non-empty, so the wait predicate cannot have become true).
func (q *Queue[T]) Clear() {
	q.mu.Lock()
	q.cleared += uint64(len(q.items))
	clear(q.items) // release references before dropping the slice
	q.items = q.items[:0]
	q.mu.Unlock()
}

// Len returns the number of buffered items. Advisory under concurrency:
// the value may be stale the moment it is returned.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	n := len(q.items)
	q.mu.Unlock()
	return n
}

// Stopped reports whether Stop has been requested. Advisory under
// concurrency, same as Len.
func (q *Queue[T]) Stopped() bool {
	q.mu.Lock()
	s := q.stopped
	q.mu.Unlock()
	return s
}

// Stats returns a snapshot of queue state and drop counters.
func (q *Queue[T]) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return Stats{
		Len:              len(q.items),
		Stopped:          q.stopped,
		DroppedAfterStop: q.droppedAfterStop,
		Cleared:          q.cleared,
	}
}

// popFrontLocked removes and returns the head item. Caller holds q.mu and
// has verified the queue is non-empty.
func (q *Queue[T]) popFrontLocked() T {
	item := q.items[0]
	var zero T
	q.items[0] = zero // drop the buffer's reference (ownership transfer)
	q.items = q.items[1:]
	if len(q.items) == 0 {
		// Reset so the backing array's consumed prefix can be collected.
		q.items = nil
	}
	return item
}
