// Package eventqueue implements a blocking, thread-safe FIFO queue for
// handing ownership of events between producer and consumer goroutines.
//
// # Philosophy
//
// "One monitor, no polling."
//
// The queue is the single synchronization boundary of the sensor pipeline:
// a camera goroutine pushes captured frames, a processing goroutine pops
// them. Correctness of the compound wait predicate (stopped OR non-empty)
// requires observing both fields atomically, so the queue is one guarded
// aggregate (sync.Mutex + sync.Cond), not two independent atomics.
//
// # Semantics
//
//   - Push appends FIFO and wakes at most one blocked consumer
//   - WaitPop blocks (true condition wait, no busy-wait, no timed poll)
//     until an item arrives or Stop is called
//   - Stop wakes every blocked consumer; buffered items remain poppable
//     until drained, then WaitPop reports end-of-stream
//   - Push after Stop is silently dropped (producers that race shutdown
//     cannot meaningfully act on a rejection)
//
// # Basic Usage
//
// Producer side:
//
//	q := eventqueue.New[Frame]()
//	q.Push(frame)       // from capture callback
//	...
//	q.Stop()            // end of stream, wakes all consumers
//
// Consumer side:
//
//	for {
//	    frame, ok := q.WaitPop()
//	    if !ok {
//	        break // stopped and drained
//	    }
//	    process(frame)
//	}
//
// # Lifecycle
//
// A queue starts active, transitions to draining on Stop (buffered items
// still retrievable), and is logically closed once stopped and empty.
// Stop is idempotent and must be called before the queue is abandoned so
// no consumer is left blocked forever. No operation returns an error;
// end-of-stream is the comma-ok false result, a normal control value.
//
// # Thread Safety
//
// All methods are safe for concurrent use by any number of producers and
// consumers. When consumers race for one item, exactly one receives it.
package eventqueue
