package eventqueue_test

import (
	"fmt"

	"github.com/Real-Time-Stewart-Solar-Tracker/Solar-Stewart-Tracker/eventqueue"
)

func Example_producerConsumer() {
	q := eventqueue.New[string]()

	go func() {
		// Producer: push then signal end-of-stream.
		q.Push("frame-1")
		q.Push("frame-2")
		q.Stop()
	}()

	// Consumer: pop until end-of-stream.
	for {
		v, ok := q.WaitPop()
		if !ok {
			break
		}
		fmt.Println(v)
	}
	fmt.Println("drained")
	// Output:
	// frame-1
	// frame-2
	// drained
}

func ExampleQueue_TryPop() {
	q := eventqueue.New[int]()

	if _, ok := q.TryPop(); !ok {
		fmt.Println("empty")
	}

	q.Push(1)
	if v, ok := q.TryPop(); ok {
		fmt.Println(v)
	}
	// Output:
	// empty
	// 1
}

func ExampleQueue_Stop() {
	q := eventqueue.New[int]()
	q.Push(10)
	q.Stop()

	// Buffered items drain after Stop; pushes are dropped.
	q.Push(20)
	v, ok := q.WaitPop()
	fmt.Println(v, ok)
	_, ok = q.WaitPop()
	fmt.Println(ok)
	// Output:
	// 10 true
	// false
}
