package tracker

import (
	"math"
	"testing"
	"time"

	"github.com/Real-Time-Stewart-Solar-Tracker/Solar-Stewart-Tracker/camera"
	"github.com/Real-Time-Stewart-Solar-Tracker/Solar-Stewart-Tracker/eventqueue"
)

// makeFrame renders a GRAY8 frame with a bright disc at (cx, cy).
func makeFrame(w, h int, cx, cy float64, radius float64) camera.FrameEvent {
	data := make([]byte, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx := float64(x) - cx
			dy := float64(y) - cy
			if dx*dx+dy*dy <= radius*radius {
				data[y*w+x] = 255
			} else {
				data[y*w+x] = 30
			}
		}
	}
	return camera.FrameEvent{
		Seq:       1,
		Timestamp: time.Now(),
		Width:     w,
		Height:    h,
		Data:      data,
		CameraID:  "test",
		TraceID:   "trace-1",
	}
}

// TestProcessCenteredSun verifies a centered disc yields near-zero offsets.
func TestProcessCenteredSun(t *testing.T) {
	tr := New(Config{})
	ev := makeFrame(64, 48, 32, 24, 6)

	r := tr.Process(ev)
	if !r.Locked {
		t.Fatalf("Locked = false, peak %d", r.Peak)
	}
	if math.Abs(r.OffsetX) > 0.05 || math.Abs(r.OffsetY) > 0.05 {
		t.Errorf("offsets = (%.3f, %.3f), want ~(0, 0)", r.OffsetX, r.OffsetY)
	}
}

// TestProcessOffCenterSun verifies offset sign and rough magnitude for a
// disc in the upper-left quadrant.
func TestProcessOffCenterSun(t *testing.T) {
	tr := New(Config{})
	ev := makeFrame(64, 48, 16, 12, 5)

	r := tr.Process(ev)
	if !r.Locked {
		t.Fatal("Locked = false for bright disc")
	}
	if r.OffsetX >= 0 || r.OffsetY >= 0 {
		t.Errorf("offsets = (%.3f, %.3f), want both negative (upper-left)", r.OffsetX, r.OffsetY)
	}
	// Disc at 1/4 width → offset ≈ -0.5 on X.
	if math.Abs(r.OffsetX-(-0.5)) > 0.1 {
		t.Errorf("OffsetX = %.3f, want ≈ -0.5", r.OffsetX)
	}
}

// TestProcessDarkFrameLosesLock verifies a frame below MinPeak reports no
// lock and increments the lock-lost counter.
func TestProcessDarkFrameLosesLock(t *testing.T) {
	tr := New(Config{MinPeak: 200})
	ev := makeFrame(32, 32, 16, 16, 4)
	for i := range ev.Data {
		if ev.Data[i] == 255 {
			ev.Data[i] = 100 // overcast sun
		}
	}

	r := tr.Process(ev)
	if r.Locked {
		t.Error("Locked = true for dark frame")
	}
	if r.OffsetX != 0 || r.OffsetY != 0 {
		t.Errorf("offsets = (%.3f, %.3f) without lock, want (0, 0)", r.OffsetX, r.OffsetY)
	}

	stats := tr.Stats()
	if stats.Processed != 1 || stats.LockLost != 1 {
		t.Errorf("Stats = %+v, want Processed=1 LockLost=1", stats)
	}
}

// TestSmoothing verifies the EMA pulls a jumped reading toward history.
func TestSmoothing(t *testing.T) {
	tr := New(Config{Smoothing: 0.5})

	// Establish history at center.
	tr.Process(makeFrame(64, 48, 32, 24, 5))
	// Jump to the right edge region.
	r := tr.Process(makeFrame(64, 48, 56, 24, 5))

	raw := (56.0 - 32.0) / 32.0 // unsmoothed offset of the second frame
	if r.OffsetX >= raw {
		t.Errorf("OffsetX = %.3f, want < raw %.3f (smoothed toward 0)", r.OffsetX, raw)
	}
	if r.OffsetX <= 0 {
		t.Errorf("OffsetX = %.3f, want positive (disc on the right)", r.OffsetX)
	}
}

// TestRunDrainsQueue verifies the consumer loop pops every frame and
// exits on end-of-stream.
func TestRunDrainsQueue(t *testing.T) {
	q := eventqueue.New[camera.FrameEvent]()
	tr := New(Config{})

	const n = 10
	for i := 0; i < n; i++ {
		ev := makeFrame(32, 32, 16, 16, 4)
		ev.Seq = uint64(i + 1)
		q.Push(ev)
	}
	q.Stop()

	var readings []Reading
	done := make(chan struct{})
	go func() {
		tr.Run(q, func(r Reading) { readings = append(readings, r) })
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not exit after queue stopped and drained")
	}

	if len(readings) != n {
		t.Fatalf("emitted %d readings, want %d", len(readings), n)
	}
	for i, r := range readings {
		if r.Seq != uint64(i+1) {
			t.Errorf("reading %d has Seq %d, want %d (FIFO)", i, r.Seq, i+1)
		}
	}
	if got := tr.Stats().Processed; got != n {
		t.Errorf("Processed = %d, want %d", got, n)
	}
}
