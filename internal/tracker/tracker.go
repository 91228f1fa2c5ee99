// Package tracker is the consumer side of the sensor pipeline: it drains
// captured frames from the event queue, locates the sun as a brightness
// centroid, and produces pointing-offset readings for the platform
// controller.
package tracker

import (
	"log/slog"
	"sync"
	"time"

	"github.com/Real-Time-Stewart-Solar-Tracker/Solar-Stewart-Tracker/camera"
	"github.com/Real-Time-Stewart-Solar-Tracker/Solar-Stewart-Tracker/eventqueue"
)

// Reading is the result of processing one frame.
type Reading struct {
	// Seq echoes the frame sequence number.
	Seq uint64
	// Timestamp echoes the frame capture time.
	Timestamp time.Time
	// CameraID and TraceID carry the frame identity through telemetry.
	CameraID string
	TraceID  string

	// OffsetX and OffsetY are the sun center's normalized offset from
	// the optical center, in [-1, 1] per axis. (0, 0) means on target.
	OffsetX float64
	OffsetY float64

	// Peak is the brightest luminance value seen in the frame.
	Peak byte
	// Locked is true when Peak reached the configured lock threshold;
	// offsets are only meaningful while locked.
	Locked bool
}

// Config holds tracker tuning parameters.
type Config struct {
	// MinPeak is the minimum luminance for a frame to count as a sun
	// lock. Below it the reading reports Locked=false with zero offsets.
	MinPeak byte
	// Smoothing is the exponential moving average factor applied to the
	// offsets, in [0, 1). 0 disables smoothing; higher values weight
	// history more.
	Smoothing float64
}

// Stats is a snapshot of tracker counters.
type Stats struct {
	Processed uint64
	LockLost  uint64
}

// Tracker converts frames into pointing readings. Safe for concurrent
// use, though the usual topology is a single consumer goroutine.
type Tracker struct {
	cfg Config

	mu        sync.Mutex
	processed uint64
	lockLost  uint64
	haveEMA   bool
	emaX      float64
	emaY      float64
}

// New creates a tracker. A zero MinPeak defaults to 200.
func New(cfg Config) *Tracker {
	if cfg.MinPeak == 0 {
		cfg.MinPeak = 200
	}
	if cfg.Smoothing < 0 || cfg.Smoothing >= 1 {
		cfg.Smoothing = 0
	}
	return &Tracker{cfg: cfg}
}

// Process computes the reading for one frame.
//
// The sun center is the luminance-weighted centroid of pixels within a
// small band below the frame's peak; the band rejects the sky gradient
// while tolerating sensor noise on the disc itself.
func (t *Tracker) Process(ev camera.FrameEvent) Reading {
	r := Reading{
		Seq:       ev.Seq,
		Timestamp: ev.Timestamp,
		CameraID:  ev.CameraID,
		TraceID:   ev.TraceID,
	}

	peak := byte(0)
	for _, p := range ev.Data {
		if p > peak {
			peak = p
		}
	}
	r.Peak = peak

	if peak < t.cfg.MinPeak {
		t.mu.Lock()
		t.processed++
		t.lockLost++
		t.haveEMA = false // stale history is worse than none after a lock loss
		t.mu.Unlock()
		return r
	}

	// Centroid band: within 32 luminance levels of the peak.
	thresh := byte(0)
	if peak >= 32 {
		thresh = peak - 32
	}

	var sumX, sumY, sumW float64
	for y := 0; y < ev.Height; y++ {
		row := ev.Data[y*ev.Width : (y+1)*ev.Width]
		for x, p := range row {
			if p >= thresh {
				w := float64(p)
				sumX += w * float64(x)
				sumY += w * float64(y)
				sumW += w
			}
		}
	}

	// sumW > 0 is guaranteed: the peak pixel is always in the band.
	cx := sumX / sumW
	cy := sumY / sumW
	offX := (cx - float64(ev.Width)/2) / (float64(ev.Width) / 2)
	offY := (cy - float64(ev.Height)/2) / (float64(ev.Height) / 2)

	t.mu.Lock()
	t.processed++
	if t.cfg.Smoothing > 0 && t.haveEMA {
		a := t.cfg.Smoothing
		offX = a*t.emaX + (1-a)*offX
		offY = a*t.emaY + (1-a)*offY
	}
	t.emaX, t.emaY = offX, offY
	t.haveEMA = true
	t.mu.Unlock()

	r.OffsetX = offX
	r.OffsetY = offY
	r.Locked = true
	return r
}

// Stats returns a snapshot of tracker counters.
func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Stats{Processed: t.processed, LockLost: t.lockLost}
}

// Run drains the queue until end-of-stream, handing each reading to emit.
// This is the canonical consumer loop: it blocks in WaitPop and exits when
// the queue is stopped and drained. Intended to run in its own goroutine.
func (t *Tracker) Run(q *eventqueue.Queue[camera.FrameEvent], emit func(Reading)) {
	slog.Info("tracker: consumer loop starting")
	for {
		ev, ok := q.WaitPop()
		if !ok {
			break
		}
		reading := t.Process(ev)
		slog.Debug("tracker: frame processed",
			"seq", reading.Seq,
			"trace_id", reading.TraceID,
			"locked", reading.Locked,
			"offset_x", reading.OffsetX,
			"offset_y", reading.OffsetY,
		)
		if emit != nil {
			emit(reading)
		}
	}
	stats := t.Stats()
	slog.Info("tracker: consumer loop stopped",
		"processed", stats.Processed,
		"lock_lost", stats.LockLost,
	)
}
