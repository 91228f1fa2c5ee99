package camera

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SimulatedCamera generates synthetic frames for tests and development
// without camera hardware.
//
// Each frame is a dim vertical gradient with a bright sun disc whose
// center sweeps slowly across the image, so a downstream centroid tracker
// has a moving target to follow.
type SimulatedCamera struct {
	cfg Config

	cbMu sync.Mutex
	cb   FrameCallback

	mu        sync.Mutex
	running   bool
	stopCh    chan struct{}
	wg        sync.WaitGroup
	seq       uint64
	startTime time.Time
}

// NewSimulatedCamera creates a simulated camera with fail-fast validation.
func NewSimulatedCamera(cfg Config) (*SimulatedCamera, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("camera: invalid resolution %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.FPS <= 0 || cfg.FPS > 120 {
		return nil, fmt.Errorf("camera: invalid FPS %d (must be 1-120)", cfg.FPS)
	}
	if cfg.CameraID == "" {
		cfg.CameraID = "simulated-0"
	}
	return &SimulatedCamera{cfg: cfg}, nil
}

// RegisterFrameCallback sets the frame sink (implements Camera).
// Safe to call before or after Start; register before Start to avoid
// discarding the first frames.
func (c *SimulatedCamera) RegisterFrameCallback(cb FrameCallback) {
	c.cbMu.Lock()
	c.cb = cb
	c.cbMu.Unlock()
}

// Start begins emitting synthetic frames (implements Camera).
func (c *SimulatedCamera) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return fmt.Errorf("camera: simulated camera already running")
	}
	c.running = true
	c.stopCh = make(chan struct{})
	c.startTime = time.Now()

	slog.Info("camera: simulated camera starting",
		"width", c.cfg.Width,
		"height", c.cfg.Height,
		"fps", c.cfg.FPS,
		"camera_id", c.cfg.CameraID,
	)

	c.wg.Add(1)
	go c.generateFrames(c.stopCh)

	return nil
}

// Stop ends frame generation (implements Camera). Returns only after the
// generator goroutine has exited; no callback runs after Stop returns.
// Idempotent.
func (c *SimulatedCamera) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	stopCh := c.stopCh
	c.mu.Unlock()

	close(stopCh)
	c.wg.Wait()

	slog.Info("camera: simulated camera stopped",
		"frames_emitted", c.seq,
		"duration", time.Since(c.startTime),
	)
}

// IsRunning reports whether frame generation is active (implements Camera).
func (c *SimulatedCamera) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *SimulatedCamera) generateFrames(stopCh <-chan struct{}) {
	defer c.wg.Done()

	interval := time.Second / time.Duration(c.cfg.FPS)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case now := <-ticker.C:
			c.mu.Lock()
			c.seq++
			seq := c.seq
			elapsed := now.Sub(c.startTime)
			c.mu.Unlock()

			ev := FrameEvent{
				Seq:       seq,
				Timestamp: now,
				Width:     c.cfg.Width,
				Height:    c.cfg.Height,
				Data:      c.renderFrame(elapsed),
				CameraID:  c.cfg.CameraID,
				TraceID:   uuid.New().String(),
			}

			c.cbMu.Lock()
			cb := c.cb
			c.cbMu.Unlock()
			if cb == nil {
				slog.Debug("camera: no callback registered, frame discarded",
					"seq", ev.Seq)
				continue
			}
			cb(ev)
		}
	}
}

// renderFrame draws a GRAY8 gradient background with a bright disc whose
// center sweeps horizontally with a 30s period.
func (c *SimulatedCamera) renderFrame(elapsed time.Duration) []byte {
	const sweepPeriod = 30 * time.Second

	w, h := c.cfg.Width, c.cfg.Height
	data := make([]byte, w*h)

	// Disc center: horizontal sinusoid sweep, fixed vertical offset.
	phase := 2 * math.Pi * float64(elapsed%sweepPeriod) / float64(sweepPeriod)
	cx := float64(w)/2 + float64(w)/4*math.Sin(phase)
	cy := float64(h) / 2
	radius := float64(h) / 8

	for y := 0; y < h; y++ {
		// Sky gradient: brighter at the top.
		bg := byte(64 - 48*y/h)
		row := data[y*w : (y+1)*w]
		for x := 0; x < w; x++ {
			dx := float64(x) - cx
			dy := float64(y) - cy
			if dx*dx+dy*dy <= radius*radius {
				row[x] = 255
			} else {
				row[x] = bg
			}
		}
	}
	return data
}

// SunCenter returns the disc center the simulator would draw at the given
// elapsed time. Exposed for tests that verify tracker output against
// ground truth.
func (c *SimulatedCamera) SunCenter(elapsed time.Duration) (x, y float64) {
	const sweepPeriod = 30 * time.Second
	phase := 2 * math.Pi * float64(elapsed%sweepPeriod) / float64(sweepPeriod)
	return float64(c.cfg.Width)/2 + float64(c.cfg.Width)/4*math.Sin(phase),
		float64(c.cfg.Height) / 2
}
