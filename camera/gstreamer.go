package camera

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"

	"github.com/Real-Time-Stewart-Solar-Tracker/Solar-Stewart-Tracker/camera/internal/gstpipe"
)

// GStreamerCamera is the real-hardware backend. Frames are acquired
// through a GStreamer pipeline (libcamerasrc on Raspberry Pi) and
// delivered event-driven via the registered callback.
//
// Linux-only at runtime; construction fails fast when the pipeline
// elements are unavailable.
type GStreamerCamera struct {
	cfg Config

	cbMu sync.Mutex
	cb   FrameCallback

	mu       sync.Mutex
	running  bool
	elements *gstpipe.PipelineElements
	stopCh   chan struct{}
	wg       sync.WaitGroup

	// Statistics (atomic, written by GStreamer callbacks)
	frameCount    uint64
	bytesRead     uint64
	framesDropped uint64
}

// NewGStreamerCamera creates a GStreamer-backed camera with fail-fast
// validation. The pipeline itself is created on Start.
func NewGStreamerCamera(cfg Config) (*GStreamerCamera, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("camera: invalid resolution %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.FPS <= 0 || cfg.FPS > 120 {
		return nil, fmt.Errorf("camera: invalid FPS %d (must be 1-120)", cfg.FPS)
	}
	return &GStreamerCamera{cfg: cfg}, nil
}

// RegisterFrameCallback sets the frame sink (implements Camera).
// Register before Start to avoid discarding the first frames.
func (c *GStreamerCamera) RegisterFrameCallback(cb FrameCallback) {
	c.cbMu.Lock()
	c.cb = cb
	c.cbMu.Unlock()
}

// Start creates the pipeline, moves it to PLAYING, and begins delivering
// frames to the registered callback (implements Camera).
func (c *GStreamerCamera) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return fmt.Errorf("camera: gstreamer camera already running")
	}

	slog.Info("camera: starting gstreamer camera",
		"width", c.cfg.Width,
		"height", c.cfg.Height,
		"fps", c.cfg.FPS,
		"camera_id", c.cfg.CameraID,
	)

	elements, err := gstpipe.CreatePipeline(gstpipe.PipelineConfig{
		Width:      c.cfg.Width,
		Height:     c.cfg.Height,
		FPS:        c.cfg.FPS,
		CameraName: c.cfg.CameraID,
	})
	if err != nil {
		return fmt.Errorf("camera: failed to create pipeline: %w", err)
	}
	c.elements = elements

	// Internal channel decouples the GStreamer callback thread from the
	// delivery goroutine that invokes the registered callback.
	internalFrames := make(chan gstpipe.Frame, 8)
	callbackCtx := &gstpipe.CallbackContext{
		FrameChan:     internalFrames,
		FrameCounter:  &c.frameCount,
		BytesRead:     &c.bytesRead,
		FramesDropped: &c.framesDropped,
		Width:         c.cfg.Width,
		Height:        c.cfg.Height,
		CameraID:      c.cfg.CameraID,
	}

	elements.AppSink.SetCallbacks(&app.SinkCallbacks{
		NewSampleFunc: func(sink *app.Sink) gst.FlowReturn {
			return gstpipe.OnNewSample(sink, callbackCtx)
		},
	})

	c.stopCh = make(chan struct{})
	stopCh := c.stopCh

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			select {
			case <-stopCh:
				return
			case f := <-internalFrames:
				c.deliver(FrameEvent{
					Seq:       f.Seq,
					Timestamp: f.Timestamp,
					Width:     f.Width,
					Height:    f.Height,
					Data:      f.Data,
					CameraID:  f.CameraID,
					TraceID:   f.TraceID,
				})
			}
		}
	}()

	if err := elements.Pipeline.SetState(gst.StatePlaying); err != nil {
		close(stopCh)
		c.wg.Wait()
		return fmt.Errorf("camera: failed to start pipeline: %w", err)
	}

	c.wg.Add(1)
	go c.watchBus(stopCh)

	c.running = true
	return nil
}

// Stop halts the pipeline and quiesces delivery (implements Camera).
// Returns only after no callback will run again. Idempotent.
func (c *GStreamerCamera) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	elements := c.elements
	stopCh := c.stopCh
	c.mu.Unlock()

	// NULL state first so the appsink callback stops firing, then end
	// the delivery goroutine.
	if err := elements.Pipeline.SetState(gst.StateNull); err != nil {
		slog.Warn("camera: failed to stop pipeline cleanly", "error", err)
	}
	close(stopCh)
	c.wg.Wait()

	slog.Info("camera: gstreamer camera stopped",
		"frames", atomic.LoadUint64(&c.frameCount),
		"bytes_read", atomic.LoadUint64(&c.bytesRead),
		"frames_dropped", atomic.LoadUint64(&c.framesDropped),
	)
}

// IsRunning reports whether acquisition is active (implements Camera).
func (c *GStreamerCamera) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *GStreamerCamera) deliver(ev FrameEvent) {
	c.cbMu.Lock()
	cb := c.cb
	c.cbMu.Unlock()
	if cb == nil {
		slog.Debug("camera: no callback registered, frame discarded", "seq", ev.Seq)
		return
	}
	cb(ev)
}

// watchBus logs pipeline bus errors and EOS until Stop.
func (c *GStreamerCamera) watchBus(stopCh <-chan struct{}) {
	defer c.wg.Done()

	bus := c.elements.Pipeline.GetPipelineBus()
	for {
		select {
		case <-stopCh:
			return
		default:
		}

		msg := bus.TimedPop(500 * time.Millisecond)
		if msg == nil {
			continue
		}
		switch msg.Type() {
		case gst.MessageError:
			slog.Error("camera: pipeline error", "error", msg.ParseError())
		case gst.MessageEOS:
			slog.Warn("camera: pipeline reached end-of-stream")
		}
	}
}
