package camera

import "time"

// FrameEvent is a single captured frame with metadata.
//
// Data is GRAY8 luminance, row-major, Width*Height bytes. It is shared by
// reference after delivery: the callback owner must treat it as read-only.
type FrameEvent struct {
	// Seq is a monotonic per-camera sequence number, starting at 1.
	Seq uint64
	// Timestamp is the capture time (source time, not processing time).
	Timestamp time.Time
	// Width in pixels.
	Width int
	// Height in pixels.
	Height int
	// Data contains the GRAY8 pixel data.
	Data []byte
	// CameraID identifies the producing camera.
	CameraID string
	// TraceID is a unique identifier for correlating a frame through the
	// pipeline (queue, tracker, telemetry).
	TraceID string
}

// FrameCallback receives captured frames. It runs on the camera's
// acquisition goroutine and must not block for long; hand the event to a
// queue and return.
type FrameCallback func(FrameEvent)

// Camera is the hardware-agnostic acquisition interface.
//
// Implementations must guarantee:
//   - RegisterFrameCallback is safe before and after Start
//   - Start returns an error when already running
//   - Stop is idempotent and returns only after the acquisition
//     goroutine has fully quiesced (no callback runs after Stop returns)
//   - IsRunning is safe from any goroutine
type Camera interface {
	// RegisterFrameCallback sets the frame sink. Call before Start;
	// frames captured while no callback is registered are discarded.
	RegisterFrameCallback(cb FrameCallback)

	// Start begins frame acquisition.
	Start() error

	// Stop ends acquisition and releases resources. Safe to call
	// multiple times.
	Stop()

	// IsRunning reports whether acquisition is active (diagnostics).
	IsRunning() bool
}

// Config holds the acquisition parameters shared by all backends.
type Config struct {
	// Width of captured frames in pixels.
	Width int
	// Height of captured frames in pixels.
	Height int
	// FPS is the target capture rate (best-effort).
	FPS int
	// CameraID optionally selects a camera and tags emitted frames.
	CameraID string
}
