// Package camera provides the hardware-agnostic frame acquisition
// contract of the tracker and its two backends.
//
// # Contract
//
// A Camera produces FrameEvent values and delivers them event-driven via
// a registered callback:
//
//   - RegisterFrameCallback must be called before Start (frames produced
//     with no callback registered are discarded)
//   - Start begins acquisition; returns an error if already running
//   - Stop is idempotent and quiesces the producer goroutine before
//     returning, so downstream sinks can be torn down safely afterwards
//   - IsRunning is an advisory snapshot for diagnostics
//
// # Backends
//
//   - SimulatedCamera: synthetic sun-disc frames on a timer, for tests
//     and development without hardware
//   - GStreamerCamera: real acquisition through a GStreamer pipeline
//     (libcamerasrc on Raspberry Pi), Linux-only at runtime
//
// The processing side is agnostic to which backend feeds it; the usual
// wiring hands frames straight to an eventqueue:
//
//	cam.RegisterFrameCallback(func(ev camera.FrameEvent) { q.Push(ev) })
//	if err := cam.Start(); err != nil { ... }
package camera
