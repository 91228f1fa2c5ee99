// Package gstpipe builds and services the GStreamer capture pipeline used
// by the real-hardware camera backend.
package gstpipe

import (
	"fmt"

	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"
)

// PipelineConfig contains configuration for capture pipeline creation.
type PipelineConfig struct {
	Width      int
	Height     int
	FPS        int
	CameraName string // optional libcamera camera selection
}

// PipelineElements holds references to pipeline elements needed for
// lifecycle control and cleanup.
type PipelineElements struct {
	Pipeline   *gst.Pipeline
	AppSink    *app.Sink
	Source     *gst.Element
	CapsFilter *gst.Element
}

// CreatePipeline creates and configures the capture pipeline:
//
//	libcamerasrc → videoconvert → videoscale → videorate → capsfilter → appsink
//
// The capsfilter locks GRAY8 at the target resolution and framerate; the
// tracker consumes luminance only, so color conversion is pushed into the
// pipeline where it is cheapest.
//
// The pipeline is configured but NOT started (state remains NULL). Caller
// must call Pipeline.SetState(gst.StatePlaying) to start.
func CreatePipeline(cfg PipelineConfig) (*PipelineElements, error) {
	// Safe to call multiple times.
	gst.Init(nil)

	pipeline, err := gst.NewPipeline("")
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline: %w", err)
	}

	source, err := gst.NewElement("libcamerasrc")
	if err != nil {
		return nil, fmt.Errorf("failed to create libcamerasrc (libcamera required): %w", err)
	}
	if cfg.CameraName != "" {
		source.SetProperty("camera-name", cfg.CameraName)
	}

	converter, err := gst.NewElement("videoconvert")
	if err != nil {
		return nil, fmt.Errorf("failed to create videoconvert: %w", err)
	}
	converter.SetProperty("n-threads", 0) // auto-detect cores

	scaler, err := gst.NewElement("videoscale")
	if err != nil {
		return nil, fmt.Errorf("failed to create videoscale: %w", err)
	}

	videorate, err := gst.NewElement("videorate")
	if err != nil {
		return nil, fmt.Errorf("failed to create videorate: %w", err)
	}
	videorate.SetProperty("drop-only", true)     // only drop, never duplicate
	videorate.SetProperty("skip-to-first", true) // no initial rate averaging

	capsfilter, err := gst.NewElement("capsfilter")
	if err != nil {
		return nil, fmt.Errorf("failed to create capsfilter: %w", err)
	}
	capsStr := fmt.Sprintf("video/x-raw,format=GRAY8,width=%d,height=%d,framerate=%d/1",
		cfg.Width, cfg.Height, cfg.FPS)
	capsfilter.SetProperty("caps", gst.NewCapsFromString(capsStr))

	appsink, err := app.NewAppSink()
	if err != nil {
		return nil, fmt.Errorf("failed to create appsink: %w", err)
	}
	appsink.SetProperty("sync", false)    // real-time, no clock sync
	appsink.SetProperty("max-buffers", 4) // small pad for callback jitter
	appsink.SetProperty("drop", true)     // drop old buffers when full

	if err := pipeline.AddMany(
		source,
		converter,
		scaler,
		videorate,
		capsfilter,
		appsink.Element,
	); err != nil {
		return nil, fmt.Errorf("failed to add pipeline elements: %w", err)
	}

	// libcamerasrc has a static src pad, so the whole chain links directly.
	if err := gst.ElementLinkMany(
		source,
		converter,
		scaler,
		videorate,
		capsfilter,
		appsink.Element,
	); err != nil {
		return nil, fmt.Errorf("failed to link pipeline elements: %w", err)
	}

	return &PipelineElements{
		Pipeline:   pipeline,
		AppSink:    appsink,
		Source:     source,
		CapsFilter: capsfilter,
	}, nil
}
