// Command trackerd runs the solar tracker sensor daemon: a camera backend
// pushes frames into the event queue, the tracker drains it and emits
// pointing readings over MQTT.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Real-Time-Stewart-Solar-Tracker/Solar-Stewart-Tracker/camera"
	"github.com/Real-Time-Stewart-Solar-Tracker/Solar-Stewart-Tracker/eventqueue"
	"github.com/Real-Time-Stewart-Solar-Tracker/Solar-Stewart-Tracker/internal/config"
	"github.com/Real-Time-Stewart-Solar-Tracker/Solar-Stewart-Tracker/internal/emitter"
	"github.com/Real-Time-Stewart-Solar-Tracker/Solar-Stewart-Tracker/internal/tracker"
)

const (
	defaultConfigPath = "config/tracker.yaml"
	healthInterval    = 10 * time.Second
)

func main() {
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "path", *configPath, "error", err)
		os.Exit(1)
	}

	slog.Info("starting solar tracker",
		"instance_id", cfg.InstanceID,
		"backend", cfg.Camera.Backend,
		"config", *configPath,
		"debug", *debug,
	)

	cam, err := newCamera(cfg)
	if err != nil {
		slog.Error("failed to create camera", "error", err)
		os.Exit(1)
	}

	queue := eventqueue.New[camera.FrameEvent]()
	trk := tracker.New(tracker.Config{
		MinPeak:   byte(cfg.Tracker.MinPeak),
		Smoothing: cfg.Tracker.Smoothing,
	})

	// Telemetry is optional: an empty broker runs the pipeline headless.
	var em *emitter.MQTTEmitter
	if cfg.MQTT.Broker != "" {
		em = emitter.NewMQTTEmitter(cfg)
		connectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := em.Connect(connectCtx)
		cancel()
		if err != nil {
			slog.Error("failed to connect mqtt emitter", "error", err)
			os.Exit(1)
		}
		defer em.Disconnect()
	}

	emit := func(r tracker.Reading) {
		if em == nil {
			return
		}
		if err := em.PublishReading(r); err != nil {
			slog.Debug("reading publish failed", "seq", r.Seq, "error", err)
		}
	}

	// Wire producer → queue before activation (callback registration
	// precedes start).
	cam.RegisterFrameCallback(func(ev camera.FrameEvent) {
		queue.Push(ev)
	})

	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		trk.Run(queue, emit)
	}()

	if err := cam.Start(); err != nil {
		slog.Error("failed to start camera", "error", err)
		queue.Stop()
		<-consumerDone
		os.Exit(1)
	}

	healthStop := make(chan struct{})
	go publishHealth(cfg, queue, trk, em, healthStop)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	slog.Info("received shutdown signal", "signal", sig)

	// Shutdown order: quiesce the producer first so nothing pushes after
	// stop, then stop the queue to wake the consumer, then wait for the
	// consumer to drain.
	close(healthStop)
	cam.Stop()
	queue.Stop()

	shutdownTimeout := time.Duration(cfg.ShutdownTimeoutS) * time.Second
	select {
	case <-consumerDone:
	case <-time.After(shutdownTimeout):
		slog.Error("consumer did not drain within timeout", "timeout", shutdownTimeout)
		os.Exit(1)
	}

	stats := queue.Stats()
	slog.Info("solar tracker stopped",
		"dropped_after_stop", stats.DroppedAfterStop,
		"processed", trk.Stats().Processed,
	)
}

// newCamera builds the configured camera backend.
func newCamera(cfg *config.Config) (camera.Camera, error) {
	camCfg := camera.Config{
		Width:    cfg.Camera.Width,
		Height:   cfg.Camera.Height,
		FPS:      cfg.Camera.FPS,
		CameraID: cfg.Camera.CameraID,
	}
	if cfg.Camera.Backend == config.BackendGStreamer {
		return camera.NewGStreamerCamera(camCfg)
	}
	return camera.NewSimulatedCamera(camCfg)
}

// publishHealth emits periodic health reports until stopped.
func publishHealth(cfg *config.Config, q *eventqueue.Queue[camera.FrameEvent], trk *tracker.Tracker, em *emitter.MQTTEmitter, stop <-chan struct{}) {
	if em == nil {
		return
	}

	ticker := time.NewTicker(healthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			stats := trk.Stats()
			err := em.PublishHealth(emitter.HealthPayload{
				InstanceID: cfg.InstanceID,
				Timestamp:  time.Now(),
				QueueLen:   q.Len(),
				Processed:  stats.Processed,
				LockLost:   stats.LockLost,
			})
			if err != nil {
				slog.Debug("health publish failed", "error", err)
			}
		}
	}
}
