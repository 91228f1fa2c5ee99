package config

import "fmt"

// Validate checks configuration consistency (fail-fast at startup).
func Validate(cfg *Config) error {
	switch cfg.Camera.Backend {
	case BackendSimulated, BackendGStreamer:
	default:
		return fmt.Errorf("camera.backend %q unknown (want %q or %q)",
			cfg.Camera.Backend, BackendSimulated, BackendGStreamer)
	}

	if cfg.Camera.Width <= 0 || cfg.Camera.Height <= 0 {
		return fmt.Errorf("camera resolution %dx%d invalid",
			cfg.Camera.Width, cfg.Camera.Height)
	}
	if cfg.Camera.FPS <= 0 || cfg.Camera.FPS > 120 {
		return fmt.Errorf("camera.fps %d out of range (1-120)", cfg.Camera.FPS)
	}

	if cfg.Tracker.MinPeak < 1 || cfg.Tracker.MinPeak > 255 {
		return fmt.Errorf("tracker.min_peak %d out of range (1-255)", cfg.Tracker.MinPeak)
	}
	if cfg.Tracker.Smoothing < 0 || cfg.Tracker.Smoothing >= 1 {
		return fmt.Errorf("tracker.smoothing %.2f out of range [0, 1)", cfg.Tracker.Smoothing)
	}

	if cfg.ShutdownTimeoutS < 1 || cfg.ShutdownTimeoutS > 60 {
		return fmt.Errorf("shutdown_timeout_s %d out of range (1-60)", cfg.ShutdownTimeoutS)
	}

	return nil
}
