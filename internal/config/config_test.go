package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tracker.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
instance_id: tracker-roof-1
shutdown_timeout_s: 10
camera:
  backend: gstreamer
  width: 1280
  height: 720
  fps: 15
  camera_id: imx477
tracker:
  min_peak: 220
  smoothing: 0.3
mqtt:
  broker: localhost:1883
  topics:
    readings: solar/roof-1/readings
    health: solar/roof-1/health
  qos:
    readings: 0
    health: 1
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.InstanceID != "tracker-roof-1" {
		t.Errorf("InstanceID = %q", cfg.InstanceID)
	}
	if cfg.Camera.Backend != BackendGStreamer || cfg.Camera.Width != 1280 || cfg.Camera.FPS != 15 {
		t.Errorf("Camera = %+v", cfg.Camera)
	}
	if cfg.Tracker.MinPeak != 220 || cfg.Tracker.Smoothing != 0.3 {
		t.Errorf("Tracker = %+v", cfg.Tracker)
	}
	if cfg.MQTT.Broker != "localhost:1883" || cfg.MQTT.QoS["health"] != 1 {
		t.Errorf("MQTT = %+v", cfg.MQTT)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `{}`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Camera.Backend != BackendSimulated {
		t.Errorf("default backend = %q, want simulated", cfg.Camera.Backend)
	}
	if cfg.Camera.Width != 640 || cfg.Camera.Height != 480 || cfg.Camera.FPS != 30 {
		t.Errorf("default camera = %+v", cfg.Camera)
	}
	if cfg.ShutdownTimeoutS != 5 {
		t.Errorf("default shutdown_timeout_s = %d, want 5", cfg.ShutdownTimeoutS)
	}
	if cfg.Tracker.MinPeak != 200 {
		t.Errorf("default min_peak = %d, want 200", cfg.Tracker.MinPeak)
	}
	if cfg.MQTT.Topics.Readings == "" || cfg.MQTT.Topics.Health == "" {
		t.Errorf("default topics = %+v", cfg.MQTT.Topics)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"unknown backend", "camera:\n  backend: v4l2\n"},
		{"bad fps", "camera:\n  fps: 500\n"},
		{"bad smoothing", "tracker:\n  smoothing: 1.5\n"},
		{"bad shutdown timeout", "shutdown_timeout_s: 600\n"},
		{"malformed yaml", "camera: [\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tc.content)); err == nil {
				t.Error("Load succeeded, want error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load of missing file succeeded, want error")
	}
}
