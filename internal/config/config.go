// Package config loads and validates the tracker daemon configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Backend selects the camera implementation.
const (
	BackendSimulated = "simulated"
	BackendGStreamer = "gstreamer"
)

// Config represents the complete tracker configuration.
type Config struct {
	InstanceID       string        `yaml:"instance_id"`
	ShutdownTimeoutS int           `yaml:"shutdown_timeout_s"` // graceful shutdown timeout in seconds (default: 5)
	Camera           CameraConfig  `yaml:"camera"`
	Tracker          TrackerConfig `yaml:"tracker"`
	MQTT             MQTTConfig    `yaml:"mqtt"`
}

// CameraConfig contains camera settings.
type CameraConfig struct {
	Backend  string `yaml:"backend"` // simulated, gstreamer
	Width    int    `yaml:"width"`
	Height   int    `yaml:"height"`
	FPS      int    `yaml:"fps"`
	CameraID string `yaml:"camera_id"` // optional camera selection
}

// TrackerConfig contains sun-tracking settings.
type TrackerConfig struct {
	MinPeak   int     `yaml:"min_peak"`  // luminance lock threshold (0-255)
	Smoothing float64 `yaml:"smoothing"` // EMA factor [0, 1)
}

// MQTTConfig contains MQTT broker settings. An empty broker disables
// telemetry.
type MQTTConfig struct {
	Broker string          `yaml:"broker"`
	Topics MQTTTopics      `yaml:"topics"`
	QoS    map[string]byte `yaml:"qos"`
}

// MQTTTopics contains topic templates.
type MQTTTopics struct {
	Readings string `yaml:"readings"`
	Health   string `yaml:"health"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.InstanceID == "" {
		cfg.InstanceID = "solar-tracker-0"
	}
	if cfg.ShutdownTimeoutS == 0 {
		cfg.ShutdownTimeoutS = 5
	}
	if cfg.Camera.Backend == "" {
		cfg.Camera.Backend = BackendSimulated
	}
	if cfg.Camera.Width == 0 {
		cfg.Camera.Width = 640
	}
	if cfg.Camera.Height == 0 {
		cfg.Camera.Height = 480
	}
	if cfg.Camera.FPS == 0 {
		cfg.Camera.FPS = 30
	}
	if cfg.Tracker.MinPeak == 0 {
		cfg.Tracker.MinPeak = 200
	}
	if cfg.MQTT.Topics.Readings == "" {
		cfg.MQTT.Topics.Readings = "solar/readings"
	}
	if cfg.MQTT.Topics.Health == "" {
		cfg.MQTT.Topics.Health = "solar/health"
	}
}
