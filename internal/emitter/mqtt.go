// Package emitter publishes tracker telemetry to an MQTT broker.
package emitter

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/Real-Time-Stewart-Solar-Tracker/Solar-Stewart-Tracker/internal/config"
	"github.com/Real-Time-Stewart-Solar-Tracker/Solar-Stewart-Tracker/internal/tracker"
)

// MQTTEmitter publishes readings and health reports to an MQTT broker.
type MQTTEmitter struct {
	cfg    *config.Config
	client mqtt.Client

	mu        sync.RWMutex
	published map[string]uint64 // count per topic
	errors    uint64
	connected bool
}

// NewMQTTEmitter creates an emitter. Connect must be called before
// publishing.
func NewMQTTEmitter(cfg *config.Config) *MQTTEmitter {
	return &MQTTEmitter{
		cfg:       cfg,
		published: make(map[string]uint64),
	}
}

// Connect establishes the broker connection with auto-reconnect.
func (e *MQTTEmitter) Connect(ctx context.Context) error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", e.cfg.MQTT.Broker))
	opts.SetClientID(e.cfg.InstanceID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)

	opts.OnConnect = func(c mqtt.Client) {
		e.mu.Lock()
		e.connected = true
		e.mu.Unlock()
		slog.Info("emitter: mqtt connection established",
			"broker", e.cfg.MQTT.Broker,
			"client_id", e.cfg.InstanceID,
		)
	}

	opts.OnConnectionLost = func(c mqtt.Client, err error) {
		e.mu.Lock()
		e.connected = false
		e.mu.Unlock()
		slog.Warn("emitter: mqtt connection lost, will auto-reconnect",
			"error", err,
			"broker", e.cfg.MQTT.Broker,
		)
	}

	e.client = mqtt.NewClient(opts)

	slog.Info("emitter: connecting to mqtt broker", "broker", e.cfg.MQTT.Broker)

	token := e.client.Connect()
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("emitter: mqtt connection timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("emitter: mqtt connection failed: %w", err)
	}

	e.mu.Lock()
	e.connected = true
	e.mu.Unlock()

	return nil
}

// PublishReading publishes a tracker reading (msgpack payload).
func (e *MQTTEmitter) PublishReading(r tracker.Reading) error {
	if !e.isConnected() {
		e.recordError()
		return fmt.Errorf("emitter: mqtt not connected")
	}

	payload, err := EncodeReading(e.cfg.InstanceID, r)
	if err != nil {
		e.recordError()
		return fmt.Errorf("emitter: failed to marshal reading: %w", err)
	}

	topic := e.cfg.MQTT.Topics.Readings
	if err := e.publish(topic, e.qos("readings"), payload); err != nil {
		return err
	}

	slog.Debug("emitter: reading published",
		"topic", topic,
		"seq", r.Seq,
		"trace_id", r.TraceID,
		"size", len(payload),
	)
	return nil
}

// PublishHealth publishes a health report (JSON payload).
func (e *MQTTEmitter) PublishHealth(p HealthPayload) error {
	if !e.isConnected() {
		e.recordError()
		return fmt.Errorf("emitter: mqtt not connected")
	}

	payload, err := EncodeHealth(p)
	if err != nil {
		e.recordError()
		return fmt.Errorf("emitter: failed to marshal health: %w", err)
	}

	return e.publish(e.cfg.MQTT.Topics.Health, e.qos("health"), payload)
}

// Disconnect flushes and closes the broker connection. Safe when never
// connected.
func (e *MQTTEmitter) Disconnect() {
	if e.client == nil {
		return
	}
	e.client.Disconnect(250) // quiesce period in ms

	e.mu.Lock()
	e.connected = false
	e.mu.Unlock()

	slog.Info("emitter: mqtt disconnected")
}

// Stats returns per-topic publish counts and the error count.
func (e *MQTTEmitter) Stats() (published map[string]uint64, errors uint64) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[string]uint64, len(e.published))
	for k, v := range e.published {
		out[k] = v
	}
	return out, e.errors
}

func (e *MQTTEmitter) publish(topic string, qos byte, payload []byte) error {
	token := e.client.Publish(topic, qos, false, payload)
	if !token.WaitTimeout(2 * time.Second) {
		e.recordError()
		return fmt.Errorf("emitter: publish timeout on %s", topic)
	}
	if err := token.Error(); err != nil {
		e.recordError()
		return fmt.Errorf("emitter: publish failed on %s: %w", topic, err)
	}

	e.mu.Lock()
	e.published[topic]++
	e.mu.Unlock()
	return nil
}

func (e *MQTTEmitter) qos(kind string) byte {
	return e.cfg.MQTT.QoS[kind]
}

func (e *MQTTEmitter) isConnected() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.connected
}

func (e *MQTTEmitter) recordError() {
	e.mu.Lock()
	e.errors++
	e.mu.Unlock()
}
