package emitter

import (
	"encoding/json"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/Real-Time-Stewart-Solar-Tracker/Solar-Stewart-Tracker/internal/tracker"
)

// ReadingPayload is the wire form of a tracker reading. Readings are
// emitted at frame rate, so the payload is msgpack (compact binary) rather
// than JSON.
type ReadingPayload struct {
	InstanceID  string  `msgpack:"instance_id"`
	Seq         uint64  `msgpack:"seq"`
	TimestampMS int64   `msgpack:"ts_ms"` // capture time, unix milliseconds
	CameraID    string  `msgpack:"camera_id"`
	TraceID     string  `msgpack:"trace_id"`
	OffsetX     float64 `msgpack:"offset_x"`
	OffsetY     float64 `msgpack:"offset_y"`
	Peak        uint8   `msgpack:"peak"`
	Locked      bool    `msgpack:"locked"`
}

// EncodeReading marshals a reading for publication.
func EncodeReading(instanceID string, r tracker.Reading) ([]byte, error) {
	return msgpack.Marshal(ReadingPayload{
		InstanceID:  instanceID,
		Seq:         r.Seq,
		TimestampMS: r.Timestamp.UnixMilli(),
		CameraID:    r.CameraID,
		TraceID:     r.TraceID,
		OffsetX:     r.OffsetX,
		OffsetY:     r.OffsetY,
		Peak:        r.Peak,
		Locked:      r.Locked,
	})
}

// DecodeReading unmarshals a published reading (used by consumers and
// tests).
func DecodeReading(data []byte) (ReadingPayload, error) {
	var p ReadingPayload
	err := msgpack.Unmarshal(data, &p)
	return p, err
}

// HealthPayload is the wire form of a periodic health report. Health is
// low-rate and read by humans as often as machines, so it stays JSON.
type HealthPayload struct {
	InstanceID string    `json:"instance_id"`
	Timestamp  time.Time `json:"timestamp"`
	QueueLen   int       `json:"queue_len"`
	Processed  uint64    `json:"processed"`
	LockLost   uint64    `json:"lock_lost"`
}

// EncodeHealth marshals a health report for publication.
func EncodeHealth(p HealthPayload) ([]byte, error) {
	return json.Marshal(p)
}
