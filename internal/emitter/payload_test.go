package emitter

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/Real-Time-Stewart-Solar-Tracker/Solar-Stewart-Tracker/internal/tracker"
)

// TestEncodeReading verifies the msgpack payload carries the full reading.
func TestEncodeReading(t *testing.T) {
	ts := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	r := tracker.Reading{
		Seq:       42,
		Timestamp: ts,
		CameraID:  "imx477",
		TraceID:   "trace-42",
		OffsetX:   -0.25,
		OffsetY:   0.125,
		Peak:      250,
		Locked:    true,
	}

	data, err := EncodeReading("tracker-1", r)
	if err != nil {
		t.Fatalf("EncodeReading failed: %v", err)
	}

	p, err := DecodeReading(data)
	if err != nil {
		t.Fatalf("DecodeReading failed: %v", err)
	}

	if p.InstanceID != "tracker-1" || p.Seq != 42 || p.TraceID != "trace-42" {
		t.Errorf("identity fields = %+v", p)
	}
	if p.TimestampMS != ts.UnixMilli() {
		t.Errorf("TimestampMS = %d, want %d", p.TimestampMS, ts.UnixMilli())
	}
	if p.OffsetX != -0.25 || p.OffsetY != 0.125 || p.Peak != 250 || !p.Locked {
		t.Errorf("reading fields = %+v", p)
	}
}

// TestEncodeHealth verifies the health report is valid JSON with the
// expected keys.
func TestEncodeHealth(t *testing.T) {
	data, err := EncodeHealth(HealthPayload{
		InstanceID: "tracker-1",
		Timestamp:  time.Now(),
		QueueLen:   3,
		Processed:  100,
		LockLost:   2,
	})
	if err != nil {
		t.Fatalf("EncodeHealth failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("health payload is not valid JSON: %v", err)
	}
	for _, key := range []string{"instance_id", "timestamp", "queue_len", "processed", "lock_lost"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("health payload missing key %q", key)
		}
	}
}
