package events

import (
	"encoding/json"
	"testing"
)

func TestEmitRejectsUnknownNames(t *testing.T) {
	if _, err := Emit("info", "made.up", "", nil); err == nil {
		t.Error("expected unknown event name to be rejected")
	}
}

func TestEmitReturnsJSON(t *testing.T) {
	b, err := Emit("info", "variable.changed", "hello", map[string]interface{}{
		"variable_id": "v1",
	})
	if err != nil {
		t.Fatalf("emit failed: %v", err)
	}

	var e Event
	if err := json.Unmarshal(b, &e); err != nil {
		t.Fatalf("emit produced invalid json: %v", err)
	}
	if e.Name != "variable.changed" || e.Level != "info" || e.Message != "hello" {
		t.Errorf("unexpected event: %+v", e)
	}
	if e.Fields["variable_id"] != "v1" {
		t.Errorf("fields lost: %+v", e.Fields)
	}
	if e.Timestamp == "" {
		t.Error("expected a timestamp")
	}
}

func TestTotalCountMonotonic(t *testing.T) {
	before := TotalCount()
	Emit("info", "system.startup", "", nil)
	Emit("info", "system.shutdown", "", nil)
	if got := TotalCount(); got != before+2 {
		t.Errorf("expected count %d, got %d", before+2, got)
	}
}

func TestRingBufferWraps(t *testing.T) {
	rb := NewRingBuffer(4)
	for i := 0; i < 6; i++ {
		rb.Add(Event{Fields: map[string]interface{}{"i": i}})
	}

	snap := rb.Snapshot()
	if len(snap) != 4 {
		t.Fatalf("expected 4 events after wrap, got %d", len(snap))
	}
	// Oldest surviving event is i=2.
	if snap[0].Fields["i"] != 2 || snap[3].Fields["i"] != 5 {
		t.Errorf("wrong window after wrap: first=%v last=%v", snap[0].Fields["i"], snap[3].Fields["i"])
	}
}

func TestRingBufferClear(t *testing.T) {
	rb := NewRingBuffer(4)
	rb.Add(Event{Name: "system.startup"})
	rb.Clear()
	if got := len(rb.Snapshot()); got != 0 {
		t.Errorf("expected empty buffer after clear, got %d", got)
	}
}
