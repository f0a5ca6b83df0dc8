package binding

import (
	"testing"
)

// fakeMessage satisfies paho.Message so the message pipeline is testable
// without a broker.
type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 1 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 0 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

// newMQTTTestWorker registers an enabled mqtt binding and its worker
// directly, bypassing reconcile so no paho client ever dials out. The
// manager is not closed: the hand-built worker has no client to disconnect
// and no goroutines run.
func newMQTTTestWorker(t *testing.T) (*Manager, string, string, *mqttWorker) {
	t.Helper()

	store, varID := newTestStore(t)
	mgr := NewManager(store)

	b := NewDataBinding(varID, SourceMQTT)
	b.Enabled = true
	b.MQTT = &MQTTConfig{
		BrokerURL: "tcp://broker:1883",
		Topic:     "sensors/temp",
		JSONPath:  "reading",
	}
	b.rev = 1
	mgr.bindings[b.ID] = b

	w := &mqttWorker{mgr: mgr, binding: *b, rev: 1}
	mgr.workers[b.ID] = runningWorker{rev: 1, w: w}

	return mgr, b.ID, varID, w
}

func TestMQTTMessageWritesStore(t *testing.T) {
	mgr, bindingID, varID, w := newMQTTTestWorker(t)

	w.handleMessage(nil, fakeMessage{topic: "sensors/temp", payload: []byte(`{"reading": 18.5}`)})

	v, _ := mgr.store.Get(varID)
	if v.Value.AsFloat() != 18.5 {
		t.Errorf("expected 18.5 after mqtt message, got %v", v.Value)
	}

	got, _ := mgr.Get(bindingID)
	if got.LastUpdated.IsZero() {
		t.Error("expected lastUpdated telemetry after a successful message")
	}
	if got.Error != "" {
		t.Errorf("expected clear error telemetry, got %q", got.Error)
	}
}

func TestMQTTMessageCoercesToDeclaredType(t *testing.T) {
	mgr, _, varID, w := newMQTTTestWorker(t)

	// A numeric string lands as a number, same as every other source.
	w.handleMessage(nil, fakeMessage{topic: "sensors/temp", payload: []byte(`{"reading": "7"}`)})

	v, _ := mgr.store.Get(varID)
	if v.Value.AsFloat() != 7 {
		t.Errorf("expected coerced 7, got %v", v.Value)
	}
}

func TestMQTTNonJSONMessageIgnored(t *testing.T) {
	mgr, bindingID, varID, w := newMQTTTestWorker(t)

	w.handleMessage(nil, fakeMessage{topic: "sensors/temp", payload: []byte("not json at all")})

	v, _ := mgr.store.Get(varID)
	if v.Value.AsFloat() != 0 {
		t.Errorf("non-JSON message must not write, got %v", v.Value)
	}
	got, _ := mgr.Get(bindingID)
	if got.Error != "" {
		t.Errorf("non-JSON frames must not record errors, got %q", got.Error)
	}
}

func TestMQTTPathMissRecordsError(t *testing.T) {
	mgr, bindingID, varID, w := newMQTTTestWorker(t)

	w.handleMessage(nil, fakeMessage{topic: "sensors/temp", payload: []byte(`{"other": 1}`)})

	v, _ := mgr.store.Get(varID)
	if v.Value.AsFloat() != 0 {
		t.Errorf("path miss must not write, got %v", v.Value)
	}
	got, _ := mgr.Get(bindingID)
	if got.Error == "" {
		t.Error("expected error telemetry for a path miss")
	}
}
