package binding

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/scenewire/engine/internal/events"
	"github.com/scenewire/engine/internal/variable"
)

// worker is one running source loop. stop must be safe to call once and
// must not block on in-flight I/O.
type worker interface {
	stop()
}

type runningWorker struct {
	rev int
	w   worker
}

// TransformFunc is a caller-registered function applied to a webhook
// binding's extracted value before coercion.
type TransformFunc func(value interface{}) interface{}

// Manager owns one worker per enabled binding and reconciles the worker set
// against the binding table. All source data funnels through apply:
// path-extract, optional transform, coerce, write to the variable store.
type Manager struct {
	store      *variable.Store
	httpClient *http.Client

	mu         sync.Mutex
	bindings   map[string]*DataBinding
	workers    map[string]runningWorker
	transforms map[string]TransformFunc
	closed     bool
}

// NewManager creates a manager writing into store.
func NewManager(store *variable.Store) *Manager {
	return &Manager{
		store:      store,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		bindings:   make(map[string]*DataBinding),
		workers:    make(map[string]runningWorker),
		transforms: make(map[string]TransformFunc),
	}
}

// RegisterTransform registers a named value transform for webhook bindings.
func (m *Manager) RegisterTransform(name string, fn TransformFunc) {
	m.mu.Lock()
	m.transforms[name] = fn
	m.mu.Unlock()
}

// SetBinding creates or replaces a binding definition and reconciles
// workers. Invalid bindings are rejected before any worker is touched.
func (m *Manager) SetBinding(b *DataBinding) error {
	if err := b.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return fmt.Errorf("binding manager closed")
	}
	cpy := *b
	_, existed := m.bindings[b.ID]
	cpy.rev = m.nextRev(b.ID)
	m.bindings[b.ID] = &cpy
	m.mu.Unlock()

	name := "binding.created"
	if existed {
		name = "binding.updated"
	}
	events.Emit("info", name, "", map[string]interface{}{
		"binding_id":  b.ID,
		"variable_id": b.VariableID,
		"source":      string(b.Source),
		"enabled":     b.Enabled,
	})

	m.reconcile()
	return nil
}

func (m *Manager) nextRev(id string) int {
	if prev, ok := m.bindings[id]; ok {
		return prev.rev + 1
	}
	return 1
}

// RemoveBinding deletes a binding and stops its worker.
func (m *Manager) RemoveBinding(id string) {
	m.mu.Lock()
	_, existed := m.bindings[id]
	delete(m.bindings, id)
	m.mu.Unlock()

	if existed {
		events.Emit("info", "binding.removed", "", map[string]interface{}{
			"binding_id": id,
		})
	}

	m.reconcile()
}

// EnableBinding flips a binding's enabled flag and reconciles. A disabled
// binding's worker is stopped deterministically; any response still in
// flight is discarded when it lands.
func (m *Manager) EnableBinding(id string, enabled bool) error {
	m.mu.Lock()
	b, ok := m.bindings[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("binding not found: %s", id)
	}
	changed := b.Enabled != enabled
	b.Enabled = enabled
	m.mu.Unlock()

	if changed {
		events.Emit("info", "binding.updated", "", map[string]interface{}{
			"binding_id": id,
			"enabled":    enabled,
		})
	}

	m.reconcile()
	return nil
}

// Get returns a copy of the binding, or false if unknown.
func (m *Manager) Get(id string) (DataBinding, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.bindings[id]; ok {
		return *b, true
	}
	return DataBinding{}, false
}

// All returns a snapshot of every binding.
func (m *Manager) All() []DataBinding {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]DataBinding, 0, len(m.bindings))
	for _, b := range m.bindings {
		out = append(out, *b)
	}
	return out
}

// RunningWorkers returns the number of live source workers.
func (m *Manager) RunningWorkers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.workers)
}

// reconcile diffs the desired worker set (enabled, non-webhook bindings)
// against running workers and starts/stops exactly the deltas. Unaffected
// workers keep running: restarting an API poller would reset its phase and
// restarting a healthy websocket would cause reconnect churn.
func (m *Manager) reconcile() {
	m.mu.Lock()

	var toStop []worker
	var stopped []string
	for id, rw := range m.workers {
		b, ok := m.bindings[id]
		if !ok || !b.Enabled || rw.rev != b.rev {
			toStop = append(toStop, rw.w)
			stopped = append(stopped, id)
			delete(m.workers, id)
		}
	}

	var started []string
	if !m.closed {
		for id, b := range m.bindings {
			if !b.Enabled || b.Source == SourceWebhook {
				continue
			}
			if _, ok := m.workers[id]; ok {
				continue
			}

			var w worker
			switch b.Source {
			case SourceAPI:
				w = startAPIWorker(m, *b, b.rev)
			case SourceWebSocket:
				w = startWSWorker(m, *b, b.rev)
			case SourceMQTT:
				w = startMQTTWorker(m, *b, b.rev)
			}
			if w != nil {
				m.workers[id] = runningWorker{rev: b.rev, w: w}
				started = append(started, id)
			}
		}
	}
	m.mu.Unlock()

	for _, w := range toStop {
		w.stop()
	}
	for _, id := range stopped {
		events.Emit("info", "binding.stopped", "", map[string]interface{}{"binding_id": id})
	}
	for _, id := range started {
		events.Emit("info", "binding.started", "", map[string]interface{}{"binding_id": id})
	}
}

// ProcessWebhookData fans an inbound payload out to every enabled webhook
// binding referencing webhookID. Each binding extracts and coerces
// independently; one payload can update multiple variables.
func (m *Manager) ProcessWebhookData(webhookID string, payload interface{}) {
	m.mu.Lock()
	var matched []string
	for id, b := range m.bindings {
		if b.Enabled && b.Source == SourceWebhook && b.Webhook != nil && b.Webhook.WebhookID == webhookID {
			matched = append(matched, id)
		}
	}
	m.mu.Unlock()

	events.Emit("info", "webhook.received", "", map[string]interface{}{
		"webhook_id": webhookID,
		"bindings":   len(matched),
	})

	for _, id := range matched {
		m.apply(id, -1, payload)
	}
}

// apply pushes one decoded payload through a binding's pipeline. rev guards
// against late arrivals: a worker's result is discarded if the binding was
// disabled, deleted or redefined while the request was in flight. rev < 0
// skips the worker check (webhook fan-out has no worker).
func (m *Manager) apply(bindingID string, rev int, payload interface{}) {
	m.mu.Lock()
	b, ok := m.bindings[bindingID]
	if !ok || !b.Enabled || m.closed {
		m.mu.Unlock()
		return
	}
	if rev >= 0 {
		rw, running := m.workers[bindingID]
		if !running || rw.rev != rev {
			m.mu.Unlock()
			return
		}
	}
	path := b.jsonPath()
	varID := b.VariableID
	var transform TransformFunc
	if b.Webhook != nil && b.Webhook.Transform != "" {
		transform = m.transforms[b.Webhook.Transform]
	}
	m.mu.Unlock()

	value, found := variable.Extract(payload, path)
	if !found {
		m.recordError(bindingID, fmt.Errorf("path %q not found in payload", path))
		return
	}

	if transform != nil {
		value = transform(value)
	}

	ch, _, err := m.store.Set(varID, value)
	if err != nil {
		m.recordError(bindingID, err)
		return
	}

	m.recordSuccess(bindingID, ch.New)
}

// recordError writes error telemetry onto the binding. Transient failures
// never stop the worker; the schedule is the sole pacing control.
func (m *Manager) recordError(bindingID string, err error) {
	m.mu.Lock()
	if b, ok := m.bindings[bindingID]; ok {
		b.Error = err.Error()
	}
	m.mu.Unlock()

	events.Emit("error", "binding.error", err.Error(), map[string]interface{}{
		"binding_id": bindingID,
	})
}

func (m *Manager) recordSuccess(bindingID string, v variable.Value) {
	m.mu.Lock()
	if b, ok := m.bindings[bindingID]; ok {
		b.LastUpdated = time.Now().UTC()
		b.LastValue = v
		b.Error = ""
	}
	m.mu.Unlock()
}

// disableAfterOneShot is called by an API worker whose refreshInterval is
// zero, after its single fetch. The binding transitions to disabled.
func (m *Manager) disableAfterOneShot(bindingID string, rev int) {
	m.mu.Lock()
	b, ok := m.bindings[bindingID]
	if !ok || b.rev != rev {
		m.mu.Unlock()
		return
	}
	b.Enabled = false
	delete(m.workers, bindingID)
	m.mu.Unlock()

	events.Emit("info", "binding.stopped", "one-shot fetch complete", map[string]interface{}{
		"binding_id": bindingID,
	})
}

// Close stops every worker. No background work may touch the store
// afterward.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	workers := make([]worker, 0, len(m.workers))
	for _, rw := range m.workers {
		workers = append(workers, rw.w)
	}
	m.workers = make(map[string]runningWorker)
	m.mu.Unlock()

	for _, w := range workers {
		w.stop()
	}
}
