package variable

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/scenewire/engine/internal/events"
)

// SceneVariable is a named, typed value bridging external data sources and
// animations. Identity is ID; Name is the human-facing label used by the
// authoring UI and is not required to be unique.
type SceneVariable struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Type         Type   `json:"type"`
	Value        Value  `json:"value"`
	DefaultValue Value  `json:"defaultValue"`
}

// Change describes one applied variable write.
type Change struct {
	VariableID string
	Old        Value
	New        Value
}

// Listener receives change notifications. Listeners are invoked
// synchronously after the write is applied, outside the store lock.
type Listener func(Change)

// Store is the authoritative id -> SceneVariable table. All mutation goes
// through Set so the declared-type invariant holds at every write.
type Store struct {
	mu        sync.RWMutex
	vars      map[string]*SceneVariable
	listeners []Listener
}

// NewStore creates an empty variable store.
func NewStore() *Store {
	return &Store{
		vars: make(map[string]*SceneVariable),
	}
}

// Define creates a variable with a generated ID and the default value
// coerced to the declared type. Rejects unknown types.
func (s *Store) Define(name string, typ Type, defaultValue interface{}) (*SceneVariable, error) {
	if !ValidType(typ) {
		return nil, fmt.Errorf("unknown variable type %q", typ)
	}

	// Best-effort default: coercion failures fall back to the zero value.
	def, _ := Coerce(defaultValue, typ)

	v := &SceneVariable{
		ID:           uuid.New().String(),
		Name:         name,
		Type:         typ,
		Value:        def,
		DefaultValue: def,
	}

	s.mu.Lock()
	s.vars[v.ID] = v
	s.mu.Unlock()

	events.Emit("info", "variable.created", "", map[string]interface{}{
		"variable_id": v.ID,
		"name":        name,
		"type":        string(typ),
	})

	cpy := *v
	return &cpy, nil
}

// Restore inserts a variable restored from persisted state, keeping its ID.
func (s *Store) Restore(v SceneVariable) error {
	if v.ID == "" {
		return fmt.Errorf("variable id required")
	}
	if !ValidType(v.Type) {
		return fmt.Errorf("unknown variable type %q", v.Type)
	}

	s.mu.Lock()
	cpy := v
	s.vars[v.ID] = &cpy
	s.mu.Unlock()
	return nil
}

// Remove deletes a variable. Bindings and animations referencing it become
// dangling and are skipped per cycle by their owners, not auto-deleted.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	_, existed := s.vars[id]
	delete(s.vars, id)
	s.mu.Unlock()

	if existed {
		events.Emit("info", "variable.removed", "", map[string]interface{}{
			"variable_id": id,
		})
	}
}

// Get returns a copy of the variable, or false if it does not exist.
func (s *Store) Get(id string) (SceneVariable, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.vars[id]; ok {
		return *v, true
	}
	return SceneVariable{}, false
}

// FindByName returns the first variable with the given name.
func (s *Store) FindByName(name string) (SceneVariable, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, v := range s.vars {
		if v.Name == name {
			return *v, true
		}
	}
	return SceneVariable{}, false
}

// All returns a snapshot of every variable.
func (s *Store) All() []SceneVariable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]SceneVariable, 0, len(s.vars))
	for _, v := range s.vars {
		out = append(out, *v)
	}
	return out
}

// OnChange registers a change listener. Registration is not reversible;
// listeners live as long as the store.
func (s *Store) OnChange(fn Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Set coerces raw against the variable's declared type and applies the
// write. A write that does not change the coerced value fires no
// notification; re-delivering unchanged values would restart onTrigger
// animations on every poll. Coercion failures leave the variable untouched
// and are returned for the caller's telemetry.
func (s *Store) Set(id string, raw interface{}) (Change, bool, error) {
	s.mu.Lock()
	v, ok := s.vars[id]
	if !ok {
		s.mu.Unlock()
		return Change{}, false, fmt.Errorf("variable not found: %s", id)
	}

	coerced, err := Coerce(raw, v.Type)
	if err != nil {
		s.mu.Unlock()
		return Change{}, false, err
	}

	if coerced.Equal(v.Value) {
		s.mu.Unlock()
		return Change{VariableID: id, Old: v.Value, New: coerced}, false, nil
	}

	old := v.Value
	v.Value = coerced
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	ch := Change{VariableID: id, Old: old, New: coerced}

	events.Emit("info", "variable.changed", "", map[string]interface{}{
		"variable_id": id,
		"old":         old.Interface(),
		"new":         coerced.Interface(),
	})

	for _, fn := range listeners {
		fn(ch)
	}

	return ch, true, nil
}

// Reset writes the variable's default value back.
func (s *Store) Reset(id string) error {
	s.mu.RLock()
	v, ok := s.vars[id]
	if !ok {
		s.mu.RUnlock()
		return fmt.Errorf("variable not found: %s", id)
	}
	def := v.DefaultValue.Interface()
	s.mu.RUnlock()

	_, _, err := s.Set(id, def)
	return err
}

// Count returns the number of variables.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vars)
}
