// Package scene holds the object surface the engine animates against. The
// real scene graph (rendering, geometry, hierarchy) lives outside the
// engine; this is the interface boundary it must satisfy.
package scene

import "sync"

// Vec3 is an xyz triple used for position, rotation and scale.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Color is an RGB triple with channels in [0,1].
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// Material carries the animatable material channels. Objects without a
// material simply ignore material-backed property writes.
type Material struct {
	Opacity   float64 `json:"opacity"`
	Color     Color   `json:"color"`
	Roughness float64 `json:"roughness"`
	Metalness float64 `json:"metalness"`
}

// Object is the polymorphic target handle animations write to.
type Object struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Position Vec3      `json:"position"`
	Rotation Vec3      `json:"rotation"`
	Scale    Vec3      `json:"scale"`
	Material *Material `json:"material,omitempty"`
	Visible  bool      `json:"visible"`
}

// NewObject creates an object with identity scale and visibility on.
func NewObject(id, name string) *Object {
	return &Object{
		ID:      id,
		Name:    name,
		Scale:   Vec3{X: 1, Y: 1, Z: 1},
		Visible: true,
	}
}

// Registry maintains the id -> Object table the scheduler resolves targets
// against. It stands in for the external scene graph.
type Registry struct {
	mu      sync.RWMutex
	objects map[string]*Object
}

// NewRegistry creates an empty object registry.
func NewRegistry() *Registry {
	return &Registry{
		objects: make(map[string]*Object),
	}
}

// Add inserts or replaces an object.
func (r *Registry) Add(obj *Object) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.objects[obj.ID] = obj
}

// Remove deletes an object. Animations targeting it become dangling and are
// skipped per cycle.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.objects, id)
}

// Get returns the live object, or nil if not found. The pointer is shared;
// property writes mutate the object the renderer sees.
func (r *Registry) Get(id string) *Object {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.objects[id]
}

// Exists returns true if the object is registered.
func (r *Registry) Exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.objects[id]
	return ok
}

// Count returns the number of registered objects.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.objects)
}
