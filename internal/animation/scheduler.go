package animation

import (
	"fmt"
	"sync"
	"time"

	"github.com/tanema/gween"

	"github.com/scenewire/engine/internal/events"
	"github.com/scenewire/engine/internal/scene"
	"github.com/scenewire/engine/internal/variable"
)

const defaultTickInterval = 16 * time.Millisecond

// activeTween is one in-flight interpolation owned by a triggered animation.
// At most one exists per animation id; re-triggering overwrites it.
type activeTween struct {
	anim   *Animation
	tween  *gween.Tween
	target float64
	last   time.Time
}

// Scheduler reacts to variable changes: realtime animations get an
// immediate range-mapped property write, onTrigger animations get a tween.
// A single shared tick loop drives all tweens and runs only while the
// active-tween table is non-empty.
type Scheduler struct {
	store   *variable.Store
	objects *scene.Registry
	tick    time.Duration

	mu         sync.Mutex
	anims      map[string]*Animation
	tweens     map[string]*activeTween
	stopCh     chan struct{} // non-nil while the tick loop runs
	onComplete []func(animationID string)
	closed     bool

	wg sync.WaitGroup
}

// NewScheduler creates a scheduler and subscribes it to store changes.
// tick <= 0 selects the default interval.
func NewScheduler(store *variable.Store, objects *scene.Registry, tick time.Duration) *Scheduler {
	if tick <= 0 {
		tick = defaultTickInterval
	}
	s := &Scheduler{
		store:   store,
		objects: objects,
		tick:    tick,
		anims:   make(map[string]*Animation),
		tweens:  make(map[string]*activeTween),
	}
	store.OnChange(s.handleChange)
	return s
}

// Add validates and registers an animation.
func (s *Scheduler) Add(a *Animation) error {
	if err := a.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	s.anims[a.ID] = a
	s.mu.Unlock()

	events.Emit("info", "animation.created", "", map[string]interface{}{
		"animation_id": a.ID,
		"variable_id":  a.VariableID,
		"object_id":    a.ObjectID,
		"property":     string(a.Property),
		"mode":         string(a.Mode),
	})
	return nil
}

// Remove deletes an animation and its in-flight tween, if any.
func (s *Scheduler) Remove(id string) {
	s.mu.Lock()
	_, existed := s.anims[id]
	delete(s.anims, id)
	delete(s.tweens, id)
	s.mu.Unlock()

	if existed {
		events.Emit("info", "animation.removed", "", map[string]interface{}{
			"animation_id": id,
		})
	}
}

// Get returns a copy of the animation, or false if not found.
func (s *Scheduler) Get(id string) (Animation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.anims[id]; ok {
		return *a, true
	}
	return Animation{}, false
}

// All returns a snapshot of every animation.
func (s *Scheduler) All() []Animation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Animation, 0, len(s.anims))
	for _, a := range s.anims {
		out = append(out, *a)
	}
	return out
}

// ActiveTweens returns the number of in-flight tweens.
func (s *Scheduler) ActiveTweens() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tweens)
}

// OnComplete registers a callback fired after a tween finishes.
func (s *Scheduler) OnComplete(fn func(animationID string)) {
	s.mu.Lock()
	s.onComplete = append(s.onComplete, fn)
	s.mu.Unlock()
}

// Trigger fires an animation from the variable's current value, without a
// store write. Used for replay/testing from the authoring UI.
func (s *Scheduler) Trigger(animationID string) error {
	s.mu.Lock()
	a, ok := s.anims[animationID]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("animation not found: %s", animationID)
	}

	v, ok := s.store.Get(a.VariableID)
	if !ok {
		return fmt.Errorf("animation %s: variable not found: %s", animationID, a.VariableID)
	}

	events.Emit("info", "animation.triggered", "", map[string]interface{}{
		"animation_id": animationID,
		"manual":       true,
	})

	s.apply(a, v.Value.AsFloat())
	return nil
}

// handleChange is the store change listener.
func (s *Scheduler) handleChange(ch variable.Change) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	matched := make([]*Animation, 0, 4)
	for _, a := range s.anims {
		if a.VariableID == ch.VariableID {
			matched = append(matched, a)
		}
	}
	s.mu.Unlock()

	for _, a := range matched {
		s.apply(a, ch.New.AsFloat())
	}
}

// apply routes one variable value into one animation. Dangling object
// references are skipped for the cycle, not treated as failures.
func (s *Scheduler) apply(a *Animation, value float64) {
	obj := s.objects.Get(a.ObjectID)
	if obj == nil {
		return
	}

	mapped := a.Map(value)

	if a.Mode == ModeRealtime {
		scene.SetProperty(obj, a.Property, mapped)
		return
	}

	// onTrigger: snapshot the currently rendered value, not the previous
	// variable value, so overlapping triggers compose without jumps.
	start, ok := scene.GetProperty(obj, a.Property)
	if !ok {
		return
	}

	if a.Duration <= 0 {
		scene.SetProperty(obj, a.Property, mapped)
		s.notifyComplete(a.ID)
		return
	}

	now := time.Now()
	tw := &activeTween{
		anim:   a,
		tween:  gween.New(float32(start), float32(mapped), float32(a.Duration.Seconds()), EasingFunc(a.Easing)),
		target: mapped,
		last:   now,
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.tweens[a.ID] = tw
	s.ensureLoopLocked()
	s.mu.Unlock()

	events.Emit("info", "tween.started", "", map[string]interface{}{
		"animation_id": a.ID,
		"from":         start,
		"to":           mapped,
		"duration_ms":  a.Duration.Milliseconds(),
	})
}

// ensureLoopLocked starts the shared tick loop if it is not running.
// Callers hold s.mu.
func (s *Scheduler) ensureLoopLocked() {
	if s.stopCh != nil {
		return
	}
	stop := make(chan struct{})
	s.stopCh = stop
	s.wg.Add(1)
	go s.loop(stop)
}

func (s *Scheduler) loop(stop chan struct{}) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			if s.step(now) {
				return
			}
		}
	}
}

// step advances every active tween. Returns true when the table emptied and
// the loop should exit; the next trigger starts a fresh loop.
func (s *Scheduler) step(now time.Time) bool {
	s.mu.Lock()

	var completed []string
	for id, tw := range s.tweens {
		dt := now.Sub(tw.last).Seconds()
		tw.last = now

		v, finished := tw.tween.Update(float32(dt))

		// Object may have been deleted mid-tween; the tween still runs
		// down its clock so it terminates, the writes just go nowhere.
		obj := s.objects.Get(tw.anim.ObjectID)
		if obj != nil {
			if finished {
				// Land exactly on target.
				scene.SetProperty(obj, tw.anim.Property, tw.target)
			} else {
				scene.SetProperty(obj, tw.anim.Property, float64(v))
			}
		}

		if finished {
			delete(s.tweens, id)
			completed = append(completed, id)
		}
	}

	empty := len(s.tweens) == 0
	if empty && s.stopCh != nil {
		s.stopCh = nil
	}
	s.mu.Unlock()

	for _, id := range completed {
		s.notifyComplete(id)
	}

	return empty
}

func (s *Scheduler) notifyComplete(id string) {
	events.Emit("info", "tween.completed", "", map[string]interface{}{
		"animation_id": id,
	})

	s.mu.Lock()
	callbacks := append([]func(string){}, s.onComplete...)
	s.mu.Unlock()

	for _, fn := range callbacks {
		fn(id)
	}
}

// Close stops the tick loop and clears the tween table. The scheduler
// ignores store changes afterward; no background work targets a disposed
// scene.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	s.tweens = make(map[string]*activeTween)
	if s.stopCh != nil {
		close(s.stopCh)
		s.stopCh = nil
	}
	s.mu.Unlock()
	s.wg.Wait()
}
