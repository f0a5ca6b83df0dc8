package animation

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/scenewire/engine/internal/scene"
)

// Mode selects how an animation reacts to variable changes.
type Mode string

const (
	// ModeRealtime re-maps the variable into the property on every change,
	// immediately, with no interpolation.
	ModeRealtime Mode = "realtime"
	// ModeOnTrigger starts a time-bounded eased tween on every change.
	ModeOnTrigger Mode = "onTrigger"
)

// Animation maps one scene variable onto one object property.
type Animation struct {
	ID          string         `json:"id"`
	VariableID  string         `json:"variableId"`
	ObjectID    string         `json:"objectId"`
	Property    scene.Property `json:"property"`
	InputRange  [2]float64     `json:"inputRange"`
	OutputRange [2]float64     `json:"outputRange"`
	Mode        Mode           `json:"mode"`
	Easing      string         `json:"easing"`
	Duration    time.Duration  `json:"duration"`
	Clamp       bool           `json:"clamp"`
}

// New creates an animation with a generated ID.
func New(variableID, objectID string, prop scene.Property) *Animation {
	return &Animation{
		ID:          uuid.New().String(),
		VariableID:  variableID,
		ObjectID:    objectID,
		Property:    prop,
		InputRange:  [2]float64{0, 1},
		OutputRange: [2]float64{0, 1},
		Mode:        ModeRealtime,
		Easing:      "linear",
	}
}

// Validate rejects configurations that would misbehave mid-run. Called at
// creation time; a degenerate input range would otherwise divide by zero on
// every evaluation.
func (a *Animation) Validate() error {
	if a.VariableID == "" {
		return fmt.Errorf("animation %s: variableId required", a.ID)
	}
	if a.ObjectID == "" {
		return fmt.Errorf("animation %s: objectId required", a.ID)
	}
	if !scene.ValidProperty(a.Property) {
		return fmt.Errorf("animation %s: unknown property %q", a.ID, a.Property)
	}
	if a.InputRange[0] == a.InputRange[1] {
		return fmt.Errorf("animation %s: input range must not be zero-width", a.ID)
	}
	if a.Mode != ModeRealtime && a.Mode != ModeOnTrigger {
		return fmt.Errorf("animation %s: unknown mode %q", a.ID, a.Mode)
	}
	if a.Mode == ModeOnTrigger {
		if !ValidEasing(a.Easing) {
			return fmt.Errorf("animation %s: unknown easing %q", a.ID, a.Easing)
		}
		if a.Duration < 0 {
			return fmt.Errorf("animation %s: duration must be non-negative", a.ID)
		}
	}
	return nil
}

// Map runs the animation's range mapping for a variable value.
func (a *Animation) Map(value float64) float64 {
	return MapRange(value,
		a.InputRange[0], a.InputRange[1],
		a.OutputRange[0], a.OutputRange[1],
		a.Clamp)
}
