package animation

import "github.com/tanema/gween/ease"

// easings is the fixed curve table. It maps curve names to gween ease
// functions and is never mutated at runtime.
var easings = map[string]ease.TweenFunc{
	"linear": ease.Linear,

	"quadIn":    ease.InQuad,
	"quadOut":   ease.OutQuad,
	"quadInOut": ease.InOutQuad,

	"cubicIn":    ease.InCubic,
	"cubicOut":   ease.OutCubic,
	"cubicInOut": ease.InOutCubic,

	"elasticIn":    ease.InElastic,
	"elasticOut":   ease.OutElastic,
	"elasticInOut": ease.InOutElastic,

	"bounceIn":    ease.InBounce,
	"bounceOut":   ease.OutBounce,
	"bounceInOut": ease.InOutBounce,
}

// EasingNames returns the supported curve names.
func EasingNames() []string {
	names := make([]string, 0, len(easings))
	for name := range easings {
		names = append(names, name)
	}
	return names
}

// ValidEasing returns true if name is a supported curve.
func ValidEasing(name string) bool {
	_, ok := easings[name]
	return ok
}

// EasingFunc returns the curve for name, falling back to linear for
// anything unknown so a stale animation definition still animates.
func EasingFunc(name string) ease.TweenFunc {
	if fn, ok := easings[name]; ok {
		return fn
	}
	return ease.Linear
}

// Ease maps normalized progress t through the named curve. Endpoints are
// pinned: t<=0 yields exactly 0 and t>=1 exactly 1, so tweens land
// precisely on target even for curves whose intermediate values overshoot
// (elastic, bounce).
func Ease(name string, t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return float64(EasingFunc(name)(float32(t), 0, 1, 1))
}
