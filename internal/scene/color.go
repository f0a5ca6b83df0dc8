package scene

import "math"

// RGBToHSL converts an RGB color to hue/saturation/lightness, all in [0,1].
func RGBToHSL(c Color) (h, s, l float64) {
	r, g, b := clamp01(c.R), clamp01(c.G), clamp01(c.B)

	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	l = (max + min) / 2

	if max == min {
		return 0, 0, l // achromatic
	}

	d := max - min
	if l > 0.5 {
		s = d / (2 - max - min)
	} else {
		s = d / (max + min)
	}

	switch max {
	case r:
		h = (g - b) / d
		if g < b {
			h += 6
		}
	case g:
		h = (b-r)/d + 2
	case b:
		h = (r-g)/d + 4
	}
	h /= 6

	return h, s, l
}

// HSLToRGB converts hue/saturation/lightness in [0,1] back to RGB.
func HSLToRGB(h, s, l float64) Color {
	h = h - math.Floor(h) // wrap hue
	s = clamp01(s)
	l = clamp01(l)

	if s == 0 {
		return Color{R: l, G: l, B: l}
	}

	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q

	return Color{
		R: hueToChannel(p, q, h+1.0/3.0),
		G: hueToChannel(p, q, h),
		B: hueToChannel(p, q, h-1.0/3.0),
	}
}

func hueToChannel(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 1.0/2.0:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
