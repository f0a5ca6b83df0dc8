package animation

// MapRange linearly maps value from [inLo,inHi] to [outLo,outHi]. With
// clamp, the result is bounded to the output range regardless of direction
// (the output range may be descending). A degenerate input range
// (inLo == inHi) is a configuration error and must be rejected before an
// animation is ever evaluated; see Animation.Validate.
func MapRange(value, inLo, inHi, outLo, outHi float64, clamp bool) float64 {
	normalized := (value - inLo) / (inHi - inLo)
	result := outLo + normalized*(outHi-outLo)

	if clamp {
		lo, hi := outLo, outHi
		if lo > hi {
			lo, hi = hi, lo
		}
		if result < lo {
			return lo
		}
		if result > hi {
			return hi
		}
	}

	return result
}
