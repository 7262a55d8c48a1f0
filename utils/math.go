package utils

import "math"

// TwoPi is a full revolution in radians.
const TwoPi = 2 * math.Pi

// DegToRad converts degrees to radians.
func DegToRad(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(radians float64) float64 {
	return radians * 180 / math.Pi
}

// NormalizeAngle wraps an angle in radians into (-π, π] by repeated ±2π correction.
// Inputs are expected to be within a couple of revolutions of the range; the loop is not
// a substitute for math.Remainder on arbitrary values.
func NormalizeAngle(rad float64) float64 {
	for rad > math.Pi {
		rad -= TwoPi
	}
	for rad <= -math.Pi {
		rad += TwoPi
	}
	return rad
}

// ShortestHeading returns the heading equivalent to target that lies within (-π, π] of current,
// so that turning from current to the result never takes the long way round.
func ShortestHeading(current, target float64) float64 {
	return current + NormalizeAngle(target-current)
}

// Clamp restricts v to the range [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
