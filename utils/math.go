package utils

import (
	"math"
)

// DegToRad converts degrees to radians.
func DegToRad(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(radians float64) float64 {
	return radians * 180 / math.Pi
}

// Clamp returns value constrained to [low, high]. NaN is mapped to low so that a corrupted
// computation can never escape the range.
func Clamp(value, low, high float64) float64 {
	if math.IsNaN(value) {
		return low
	}
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}

// ClampSigned constrains value to [-1, 1] mapping NaN to 0.
func ClampSigned(value float64) float64 {
	if math.IsNaN(value) {
		return 0
	}
	return Clamp(value, -1, 1)
}

// ScaleByPct scales a max number by a floating point percentage between two bounds [0, n].
func ScaleByPct(n int, pct float64) int {
	scaled := int(float64(n) * pct)
	if scaled < 0 {
		scaled = 0
	} else if scaled > n {
		scaled = n
	}
	return scaled
}

// Lerp maps t in [0, 1] linearly onto [from, to].
func Lerp(from, to, t float64) float64 {
	return from + (to-from)*t
}

// Float64AlmostEqual compares two float64s and returns if the difference between them is less
// than epsilon.
func Float64AlmostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}
