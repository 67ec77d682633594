package motors

import (
	"math"
	"strings"

	"go.viam.com/kestrel/utils"
)

// LimitFlags records which limits were hit during the last mixing cycle. Hitting a limit is
// normal operation, not an error.
type LimitFlags struct {
	// RollPitchYaw is set when attitude demand was scaled down to fit the motors.
	RollPitchYaw bool
	// ThrottleUpper is set when collective throttle was lowered because motors hit full thrust.
	ThrottleUpper bool
	// ThrottleLower is set when collective throttle was raised because motors hit zero.
	ThrottleLower bool
	// Vane is set when any vane deflection was clamped.
	Vane bool
}

// Any reports whether any limit was hit.
func (f LimitFlags) Any() bool {
	return f.RollPitchYaw || f.ThrottleUpper || f.ThrottleLower || f.Vane
}

func (f LimitFlags) String() string {
	var parts []string
	if f.RollPitchYaw {
		parts = append(parts, "rpy")
	}
	if f.ThrottleUpper {
		parts = append(parts, "throttle-upper")
	}
	if f.ThrottleLower {
		parts = append(parts, "throttle-lower")
	}
	if f.Vane {
		parts = append(parts, "vane")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ",")
}

// saturate fits throttle[i]+attitude[i] into [0, 1] for every motor.
//
// Attitude is scaled by the largest k <= 1 that fits with throttle untouched. Since throttle is
// in [0, 1] such a k always exists. If that leaves less than minAuthority of the attitude
// demand, k is held at minAuthority (or the most the motor spread allows) and the collective
// throttle is moved instead. A minAuthority of 0 never moves throttle.
func saturate(throttle, attitude [numPositions]float64, minAuthority float64) ([numPositions]float64, LimitFlags) {
	var flags LimitFlags

	k := 1.0
	for i := range throttle {
		t, a := throttle[i], attitude[i]
		switch {
		case a > 0 && t+a > 1:
			k = math.Min(k, math.Max(1-t, 0)/a)
		case a < 0 && t+a < 0:
			k = math.Min(k, math.Max(t, 0)/-a)
		}
	}
	if k < 1 {
		flags.RollPitchYaw = true
	}

	shift := 0.0
	if k < minAuthority {
		k = minAuthority
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, a := range attitude {
			lo = math.Min(lo, a)
			hi = math.Max(hi, a)
		}
		if spread := hi - lo; spread*k > 1 {
			k = 1 / spread
		}
		lo, hi = math.Inf(1), math.Inf(-1)
		for i := range throttle {
			v := throttle[i] + k*attitude[i]
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		switch {
		case hi > 1:
			shift = 1 - hi
			flags.ThrottleUpper = true
		case lo < 0:
			shift = -lo
			flags.ThrottleLower = true
		}
	}

	var out [numPositions]float64
	for i := range out {
		out[i] = utils.Clamp(throttle[i]+shift+k*attitude[i], 0, 1)
	}
	return out, flags
}
