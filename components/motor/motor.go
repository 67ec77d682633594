// Package motor defines the thrust motors of a frame: brushless motors driven through a PWM
// electronic speed controller.
package motor

import (
	"context"
	"math"
)

// A Motor spins a propeller at a commanded normalized thrust.
type Motor interface {
	// SetThrust sets the thrust between 0 (stopped) and 1 (full). Values outside are clamped.
	SetThrust(ctx context.Context, thrust float64) error

	// Thrust returns the last commanded thrust.
	Thrust(ctx context.Context) (float64, error)

	// SetPulseWidth writes a raw pulse width in microseconds, bypassing the thrust mapping.
	SetPulseWidth(ctx context.Context, widthUs float64) error

	// SetUpdateRate changes the ESC refresh rate in hertz.
	SetUpdateRate(ctx context.Context, hz uint) error

	// Stop sends the minimum pulse.
	Stop(ctx context.Context) error
}

// ClampThrust constrains thrust to [0, 1]. NaN is treated as zero thrust.
func ClampThrust(thrust float64) float64 {
	if math.IsNaN(thrust) {
		return 0
	}
	return math.Max(0, math.Min(1, thrust))
}
