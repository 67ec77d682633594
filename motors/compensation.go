package motors

import (
	"go.viam.com/kestrel/utils"
)

// ThrustCompensationFunc rescales motor thrusts for vehicle conditions such as battery voltage or
// air density. It receives one value per motor in [0, 1], indexed by Position, and must not
// block: the cycle waits for it. It runs while the frame is locked, so it must not call any
// method of the frame it is installed on. Its result is never trusted. Values are re-clamped to [0, 1],
// NaN becomes 0 and missing elements keep their input value.
type ThrustCompensationFunc func(thrust []float64) []float64

func compensate(fn ThrustCompensationFunc, thrust [numPositions]float64) [numPositions]float64 {
	if fn == nil {
		return thrust
	}
	in := make([]float64, numPositions)
	copy(in, thrust[:])
	out := fn(in)

	result := thrust
	for i := 0; i < numPositions && i < len(out); i++ {
		result[i] = utils.Clamp(out[i], 0, 1)
	}
	return result
}
