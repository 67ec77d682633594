package motors

import (
	"gonum.org/v1/gonum/mat"

	"go.viam.com/kestrel/utils"
)

// mixer holds the factor tables of a FrameConfig in matrix form.
type mixer struct {
	// attitude is numPositions x 3, columns roll, pitch, yaw.
	attitude *mat.Dense
	throttle *mat.VecDense
}

func newMixer(cfg FrameConfig) *mixer {
	attitude := mat.NewDense(numPositions, 3, nil)
	throttle := mat.NewVecDense(numPositions, nil)
	pitchSign := 1.0
	if cfg.PitchReversed {
		pitchSign = -1
	}
	for _, pos := range allPositions {
		m := cfg.Motors[pos]
		attitude.Set(int(pos), 0, m.Roll)
		attitude.Set(int(pos), 1, m.Pitch*pitchSign)
		attitude.Set(int(pos), 2, m.Yaw)
		throttle.SetVec(int(pos), m.Throttle)
	}
	return &mixer{attitude: attitude, throttle: throttle}
}

// constrainDemand brings every axis into its legal range. NaN becomes 0.
func constrainDemand(d ControlDemand) ControlDemand {
	return ControlDemand{
		Roll:     utils.ClampSigned(d.Roll),
		Pitch:    utils.ClampSigned(d.Pitch),
		Yaw:      utils.ClampSigned(d.Yaw),
		Throttle: utils.Clamp(d.Throttle, 0, 1),
	}
}

// split returns the throttle and attitude parts of every motor for an already constrained demand.
func (mx *mixer) split(d ControlDemand) (throttle, attitude [numPositions]float64) {
	var att mat.VecDense
	att.MulVec(mx.attitude, mat.NewVecDense(3, []float64{d.Roll, d.Pitch, d.Yaw}))
	for i := 0; i < numPositions; i++ {
		throttle[i] = d.Throttle * mx.throttle.AtVec(i)
		attitude[i] = att.AtVec(i)
	}
	return throttle, attitude
}

// mix runs the raw mix and the saturation policy and returns motor thrusts in [0, 1].
func (mx *mixer) mix(d ControlDemand, minAuthority float64) ([numPositions]float64, LimitFlags) {
	throttle, attitude := mx.split(d)
	return saturate(throttle, attitude, minAuthority)
}

// raw returns the unsaturated per-motor sum, for diagnostics.
func (mx *mixer) raw(d ControlDemand) [numPositions]float64 {
	throttle, attitude := mx.split(d)
	var out [numPositions]float64
	for i := range out {
		out[i] = throttle[i] + attitude[i]
	}
	return out
}
