package motors

import (
	"math"

	"github.com/golang/geo/r3"

	"go.viam.com/kestrel/utils"
)

// vaneDemand is the thrust-vector demand shared by all vanes in a cycle. X points forward, Y to
// the right and Z carries yaw. Roll and pitch only tilt the vector by the vane bias.
func vaneDemand(d ControlDemand, cfg FrameConfig) r3.Vector {
	pitch := d.Pitch
	if cfg.PitchReversed {
		pitch = -pitch
	}
	return r3.Vector{
		X: -pitch * cfg.VaneBias,
		Y: d.Roll * cfg.VaneBias,
		Z: d.Yaw,
	}
}

// axis returns the direction in demand space that deflects this vane toward its max angle.
func (v VaneConfig) axis() r3.Vector {
	psi := utils.DegToRad(v.AzimuthDeg)
	return r3.Vector{X: -math.Sin(psi), Y: math.Cos(psi), Z: 1}
}

// angle maps demand onto the vane travel. The second result reports whether the deflection
// was limited.
func (v VaneConfig) angle(demand r3.Vector, maxDeflection float64) (float64, bool) {
	neutral := v.Neutral()
	d := demand.Dot(v.axis())
	if v.Reversed {
		d = -d
	}
	limited := false
	if math.IsNaN(d) {
		d = 0
	}
	if d > 1 || d < -1 {
		d = utils.ClampSigned(d)
		limited = true
	}

	var deflection float64
	if d >= 0 {
		deflection = d * (v.MaxAngle - neutral)
	} else {
		deflection = d * (neutral - v.MinAngle)
	}
	if maxDeflection > 0 && math.Abs(deflection) > maxDeflection {
		deflection = math.Copysign(maxDeflection, deflection)
		limited = true
	}

	angle := neutral + deflection
	clamped := utils.Clamp(angle, v.MinAngle, v.MaxAngle)
	if clamped != angle {
		limited = true
	}
	return clamped, limited
}
