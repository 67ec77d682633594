package motors

import (
	"fmt"
	"math"

	"go.viam.com/kestrel/utils"
)

// FrameClass selects a family of frames with a shared actuator layout.
type FrameClass int

// Known frame classes. Only FrameClassKestrel has a mixing table in this package; the others
// exist so that configuration can name them and be rejected cleanly.
const (
	FrameClassUndefined FrameClass = iota
	FrameClassQuad
	FrameClassTri
	FrameClassKestrel
)

func (c FrameClass) String() string {
	switch c {
	case FrameClassUndefined:
		return "undefined"
	case FrameClassQuad:
		return "quad"
	case FrameClassTri:
		return "tri"
	case FrameClassKestrel:
		return "kestrel"
	}
	return fmt.Sprintf("frame-class(%d)", int(c))
}

// FrameType selects a variant within a frame class.
type FrameType int

// Known frame types.
const (
	FrameTypePlus FrameType = iota
	FrameTypeX
	FrameTypePlusRev
)

func (t FrameType) String() string {
	switch t {
	case FrameTypePlus:
		return "plus"
	case FrameTypeX:
		return "x"
	case FrameTypePlusRev:
		return "plusrev"
	}
	return fmt.Sprintf("frame-type(%d)", int(t))
}

// Position names one of the three arms of the frame. Each arm carries a motor and a vane.
type Position int

// Arm positions, in logical channel order.
const (
	PositionRight Position = iota
	PositionLeft
	PositionFore
)

const numPositions = 3

var allPositions = [numPositions]Position{PositionRight, PositionLeft, PositionFore}

func (p Position) String() string {
	switch p {
	case PositionRight:
		return "right"
	case PositionLeft:
		return "left"
	case PositionFore:
		return "fore"
	}
	return fmt.Sprintf("position(%d)", int(p))
}

// Legal mechanical travel of a vane servo, in degrees.
const (
	VaneRangeMinDeg = 20.0
	VaneRangeMaxDeg = 200.0
)

// Arm azimuths in degrees, clockwise from the nose seen from above.
var armAzimuthDeg = [numPositions]float64{
	PositionRight: 120,
	PositionLeft:  240,
	PositionFore:  0,
}

// MotorConfig holds the mixing factors of one motor. All factors are in [-1, 1].
type MotorConfig struct {
	Channel  Channel
	Roll     float64
	Pitch    float64
	Yaw      float64
	Throttle float64
}

// VaneConfig describes one vane servo.
type VaneConfig struct {
	Channel  Channel
	Present  bool
	Reversed bool
	// MinAngle and MaxAngle bound the mechanical travel in degrees.
	MinAngle float64
	MaxAngle float64
	// Offset moves the zero-demand point away from the midpoint of the travel, in degrees.
	Offset     float64
	AzimuthDeg float64
}

// Neutral returns the zero-demand angle. It is always inside [MinAngle, MaxAngle] and inside the
// legal vane travel, even when the configured range is not.
func (v VaneConfig) Neutral() float64 {
	mid := (v.MinAngle+v.MaxAngle)/2 + v.Offset
	lo := math.Max(v.MinAngle, VaneRangeMinDeg)
	hi := math.Min(v.MaxAngle, VaneRangeMaxDeg)
	if lo > hi {
		return utils.Clamp(mid, VaneRangeMinDeg, VaneRangeMaxDeg)
	}
	return utils.Clamp(mid, lo, hi)
}

// Validate checks that the vane travel is inside the legal range and not degenerate.
func (v VaneConfig) Validate(pos Position) error {
	if v.MinAngle < VaneRangeMinDeg || v.MaxAngle > VaneRangeMaxDeg {
		return NewInvalidVaneRangeError("vane %s range %.1f-%.1f is outside %.0f-%.0f degrees",
			pos, v.MinAngle, v.MaxAngle, VaneRangeMinDeg, VaneRangeMaxDeg)
	}
	if v.MinAngle >= v.MaxAngle {
		return NewInvalidVaneRangeError("vane %s range is degenerate (min %.1f >= max %.1f)",
			pos, v.MinAngle, v.MaxAngle)
	}
	return nil
}

// FrameConfig is the immutable actuator description built at Init. The zero value is the
// "no actuators available" configuration.
type FrameConfig struct {
	Class     FrameClass
	Type      FrameType
	Supported bool

	Motors [numPositions]MotorConfig
	Vanes  [numPositions]VaneConfig

	// PitchReversed negates the pitch term for every actuator.
	PitchReversed              bool
	RequiresAllVanes           bool
	RequiresThrustCompensation bool

	// VaneBias couples roll and pitch thrust-vector tilt into vane deflection, in [0, 1].
	VaneBias float64
	// VaneMaxDeflection caps the vane travel away from neutral in degrees. 0 means no cap.
	VaneMaxDeflection float64
	// MinAttitudeAuthority is the fraction of roll/pitch/yaw demand kept before throttle is
	// given up, in [0, 1]. 0 leaves throttle untouched.
	MinAttitudeAuthority float64
}

// MotorMask returns the bitmask of logical channels in use.
func (cfg FrameConfig) MotorMask() uint32 {
	if !cfg.Supported {
		return 0
	}
	var mask uint32
	for _, m := range cfg.Motors {
		mask |= m.Channel.Bit()
	}
	for _, v := range cfg.Vanes {
		if v.Present {
			mask |= v.Channel.Bit()
		}
	}
	return mask
}

// motorFactors derives roll and pitch factors from the arm azimuth: a motor on the right side
// rolls left when its thrust rises, and a motor ahead of the center of mass pitches nose up.
func motorFactors(pos Position) (roll, pitch float64) {
	psi := utils.DegToRad(armAzimuthDeg[pos])
	roll = roundFactor(-math.Sin(psi))
	pitch = roundFactor(math.Cos(psi))
	return roll, pitch
}

// Factors are rounded so that repeated builds compare equal and zeroes are exact.
func roundFactor(f float64) float64 {
	const places = 1e6
	r := math.Round(f*places) / places
	if r == 0 {
		return 0
	}
	return r
}

// buildFrameConfig returns the configuration for (class, frameType) or an error if no mixing
// table exists for it. It has no side effects.
func buildFrameConfig(class FrameClass, frameType FrameType, s *settings) (FrameConfig, error) {
	if class != FrameClassKestrel {
		return FrameConfig{}, NewUnsupportedFrameError(class, frameType)
	}
	if frameType != FrameTypePlus && frameType != FrameTypePlusRev {
		return FrameConfig{}, NewUnsupportedFrameError(class, frameType)
	}

	cfg := FrameConfig{
		Class:                      class,
		Type:                       frameType,
		Supported:                  true,
		PitchReversed:              frameType == FrameTypePlusRev,
		RequiresAllVanes:           true,
		RequiresThrustCompensation: s.requireCompensation,
		VaneBias:                   utils.Clamp(s.vaneBias, 0, 1),
		VaneMaxDeflection:          math.Max(s.vaneMaxDeflection, 0),
		MinAttitudeAuthority:       utils.Clamp(s.minAttitudeAuthority, 0, 1),
	}
	for _, pos := range allPositions {
		roll, pitch := motorFactors(pos)
		cfg.Motors[pos] = MotorConfig{
			Channel:  motorChannel(pos),
			Roll:     roll,
			Pitch:    pitch,
			Yaw:      0,
			Throttle: 1,
		}
		vs := s.vanes[pos]
		cfg.Vanes[pos] = VaneConfig{
			Channel:    vaneChannel(pos),
			Present:    vs.present,
			Reversed:   vs.reversed,
			MinAngle:   vs.minAngle,
			MaxAngle:   vs.maxAngle,
			Offset:     vs.offset,
			AzimuthDeg: armAzimuthDeg[pos],
		}
	}
	return cfg, nil
}

func motorChannel(pos Position) Channel {
	return ChannelMotorRight + Channel(pos)
}

func vaneChannel(pos Position) Channel {
	return ChannelVaneRight + Channel(pos)
}
