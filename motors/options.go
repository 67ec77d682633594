package motors

// Defaults applied when no Option overrides them.
const (
	DefaultUpdateRateHz         = 490
	DefaultVaneBias             = 0.5
	DefaultMinAttitudeAuthority = 0
)

type vaneSettings struct {
	present  bool
	reversed bool
	minAngle float64
	maxAngle float64
	offset   float64
}

type settings struct {
	vanes                [numPositions]vaneSettings
	vaneBias             float64
	vaneMaxDeflection    float64
	minAttitudeAuthority float64
	updateRateHz         int
	compensation         ThrustCompensationFunc
	requireCompensation  bool
}

func defaultSettings() *settings {
	s := &settings{
		vaneBias:             DefaultVaneBias,
		minAttitudeAuthority: DefaultMinAttitudeAuthority,
		updateRateHz:         DefaultUpdateRateHz,
	}
	for i := range s.vanes {
		s.vanes[i] = vaneSettings{
			present:  true,
			minAngle: VaneRangeMinDeg,
			maxAngle: VaneRangeMaxDeg,
		}
	}
	return s
}

// An Option configures a frame implementation at construction.
type Option func(*settings)

// WithVaneLimits sets the mechanical travel of the vane at pos in degrees.
func WithVaneLimits(pos Position, minAngle, maxAngle float64) Option {
	return func(s *settings) {
		if pos < 0 || pos >= numPositions {
			return
		}
		s.vanes[pos].minAngle = minAngle
		s.vanes[pos].maxAngle = maxAngle
	}
}

// WithVaneOffset moves the neutral angle of the vane at pos away from the middle of its travel.
func WithVaneOffset(pos Position, offsetDeg float64) Option {
	return func(s *settings) {
		if pos < 0 || pos >= numPositions {
			return
		}
		s.vanes[pos].offset = offsetDeg
	}
}

// WithVaneReversed flips the deflection direction of the vane at pos.
func WithVaneReversed(pos Position, reversed bool) Option {
	return func(s *settings) {
		if pos < 0 || pos >= numPositions {
			return
		}
		s.vanes[pos].reversed = reversed
	}
}

// WithVanePresent marks whether a vane servo is fitted at pos.
func WithVanePresent(pos Position, present bool) Option {
	return func(s *settings) {
		if pos < 0 || pos >= numPositions {
			return
		}
		s.vanes[pos].present = present
	}
}

// WithVaneBias sets how strongly roll and pitch demand deflect the vanes.
func WithVaneBias(bias float64) Option {
	return func(s *settings) {
		s.vaneBias = bias
	}
}

// WithVaneMaxDeflection caps vane travel away from neutral, in degrees.
func WithVaneMaxDeflection(deg float64) Option {
	return func(s *settings) {
		s.vaneMaxDeflection = deg
	}
}

// WithMinAttitudeAuthority sets the fraction of attitude demand that saturation keeps before it
// starts moving throttle. The default of 0 never moves throttle.
func WithMinAttitudeAuthority(authority float64) Option {
	return func(s *settings) {
		s.minAttitudeAuthority = authority
	}
}

// WithUpdateRate sets the initial output update rate in hertz.
func WithUpdateRate(hz int) Option {
	return func(s *settings) {
		s.updateRateHz = hz
	}
}

// WithThrustCompensation installs the vehicle thrust compensation hook.
func WithThrustCompensation(fn ThrustCompensationFunc) Option {
	return func(s *settings) {
		s.compensation = fn
	}
}

// WithRequiredThrustCompensation makes arming fail unless a compensation hook is installed.
func WithRequiredThrustCompensation() Option {
	return func(s *settings) {
		s.requireCompensation = true
	}
}
