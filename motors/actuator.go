package motors

// ActuatorKind distinguishes thrust motors from vane servos.
type ActuatorKind int

// Actuator kinds.
const (
	KindMotor ActuatorKind = iota
	KindVane
)

func (k ActuatorKind) String() string {
	if k == KindVane {
		return "vane"
	}
	return "motor"
}

// ActuatorState is the runtime state of one logical channel.
type ActuatorState struct {
	Channel     Channel
	Kind        ActuatorKind
	Position    Position
	HasActuator bool
	Reversed    bool
	// Value is the last commanded thrust in [0, 1] for motors, or angle in degrees for vanes.
	Value float64
	// TestPWM is the raw pulse width of an active test output, 0 otherwise.
	TestPWM int
}

// registry holds one ActuatorState per logical channel. It is only touched by the goroutine
// running the cycle, under the Kestrel lock.
type registry struct {
	actuators [NumChannels]ActuatorState
}

func newRegistry(cfg FrameConfig) registry {
	var r registry
	for _, pos := range allPositions {
		r.actuators[motorChannel(pos)] = ActuatorState{
			Channel:     motorChannel(pos),
			Kind:        KindMotor,
			Position:    pos,
			HasActuator: cfg.Supported,
		}

		v := cfg.Vanes[pos]
		r.actuators[vaneChannel(pos)] = ActuatorState{
			Channel:     vaneChannel(pos),
			Kind:        KindVane,
			Position:    pos,
			HasActuator: cfg.Supported && v.Present,
			Reversed:    v.Reversed,
			Value:       v.Neutral(),
		}
	}
	return r
}

func (r *registry) set(ch Channel, value float64) {
	if ch < 0 || int(ch) >= NumChannels {
		return
	}
	r.actuators[ch].Value = value
	r.actuators[ch].TestPWM = 0
}

func (r *registry) setTest(ch Channel, pwm int) {
	if ch < 0 || int(ch) >= NumChannels {
		return
	}
	r.actuators[ch].TestPWM = pwm
}

func (r *registry) snapshot() []ActuatorState {
	out := make([]ActuatorState, 0, NumChannels)
	for _, a := range r.actuators {
		if a.HasActuator {
			out = append(out, a)
		}
	}
	return out
}
