// Package motors turns roll/pitch/yaw/throttle demand into per-actuator commands for
// multirotor frames. The Kestrel frame pairs three fixed-thrust motors with three steerable
// vane servos that redirect thrust for attitude and yaw control.
//
// A Motors implementation is driven once per control period by an external tick. It never
// sleeps, blocks or times itself; the only call out of the package during a cycle is the
// optional thrust compensation hook and the Driver write.
package motors

import "fmt"

// Channel is a logical output channel. Channel i maps to bit i of MotorMask.
type Channel int

// Logical channel assignment. Motors occupy the first three channels and the vane servos the
// next three.
const (
	ChannelMotorRight Channel = iota
	ChannelMotorLeft
	ChannelMotorFore
	ChannelVaneRight
	ChannelVaneLeft
	ChannelVaneFore
)

// NumChannels is the number of logical channels a Kestrel frame can use.
const NumChannels = 6

func (ch Channel) String() string {
	switch ch {
	case ChannelMotorRight:
		return "motor-right"
	case ChannelMotorLeft:
		return "motor-left"
	case ChannelMotorFore:
		return "motor-fore"
	case ChannelVaneRight:
		return "vane-right"
	case ChannelVaneLeft:
		return "vane-left"
	case ChannelVaneFore:
		return "vane-fore"
	}
	return fmt.Sprintf("channel-%d", int(ch))
}

// Bit returns the mask bit for the channel.
func (ch Channel) Bit() uint32 {
	return 1 << uint32(ch)
}

// SystemMode selects which output path a cycle takes.
type SystemMode int

// The system modes in increasing output precedence: Test > ArmedMaskedOutput >
// ArmedStabilizing > Disarmed.
const (
	ModeDisarmed SystemMode = iota
	ModeArmedStabilizing
	ModeArmedMaskedOutput
	ModeTest
)

func (m SystemMode) String() string {
	switch m {
	case ModeDisarmed:
		return "disarmed"
	case ModeArmedStabilizing:
		return "armed-stabilizing"
	case ModeArmedMaskedOutput:
		return "armed-masked-output"
	case ModeTest:
		return "test"
	}
	return "unknown"
}

// Armed returns whether the mode permits flight-capable output.
func (m SystemMode) Armed() bool {
	return m == ModeArmedStabilizing || m == ModeArmedMaskedOutput
}

// ControlDemand is the per-cycle input from the attitude controller. Roll, Pitch and Yaw are in
// [-1, 1] and Throttle in [0, 1]; values outside those ranges are constrained before mixing.
type ControlDemand struct {
	Roll     float64
	Pitch    float64
	Yaw      float64
	Throttle float64
}

// CommandKind tells the driver how to interpret a ChannelCommand value.
type CommandKind int

const (
	// CommandThrust is a normalized motor thrust in [0, 1].
	CommandThrust CommandKind = iota
	// CommandAngle is a vane angle in degrees within the vane's configured range.
	CommandAngle
	// CommandRawPWM is a pulse width in microseconds, only emitted by the test sequencer.
	CommandRawPWM
)

func (k CommandKind) String() string {
	switch k {
	case CommandThrust:
		return "thrust"
	case CommandAngle:
		return "angle"
	case CommandRawPWM:
		return "pwm"
	}
	return "unknown"
}

// ChannelCommand is one output value for one logical channel.
type ChannelCommand struct {
	Channel Channel
	Kind    CommandKind
	Value   float64
}

// Driver converts channel commands to physical outputs. Write is called once per cycle with one
// command per channel in use, ordered by channel, and must not block.
type Driver interface {
	Write(cmds []ChannelCommand) error
}

// RateSetter is implemented by drivers that need to know the output update rate of the
// channels in mask.
type RateSetter interface {
	SetRate(mask uint32, hz int) error
}

// Motors is the capability set every frame implementation provides.
type Motors interface {
	// Init selects the frame and rebuilds the actuator assignment. It is rejected while armed.
	Init(class FrameClass, frameType FrameType) error
	// SetFrameClassAndType re-selects the frame, with the same rules as Init.
	SetFrameClassAndType(class FrameClass, frameType FrameType) error
	// SetUpdateRate sets the rate, in hertz, at which the outputs are refreshed.
	SetUpdateRate(hz int) error

	// Output runs one control cycle for the current mode.
	Output(demand ControlDemand) error
	// OutputToMotors writes the safe minimum command to every actuator.
	OutputToMotors() error
	// OutputMotorMask overrides the thrust of the motors in mask until ClearMotorMask.
	OutputMotorMask(thrust float64, mask uint32, rudderDt float64) error
	ClearMotorMask() error
	// MotorMask returns the channels in use for the active frame.
	MotorMask() uint32

	ArmingChecks(buflen int) (bool, string)
	Arm() error
	Disarm() error
	Mode() SystemMode

	EnterTestMode() error
	ExitTestMode() error
	// OutputTestSeq drives the actuator at test sequence number seq at a raw pulse width.
	OutputTestSeq(seq, pwm int) error
	MotorTestOrder(i int) (Channel, bool)

	RollFactor(i int) float64
	PitchFactorJSON(i int) float64

	FrameString() string
	TypeString() string
}
