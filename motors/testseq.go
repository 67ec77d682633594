package motors

import (
	"go.viam.com/kestrel/utils"
)

// Raw pulse width limits for test output, in microseconds.
const (
	PWMMin = 1000
	PWMMax = 2000
)

// Physical test order: motors nose first then clockwise, then the vanes in the same order.
var testOrder = []struct {
	kind ActuatorKind
	pos  Position
}{
	{KindMotor, PositionFore},
	{KindMotor, PositionRight},
	{KindMotor, PositionLeft},
	{KindVane, PositionFore},
	{KindVane, PositionRight},
	{KindVane, PositionLeft},
}

// MotorTestOrder maps a 1-based test sequence number to a channel. The order only depends on
// which actuators are fitted, so absent vanes shorten the sequence.
func (k *Kestrel) MotorTestOrder(i int) (Channel, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.motorTestOrderLocked(i)
}

func (k *Kestrel) motorTestOrderLocked(i int) (Channel, bool) {
	if !k.cfg.Supported || i < 1 {
		return 0, false
	}
	seq := 0
	for _, entry := range testOrder {
		var ch Channel
		if entry.kind == KindMotor {
			ch = k.cfg.Motors[entry.pos].Channel
		} else {
			v := k.cfg.Vanes[entry.pos]
			if !v.Present {
				continue
			}
			ch = v.Channel
		}
		seq++
		if seq == i {
			return ch, true
		}
	}
	return 0, false
}

// NumTestSequences returns how many actuators the test order covers.
func (k *Kestrel) NumTestSequences() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	n := 0
	for {
		if _, ok := k.motorTestOrderLocked(n + 1); !ok {
			return n
		}
		n++
	}
}

// EnterTestMode switches from Disarmed to Test. Every actuator stays at the safe output until
// OutputTestSeq.
func (k *Kestrel) EnterTestMode() error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.mode.Armed() {
		return NewModeConflictError("test mode", k.mode)
	}
	k.test = testCommand{}
	k.setModeLocked(ModeTest)
	return k.writeSafeLocked()
}

// ExitTestMode returns to Disarmed and writes the safe output.
func (k *Kestrel) ExitTestMode() error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.mode != ModeTest {
		return nil
	}
	k.test = testCommand{}
	k.setModeLocked(ModeDisarmed)
	return k.writeSafeLocked()
}

// OutputTestSeq drives the actuator at test sequence seq at the raw pulse width pwm and holds all
// others at the safe output. It is only accepted in Test mode. A rejected call writes nothing.
func (k *Kestrel) OutputTestSeq(seq, pwm int) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.mode != ModeTest {
		return NewModeConflictError("test output", k.mode)
	}
	ch, ok := k.motorTestOrderLocked(seq)
	if !ok {
		return NewInvalidTestSequenceError(seq)
	}
	k.test = testCommand{
		active:  true,
		channel: ch,
		pwm:     int(utils.Clamp(float64(pwm), PWMMin, PWMMax)),
	}
	return k.writeTestLocked()
}
