package motors

import (
	"time"

	"github.com/pkg/errors"
)

// Supported output update rates. The upper bound is the fastest refresh a standard PWM ESC
// accepts.
const (
	MinUpdateRateHz = 1
	MaxUpdateRateHz = 490
)

// MixResult is the outcome of mixing one demand without writing it.
type MixResult struct {
	Demand ControlDemand
	// Raw is the unsaturated motor mix, indexed by Position.
	Raw    [numPositions]float64
	Thrust [numPositions]float64
	// Vanes holds the vane angles in degrees, indexed by Position. Absent vanes report neutral.
	Vanes  [numPositions]float64
	Limits LimitFlags
}

// SetUpdateRate sets the output refresh rate for the motor channels.
func (k *Kestrel) SetUpdateRate(hz int) error {
	if hz < MinUpdateRateHz || hz > MaxUpdateRateHz {
		return NewInvalidUpdateRateError(hz)
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	if err := k.forwardRateLocked(hz); err != nil {
		return err
	}
	k.updateRateHz = hz
	return nil
}

// UpdateRate returns the output refresh rate in hertz.
func (k *Kestrel) UpdateRate() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.updateRateHz
}

// Period returns the time between output refreshes.
func (k *Kestrel) Period() time.Duration {
	return time.Second / time.Duration(k.UpdateRate())
}

// forwardRateLocked passes the rate of the motor channels to drivers that care. Vane servos keep
// the rate the driver was built with.
func (k *Kestrel) forwardRateLocked(hz int) error {
	rs, ok := k.driver.(RateSetter)
	if !ok || !k.cfg.Supported {
		return nil
	}
	var mask uint32
	for _, m := range k.cfg.Motors {
		mask |= m.Channel.Bit()
	}
	if err := rs.SetRate(mask, hz); err != nil {
		return errors.Wrapf(err, "setting update rate to %d Hz", hz)
	}
	return nil
}

// OutputToMotors writes motors at zero thrust and vanes at neutral. It does not change the mode.
func (k *Kestrel) OutputToMotors() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.writeSafeLocked()
}

// Output runs one control cycle. The mode picks the path: Test, then masked output, then
// stabilizing, and the safe output when disarmed.
func (k *Kestrel) Output(demand ControlDemand) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if !k.cfg.Supported {
		return nil
	}
	switch k.mode {
	case ModeTest:
		if k.test.active {
			return k.writeTestLocked()
		}
		return k.writeSafeLocked()
	case ModeArmedMaskedOutput, ModeArmedStabilizing:
		return k.outputArmedLocked(demand)
	case ModeDisarmed:
	}
	return k.writeSafeLocked()
}

func (k *Kestrel) outputArmedLocked(demand ControlDemand) error {
	res := k.mixLocked(demand)
	thrust := compensate(k.compensation, res.Thrust)

	if k.mode == ModeArmedMaskedOutput {
		for _, pos := range allPositions {
			m := k.cfg.Motors[pos]
			if k.mask.mask&m.Channel.Bit() == 0 {
				continue
			}
			thrust[pos] = maskedThrust(m, k.mask)
		}
	}

	if res.Limits.Any() && !k.limits.Any() {
		k.logger.Debugw("output limited", "limits", res.Limits)
	}
	k.limits = res.Limits

	for _, pos := range allPositions {
		k.reg.set(k.cfg.Motors[pos].Channel, thrust[pos])
		if k.cfg.Vanes[pos].Present {
			k.reg.set(k.cfg.Vanes[pos].Channel, res.Vanes[pos])
		}
	}
	return k.writeLocked()
}

// Mix computes the normal stabilizing output for demand without writing it or changing any
// state. The compensation hook is not called.
func (k *Kestrel) Mix(demand ControlDemand) (MixResult, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if !k.cfg.Supported {
		return MixResult{}, k.initErr
	}
	return k.mixLocked(demand), nil
}

func (k *Kestrel) mixLocked(demand ControlDemand) MixResult {
	d := constrainDemand(demand)
	res := MixResult{Demand: d, Raw: k.mixer.raw(d)}
	res.Thrust, res.Limits = k.mixer.mix(d, k.cfg.MinAttitudeAuthority)

	vd := vaneDemand(d, k.cfg)
	for _, pos := range allPositions {
		v := k.cfg.Vanes[pos]
		if !v.Present {
			res.Vanes[pos] = v.Neutral()
			continue
		}
		angle, limited := v.angle(vd, k.cfg.VaneMaxDeflection)
		res.Vanes[pos] = angle
		if limited {
			res.Limits.Vane = true
		}
	}
	return res
}

func (k *Kestrel) setSafeLocked() {
	for _, pos := range allPositions {
		k.reg.set(k.cfg.Motors[pos].Channel, 0)
		if k.cfg.Vanes[pos].Present {
			k.reg.set(k.cfg.Vanes[pos].Channel, k.cfg.Vanes[pos].Neutral())
		}
	}
}

func (k *Kestrel) writeSafeLocked() error {
	if !k.cfg.Supported {
		return nil
	}
	k.setSafeLocked()
	return k.writeLocked()
}

func (k *Kestrel) writeTestLocked() error {
	k.setSafeLocked()
	k.reg.setTest(k.test.channel, k.test.pwm)
	return k.writeLocked()
}

// writeLocked sends one command per channel with an actuator, in channel order.
func (k *Kestrel) writeLocked() error {
	if k.driver == nil {
		return nil
	}
	states := k.reg.snapshot()
	cmds := make([]ChannelCommand, 0, len(states))
	for _, a := range states {
		cmd := ChannelCommand{Channel: a.Channel, Value: a.Value}
		switch {
		case a.TestPWM > 0:
			cmd.Kind = CommandRawPWM
			cmd.Value = float64(a.TestPWM)
		case a.Kind == KindVane:
			cmd.Kind = CommandAngle
		default:
			cmd.Kind = CommandThrust
		}
		cmds = append(cmds, cmd)
	}
	if err := k.driver.Write(cmds); err != nil {
		return errors.Wrap(err, "writing actuator outputs")
	}
	return nil
}
