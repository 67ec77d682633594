package motors

import (
	"go.viam.com/kestrel/utils"
)

// OutputMotorMask hands the motors in mask to an external thrust command until ClearMotorMask or
// Disarm. The remaining actuators keep stabilizing. rudderDt in [-1, 1] adds differential thrust
// along each motor's roll factor for yaw authority. Bits that are not motor channels of the
// active frame are ignored.
func (k *Kestrel) OutputMotorMask(thrust float64, mask uint32, rudderDt float64) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if !k.mode.Armed() {
		return NewModeConflictError("masked output", k.mode)
	}
	k.mask = maskOverride{
		mask:     mask & k.motorBitsLocked(),
		thrust:   utils.Clamp(thrust, 0, 1),
		rudderDt: utils.ClampSigned(rudderDt),
	}
	k.setModeLocked(ModeArmedMaskedOutput)
	return nil
}

// ClearMotorMask ends masked output and returns to stabilizing. It does nothing in other modes.
func (k *Kestrel) ClearMotorMask() error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.mode != ModeArmedMaskedOutput {
		return nil
	}
	k.mask = maskOverride{}
	k.setModeLocked(ModeArmedStabilizing)
	return nil
}

func (k *Kestrel) motorBitsLocked() uint32 {
	if !k.cfg.Supported {
		return 0
	}
	var bits uint32
	for _, m := range k.cfg.Motors {
		bits |= m.Channel.Bit()
	}
	return bits
}

func maskedThrust(m MotorConfig, o maskOverride) float64 {
	return utils.Clamp(o.thrust+m.Roll*o.rudderDt*0.5, 0, 1)
}
