package motors

import (
	"github.com/samber/lo"
)

// ArmingChecks reports whether the frame may be armed. On failure the reason of the first failed
// check is returned, truncated to buflen bytes. It changes no state.
func (k *Kestrel) ArmingChecks(buflen int) (bool, string) {
	err := k.ArmingCheck()
	if err == nil {
		return true, ""
	}
	reason := err.Error()
	if buflen <= 0 {
		return false, ""
	}
	if len(reason) > buflen {
		reason = reason[:buflen]
	}
	return false, reason
}

// ArmingCheck returns the error of the first failed arming check, or nil.
func (k *Kestrel) ArmingCheck() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.armingCheckLocked()
}

func (k *Kestrel) armingCheckLocked() error {
	cfg := k.cfg
	if !cfg.Supported {
		if k.initErr != nil {
			return k.initErr
		}
		return NewConfigurationInvalidError("no frame configured")
	}

	if cfg.RequiresAllVanes {
		for _, pos := range allPositions {
			if !cfg.Vanes[pos].Present {
				return NewConfigurationInvalidError("vane %s not present", pos)
			}
		}
	}

	for _, pos := range allPositions {
		v := cfg.Vanes[pos]
		if !v.Present {
			continue
		}
		if err := v.Validate(pos); err != nil {
			return err
		}
		if mid := (v.MinAngle+v.MaxAngle)/2 + v.Offset; mid < v.MinAngle || mid > v.MaxAngle {
			return NewInvalidVaneRangeError("vane %s neutral %.1f is outside its range %.1f-%.1f",
				pos, mid, v.MinAngle, v.MaxAngle)
		}
	}

	if cfg.RequiresThrustCompensation && k.compensation == nil {
		return NewConfigurationInvalidError("thrust compensation required but not installed")
	}

	channels := make([]Channel, 0, NumChannels)
	for _, m := range cfg.Motors {
		channels = append(channels, m.Channel)
	}
	for _, v := range cfg.Vanes {
		if v.Present {
			channels = append(channels, v.Channel)
		}
	}
	if dups := lo.FindDuplicates(channels); len(dups) > 0 {
		return NewConfigurationInvalidError("channel %s mapped more than once", dups[0])
	}
	if outOfRange := lo.Filter(channels, func(ch Channel, _ int) bool {
		return ch < 0 || int(ch) >= NumChannels
	}); len(outOfRange) > 0 {
		return NewConfigurationInvalidError("channel %d is not a logical output", int(outOfRange[0]))
	}

	if k.updateRateHz < MinUpdateRateHz || k.updateRateHz > MaxUpdateRateHz {
		return NewConfigurationInvalidError("update rate %d Hz is not supported", k.updateRateHz)
	}
	return nil
}
