package motors

// RollFactor returns the roll mixing factor of logical channel i, or 0 if i is not a motor of the
// active frame.
func (k *Kestrel) RollFactor(i int) float64 {
	return k.factor(i, func(m MotorConfig, _ bool) float64 { return m.Roll })
}

// PitchFactor returns the pitch mixing factor of logical channel i with frame pitch reversal
// applied, or 0 if i is not a motor of the active frame.
func (k *Kestrel) PitchFactor(i int) float64 {
	return k.factor(i, func(m MotorConfig, reversed bool) float64 {
		if reversed {
			return -m.Pitch
		}
		return m.Pitch
	})
}

// PitchFactorJSON is the pitch factor as reported to scripting and log tooling. It is the same
// value as PitchFactor.
func (k *Kestrel) PitchFactorJSON(i int) float64 {
	return k.PitchFactor(i)
}

// YawFactor returns the yaw mixing factor of logical channel i.
func (k *Kestrel) YawFactor(i int) float64 {
	return k.factor(i, func(m MotorConfig, _ bool) float64 { return m.Yaw })
}

// ThrottleFactor returns the throttle mixing factor of logical channel i.
func (k *Kestrel) ThrottleFactor(i int) float64 {
	return k.factor(i, func(m MotorConfig, _ bool) float64 { return m.Throttle })
}

func (k *Kestrel) factor(i int, get func(m MotorConfig, pitchReversed bool) float64) float64 {
	k.mu.Lock()
	defer k.mu.Unlock()
	if !k.cfg.Supported {
		return 0
	}
	for _, m := range k.cfg.Motors {
		if int(m.Channel) == i {
			return get(m, k.cfg.PitchReversed)
		}
	}
	return 0
}
