package motors

import (
	"sync"

	"go.viam.com/kestrel/logging"
)

func init() {
	RegisterFrame(FrameClassKestrel, func(logger logging.Logger, driver Driver, opts ...Option) Motors {
		return NewKestrel(logger, driver, opts...)
	})
}

var _ Motors = (*Kestrel)(nil)

const kestrelFrameString = "KES"

type maskOverride struct {
	mask     uint32
	thrust   float64
	rudderDt float64
}

type testCommand struct {
	active  bool
	channel Channel
	pwm     int
}

// Kestrel drives a three motor frame whose yaw and fine attitude control come from a vane servo
// under each motor.
//
// All exported methods are safe to call from different goroutines. A cycle, a reconfiguration
// and a mode change never overlap.
type Kestrel struct {
	mu     sync.Mutex
	logger logging.Logger
	driver Driver
	opts   *settings

	cfg     FrameConfig
	initErr error
	mixer   *mixer
	reg     registry

	mode         SystemMode
	mask         maskOverride
	test         testCommand
	updateRateHz int
	compensation ThrustCompensationFunc
	limits       LimitFlags
}

// NewKestrel returns a Kestrel with no frame selected. Call Init before arming.
func NewKestrel(logger logging.Logger, driver Driver, opts ...Option) *Kestrel {
	s := defaultSettings()
	for _, opt := range opts {
		opt(s)
	}
	k := &Kestrel{
		logger:       logger,
		driver:       driver,
		opts:         s,
		initErr:      NewConfigurationInvalidError("frame not initialized"),
		updateRateHz: s.updateRateHz,
		compensation: s.compensation,
	}
	if k.updateRateHz < MinUpdateRateHz || k.updateRateHz > MaxUpdateRateHz {
		logger.Warnw("ignoring invalid update rate", "hz", k.updateRateHz, "default", DefaultUpdateRateHz)
		k.updateRateHz = DefaultUpdateRateHz
	}
	k.reg = newRegistry(k.cfg)
	return k
}

// Init selects the frame and rebuilds the actuator assignment.
func (k *Kestrel) Init(class FrameClass, frameType FrameType) error {
	return k.SetFrameClassAndType(class, frameType)
}

// SetFrameClassAndType selects the frame. An unsupported frame leaves no actuators configured so
// that nothing is partially applied, and the same error is reported again by ArmingChecks.
func (k *Kestrel) SetFrameClassAndType(class FrameClass, frameType FrameType) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.mode != ModeDisarmed {
		return NewConfigurationLockedError(k.mode)
	}
	return k.initLocked(class, frameType)
}

// Reconfigure replaces every option given to NewKestrel and re-selects the frame, with the same
// rules as Init. An installed compensation hook is kept unless opts install another.
func (k *Kestrel) Reconfigure(class FrameClass, frameType FrameType, opts ...Option) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.mode != ModeDisarmed {
		return NewConfigurationLockedError(k.mode)
	}
	s := defaultSettings()
	for _, opt := range opts {
		opt(s)
	}
	if s.updateRateHz < MinUpdateRateHz || s.updateRateHz > MaxUpdateRateHz {
		return NewInvalidUpdateRateError(s.updateRateHz)
	}
	k.opts = s
	k.updateRateHz = s.updateRateHz
	if s.compensation != nil {
		k.compensation = s.compensation
	}
	return k.initLocked(class, frameType)
}

func (k *Kestrel) initLocked(class FrameClass, frameType FrameType) error {
	cfg, err := buildFrameConfig(class, frameType, k.opts)
	k.cfg = cfg
	k.initErr = err
	k.mixer = nil
	k.mask = maskOverride{}
	k.test = testCommand{}
	k.limits = LimitFlags{}
	k.reg = newRegistry(cfg)
	if err != nil {
		k.logger.Warnw("frame not available", "class", class, "type", frameType, "error", err)
		return err
	}
	k.mixer = newMixer(cfg)

	k.logger.Infow("frame initialized",
		"frame", kestrelFrameString, "type", frameType, "mask", cfg.MotorMask())
	if err := k.forwardRateLocked(k.updateRateHz); err != nil {
		return err
	}
	return k.writeSafeLocked()
}

// Config returns the active frame configuration.
func (k *Kestrel) Config() FrameConfig {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.cfg
}

// Actuators returns the state of every channel that has an actuator, in channel order.
func (k *Kestrel) Actuators() []ActuatorState {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.reg.snapshot()
}

// MotorMask returns the channels in use for the active frame.
func (k *Kestrel) MotorMask() uint32 {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.cfg.MotorMask()
}

// Mode returns the current system mode.
func (k *Kestrel) Mode() SystemMode {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.mode
}

// LimitFlags returns the limits hit during the last mixing cycle.
func (k *Kestrel) LimitFlags() LimitFlags {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.limits
}

// SetThrustCompensation installs or removes (nil) the thrust compensation hook.
func (k *Kestrel) SetThrustCompensation(fn ThrustCompensationFunc) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.compensation = fn
}

// Arm moves from Disarmed to ArmedStabilizing if every arming check passes.
func (k *Kestrel) Arm() error {
	k.mu.Lock()
	defer k.mu.Unlock()

	switch k.mode {
	case ModeArmedStabilizing, ModeArmedMaskedOutput:
		return nil
	case ModeTest:
		return NewModeConflictError("arming", k.mode)
	case ModeDisarmed:
	}
	if err := k.armingCheckLocked(); err != nil {
		k.logger.Warnw("arming refused", "reason", err)
		return err
	}
	k.setModeLocked(ModeArmedStabilizing)
	return nil
}

// Disarm returns to Disarmed from any mode and writes the safe output.
func (k *Kestrel) Disarm() error {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.mask = maskOverride{}
	k.test = testCommand{}
	k.setModeLocked(ModeDisarmed)
	return k.writeSafeLocked()
}

// FrameString returns the short frame name reported to ground stations.
func (k *Kestrel) FrameString() string {
	return kestrelFrameString
}

// TypeString returns a suffix describing the frame type, empty for the default type.
func (k *Kestrel) TypeString() string {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.cfg.PitchReversed {
		return "pitch-reversed"
	}
	return ""
}

func (k *Kestrel) setModeLocked(mode SystemMode) {
	if mode == k.mode {
		return
	}
	k.logger.Infow("mode change", "from", k.mode, "to", mode)
	k.mode = mode
}
