// Package gpio implements a pin based servo
package gpio

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/pkg/errors"
	viamutils "go.viam.com/utils"

	"go.viam.com/kestrel/components/board"
	"go.viam.com/kestrel/components/servo"
	"go.viam.com/kestrel/logging"
	"go.viam.com/kestrel/operation"
)

const (
	defaultMinDeg float64 = 20.0
	defaultMaxDeg float64 = 200.0
	minWidthUs    uint    = 500  // absolute minimum pwm width
	maxWidthUs    uint    = 2500 // absolute maximum pwm width
	defaultFreqHz uint    = 50
)

// Config describes a servo on a PWM pin.
type Config struct {
	Pin string `json:"pin"` // Pin a GPIO pin with pwm capabilities
	// MinDeg minimum angle the servo can reach, note this doesn't affect PWM calculation
	MinDeg *float64 `json:"min_angle_deg,omitempty"`
	// MaxDeg maximum angle the servo can reach, note this doesn't affect PWM calculation
	MaxDeg *float64 `json:"max_angle_deg,omitempty"`
	// StartPos starting position of the servo in degree
	StartPos *float64 `json:"starting_position_deg,omitempty"`
	// Frequency when set the servo driver will attempt to change the GPIO pin's Frequency
	Frequency *uint `json:"frequency_hz,omitempty"`
	// Resolution resolution of the PWM driver (eg number of ticks for a full period) if left or 0
	// the driver will attempt to estimate the resolution
	Resolution *uint `json:"pwm_resolution,omitempty"`
	// MinWidthUS override the safe minimum width in us this affect PWM calculation
	MinWidthUS *uint `json:"min_width_us,omitempty"`
	// MaxWidthUS Override the safe maximum width in us this affect PWM calculation
	MaxWidthUS *uint `json:"max_width_us,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (config *Config) Validate(path string) error {
	if config.Pin == "" {
		return viamutils.NewConfigValidationFieldRequiredError(path, "pin")
	}
	minDeg, maxDeg := config.degrees()
	if config.StartPos != nil {
		if *config.StartPos < minDeg || *config.StartPos > maxDeg {
			return viamutils.NewConfigValidationError(path,
				errors.Errorf("starting_position_deg should be between %.1f and %.1f", minDeg, maxDeg))
		}
	}
	if config.MinDeg != nil && *config.MinDeg < 0 {
		return viamutils.NewConfigValidationError(path, errors.New("min_angle_deg cannot be lower than 0"))
	}
	if minDeg >= maxDeg {
		return viamutils.NewConfigValidationError(path,
			errors.Errorf("min_angle_deg %.1f must be below max_angle_deg %.1f", minDeg, maxDeg))
	}
	if config.MinWidthUS != nil && *config.MinWidthUS < minWidthUs {
		return viamutils.NewConfigValidationError(path, errors.Errorf("min_width_us cannot be lower than %d", minWidthUs))
	}
	if config.MaxWidthUS != nil && *config.MaxWidthUS > maxWidthUs {
		return viamutils.NewConfigValidationError(path, errors.Errorf("max_width_us cannot be higher than %d", maxWidthUs))
	}
	if config.Frequency != nil && (*config.Frequency > 450 || *config.Frequency == 0) {
		return viamutils.NewConfigValidationError(path,
			errors.Errorf("frequency_hz should not be above 450Hz or 0, have %d", *config.Frequency))
	}
	return nil
}

func (config *Config) degrees() (float64, float64) {
	minDeg, maxDeg := defaultMinDeg, defaultMaxDeg
	if config.MinDeg != nil {
		minDeg = *config.MinDeg
	}
	if config.MaxDeg != nil {
		maxDeg = *config.MaxDeg
	}
	return minDeg, maxDeg
}

type servoGPIO struct {
	pin       board.GPIOPin
	min       float64
	max       float64
	logger    logging.Logger
	opMgr     operation.SingleOperationManager
	frequency uint
	minUs     uint
	maxUs     uint

	mu      sync.Mutex
	pwmRes  uint
	currPct float64
}

// NewServo returns a servo on the configured pin of b, moved to its starting position. If no
// resolution is configured the PWM resolution of the pin is probed.
func NewServo(ctx context.Context, name string, b board.Board, conf *Config, logger logging.Logger) (servo.Servo, error) {
	if err := conf.Validate(name); err != nil {
		return nil, err
	}
	pin, err := b.GPIOPinByName(conf.Pin)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't get servo pin")
	}

	frequency := defaultFreqHz
	if conf.Frequency != nil {
		frequency = *conf.Frequency
	}
	if err := pin.SetPWMFreq(ctx, frequency, nil); err != nil {
		return nil, errors.Wrap(err, "error setting servo pin frequency")
	}

	minDeg, maxDeg := conf.degrees()
	startPos := (minDeg + maxDeg) / 2
	if conf.StartPos != nil {
		startPos = *conf.StartPos
	}
	minUs := minWidthUs
	maxUs := maxWidthUs
	if conf.MinWidthUS != nil {
		minUs = *conf.MinWidthUS
	}
	if conf.MaxWidthUS != nil {
		maxUs = *conf.MaxWidthUS
	}

	s := &servoGPIO{
		min:       minDeg,
		max:       maxDeg,
		frequency: frequency,
		pin:       pin,
		logger:    logger,
		minUs:     minUs,
		maxUs:     maxUs,
	}
	if conf.Resolution != nil {
		s.pwmRes = *conf.Resolution
	}

	if err := s.Move(ctx, startPos); err != nil {
		return nil, errors.Wrap(err, "couldn't move servo to start position")
	}
	if s.pwmRes == 0 {
		if err := s.findPWMResolution(ctx); err != nil {
			return nil, errors.Wrap(err, "failed to guess the pwm resolution")
		}
		if err := s.Move(ctx, startPos); err != nil {
			return nil, errors.Wrap(err, "couldn't move servo to start position")
		}
	}
	return s, nil
}

// Given minUs, maxUs, deg and frequency attempt to calculate the corresponding duty cycle pct.
func mapDegToDutyCylePct(minUs, maxUs uint, minDeg, maxDeg, deg float64, frequency uint) float64 {
	period := 1.0 / float64(frequency) // dutyCycle in s
	degRange := maxDeg - minDeg        // servo moves from minDeg to maxDeg
	uSRange := float64(maxUs - minUs)  // pulse width between minUs to maxUs

	scale := uSRange / degRange

	pwmWidthUs := float64(minUs) + (deg-minDeg)*scale
	return (pwmWidthUs / (1000 * 1000)) / period
}

// Given minUs, maxUs, deg and frequency returns the corresponding duty cycle pct.
func mapDutyCylePctToDeg(minUs, maxUs uint, minDeg, maxDeg, pct float64, frequency uint) float64 {
	period := 1.0 / float64(frequency) // dutyCycle in s
	pwmWidthUs := pct * period * 1000 * 1000
	degRange := maxDeg - minDeg       // servo moves from minDeg to maxDeg
	uSRange := float64(maxUs - minUs) // pulse width between minUs to maxUs

	pwmWidthUs = math.Max(float64(minUs), pwmWidthUs)
	pwmWidthUs = math.Min(float64(maxUs), pwmWidthUs)

	scale := degRange / uSRange

	return minDeg + (pwmWidthUs-float64(minUs))*scale
}

// Attempt to find the PWM resolution assuming a hardware PWM
//
//  1. assume a resolution of any 16,15,14,12,or 8 bit timer
//
//  2. Starting from the current PWM duty cycle we increase the duty cycle by
//     1/(1<<resolution) and check each new resolution until the returned duty cycle changes
//
//     if both the expected duty cycle and returned duty cycle are different we approximate
//     the resolution
func (s *servoGPIO) findPWMResolution(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	periodUs := (1.0 / float64(s.frequency)) * 1000 * 1000
	currPct := s.currPct
	realPct, err := s.pin.PWM(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "couldn't find PWM resolution")
	}
	dir := 1.0
	lDist := s.currPct*periodUs - float64(s.minUs)
	rDist := float64(s.maxUs) - s.currPct*periodUs
	if lDist > rDist {
		dir = -1.0
	}

	if realPct != currPct {
		if err := s.pin.SetPWM(ctx, realPct, nil); err != nil {
			return errors.Wrap(err, "couldn't set PWM to realPct")
		}
		r2, err := s.pin.PWM(ctx, nil)
		if err != nil {
			return errors.Wrap(err, "couldn't find PWM resolution")
		}
		if r2 != realPct {
			return errors.Errorf("giving up searching for the resolution tried to match %.7f but got %.7f", realPct, r2)
		}
		currPct = r2
	}
	resolution := []int{16, 15, 14, 12, 8}
	for _, r := range resolution {
		val := (1 << r) - 1
		pct := currPct + dir*1/float64(val)
		err := s.pin.SetPWM(ctx, pct, nil)
		if err != nil {
			return errors.Wrap(err, "couldn't search for PWM resolution")
		}
		if !viamutils.SelectContextOrWait(ctx, 3*time.Millisecond) {
			return errors.New("context canceled while looking for servo's PWM resolution")
		}
		realPct, err := s.pin.PWM(ctx, nil)
		s.logger.Debugf("starting step %d currPct %.7f target Pct %.14f realPct %.14f", val, currPct, pct, realPct)
		if err != nil {
			return errors.Wrap(err, "couldn't find PWM find servo PWM resolution")
		}
		if realPct != currPct {
			if realPct == pct {
				s.pwmRes = uint(val)
			} else {
				val = int(math.Abs(math.Round(1 / (currPct - realPct))))
				s.logger.Debugf("the servo moved but the expected duty cyle (%.7f) is not the one reported (%.7f) we are guessing %d",
					pct, realPct, val)
				s.pwmRes = uint(val)
			}
			break
		}
	}
	return nil
}

// Move moves the servo to the given angle, clamped to its travel.
// This will block until done or a new operation cancels this one.
func (s *servoGPIO) Move(ctx context.Context, angle float64) error {
	ctx, done := s.opMgr.New(ctx)
	defer done()
	if math.IsNaN(angle) {
		angle = (s.min + s.max) / 2
	}
	angle = math.Max(s.min, math.Min(s.max, angle))
	pct := mapDegToDutyCylePct(s.minUs, s.maxUs, s.min, s.max, angle, s.frequency)
	return s.setPct(ctx, pct, "couldn't move the servo")
}

// SetPulseWidth writes a raw pulse width, clamped to the servo's pulse range.
func (s *servoGPIO) SetPulseWidth(ctx context.Context, widthUs float64) error {
	ctx, done := s.opMgr.New(ctx)
	defer done()
	widthUs = math.Max(float64(s.minUs), math.Min(float64(s.maxUs), widthUs))
	return s.setPct(ctx, board.PulseWidthToDutyCycle(widthUs, s.frequency), "couldn't set the servo pulse")
}

func (s *servoGPIO) setPct(ctx context.Context, pct float64, msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pwmRes != 0 {
		realTick := math.Round(pct * float64(s.pwmRes))
		pct = realTick / float64(s.pwmRes)
	}
	if err := s.pin.SetPWM(ctx, pct, nil); err != nil {
		return errors.Wrap(err, msg)
	}
	s.currPct = pct
	return nil
}

// Position returns the current set angle (degrees) of the servo.
func (s *servoGPIO) Position(ctx context.Context) (float64, error) {
	pct, err := s.pin.PWM(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "couldn't get servo pin duty cycle")
	}
	return mapDutyCylePctToDeg(s.minUs, s.maxUs, s.min, s.max, pct, s.frequency), nil
}

// Stop stops the servo. It is assumed the servo stops immediately.
func (s *servoGPIO) Stop(ctx context.Context) error {
	ctx, done := s.opMgr.New(ctx)
	defer done()
	if err := s.pin.SetPWM(ctx, 0.0, nil); err != nil {
		return errors.Wrap(err, "couldn't stop servo")
	}
	return nil
}
