// Package esc implements a motor driven by a PWM electronic speed controller on a GPIO pin.
package esc

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	viamutils "go.viam.com/utils"

	"go.viam.com/kestrel/components/board"
	"go.viam.com/kestrel/components/motor"
	"go.viam.com/kestrel/logging"
)

const (
	defaultMinWidthUs  uint = 1000
	defaultMaxWidthUs  uint = 2000
	defaultFrequencyHz uint = 490
	minWidthUs         uint = 500  // absolute minimum pwm width
	maxWidthUs         uint = 2500 // absolute maximum pwm width
)

// Config describes one ESC output.
type Config struct {
	Pin string `json:"pin"`
	// MinWidthUS is the pulse for zero thrust.
	MinWidthUS *uint `json:"min_width_us,omitempty"`
	// MaxWidthUS is the pulse for full thrust.
	MaxWidthUS *uint `json:"max_width_us,omitempty"`
	// FrequencyHz is the ESC refresh rate.
	FrequencyHz *uint `json:"frequency_hz,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (config *Config) Validate(path string) error {
	if config.Pin == "" {
		return viamutils.NewConfigValidationFieldRequiredError(path, "pin")
	}
	if config.MinWidthUS != nil && *config.MinWidthUS < minWidthUs {
		return viamutils.NewConfigValidationError(path, errors.Errorf("min_width_us cannot be lower than %d", minWidthUs))
	}
	if config.MaxWidthUS != nil && *config.MaxWidthUS > maxWidthUs {
		return viamutils.NewConfigValidationError(path, errors.Errorf("max_width_us cannot be higher than %d", maxWidthUs))
	}
	minUs, maxUs := config.widths()
	if minUs >= maxUs {
		return viamutils.NewConfigValidationError(path, motor.NewPulseWidthRangeError(path, minUs, maxUs))
	}
	if config.FrequencyHz != nil && (*config.FrequencyHz == 0 || 1e6/float64(*config.FrequencyHz) < float64(maxUs)) {
		return viamutils.NewConfigValidationError(path,
			errors.Errorf("frequency_hz %d leaves no room for a %dus pulse", *config.FrequencyHz, maxUs))
	}
	return nil
}

func (config *Config) widths() (uint, uint) {
	minUs, maxUs := defaultMinWidthUs, defaultMaxWidthUs
	if config.MinWidthUS != nil {
		minUs = *config.MinWidthUS
	}
	if config.MaxWidthUS != nil {
		maxUs = *config.MaxWidthUS
	}
	return minUs, maxUs
}

type escMotor struct {
	name      string
	pin       board.GPIOPin
	logger    logging.Logger
	minUs     uint
	maxUs     uint
	mu        sync.Mutex
	frequency uint
	thrust    float64
}

// NewMotor returns an ESC motor on the configured pin of b, stopped.
func NewMotor(ctx context.Context, name string, b board.Board, conf *Config, logger logging.Logger) (motor.Motor, error) {
	if err := conf.Validate(name); err != nil {
		return nil, err
	}
	pin, err := b.GPIOPinByName(conf.Pin)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't get esc pin")
	}
	minUs, maxUs := conf.widths()
	m := &escMotor{
		name:   name,
		pin:    pin,
		logger: logger,
		minUs:  minUs,
		maxUs:  maxUs,
	}
	frequency := defaultFrequencyHz
	if conf.FrequencyHz != nil {
		frequency = *conf.FrequencyHz
	}
	if err := m.SetUpdateRate(ctx, frequency); err != nil {
		return nil, err
	}
	if err := m.Stop(ctx); err != nil {
		return nil, errors.Wrap(err, "couldn't stop esc")
	}
	return m, nil
}

// mapThrustToWidthUs maps a thrust in [0, 1] linearly onto the pulse range.
func mapThrustToWidthUs(minUs, maxUs uint, thrust float64) float64 {
	return float64(minUs) + motor.ClampThrust(thrust)*float64(maxUs-minUs)
}

// mapWidthUsToThrust is the inverse of mapThrustToWidthUs.
func mapWidthUsToThrust(minUs, maxUs uint, widthUs float64) float64 {
	return motor.ClampThrust((widthUs - float64(minUs)) / float64(maxUs-minUs))
}

func (m *escMotor) SetThrust(ctx context.Context, thrust float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	thrust = motor.ClampThrust(thrust)
	if err := m.writeWidthLocked(ctx, mapThrustToWidthUs(m.minUs, m.maxUs, thrust)); err != nil {
		return err
	}
	m.thrust = thrust
	return nil
}

func (m *escMotor) Thrust(ctx context.Context) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.thrust, nil
}

func (m *escMotor) SetPulseWidth(ctx context.Context, widthUs float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if widthUs < float64(minWidthUs) {
		widthUs = float64(minWidthUs)
	}
	if widthUs > float64(maxWidthUs) {
		widthUs = float64(maxWidthUs)
	}
	if err := m.writeWidthLocked(ctx, widthUs); err != nil {
		return err
	}
	m.thrust = mapWidthUsToThrust(m.minUs, m.maxUs, widthUs)
	return nil
}

func (m *escMotor) SetUpdateRate(ctx context.Context, hz uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hz == 0 || 1e6/float64(hz) < float64(m.maxUs) {
		return motor.NewUpdateRateError(m.name, hz, m.maxUs)
	}
	if err := m.pin.SetPWMFreq(ctx, hz, nil); err != nil {
		return errors.Wrap(err, "error setting esc pin frequency")
	}
	m.frequency = hz
	return m.writeWidthLocked(ctx, mapThrustToWidthUs(m.minUs, m.maxUs, m.thrust))
}

func (m *escMotor) Stop(ctx context.Context) error {
	return m.SetThrust(ctx, 0)
}

func (m *escMotor) writeWidthLocked(ctx context.Context, widthUs float64) error {
	if err := m.pin.SetPWM(ctx, board.PulseWidthToDutyCycle(widthUs, m.frequency), nil); err != nil {
		return errors.Wrapf(err, "couldn't set esc %s pulse", m.name)
	}
	return nil
}
