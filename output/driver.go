// Package output writes actuator commands to ESC motors and vane servos on a board.
package output

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"go.viam.com/kestrel/components/board"
	"go.viam.com/kestrel/components/motor"
	"go.viam.com/kestrel/components/motor/esc"
	"go.viam.com/kestrel/components/servo"
	"go.viam.com/kestrel/components/servo/gpio"
	"go.viam.com/kestrel/logging"
	"go.viam.com/kestrel/motors"
	"go.viam.com/kestrel/utils"
)

// Config assigns an ESC or a servo to each logical channel.
type Config struct {
	Motors map[motors.Channel]esc.Config
	Vanes  map[motors.Channel]gpio.Config
}

// PWMDriver is a motors.Driver over PWM pins.
type PWMDriver struct {
	mu     sync.Mutex
	motors map[motors.Channel]motor.Motor
	servos map[motors.Channel]servo.Servo
	logger logging.Logger

	cancelCtx  context.Context
	cancelFunc context.CancelFunc
}

var (
	_ motors.Driver     = (*PWMDriver)(nil)
	_ motors.RateSetter = (*PWMDriver)(nil)
)

// NewPWMDriver returns a driver over already constructed actuators.
func NewPWMDriver(
	logger logging.Logger,
	motorsByChannel map[motors.Channel]motor.Motor,
	servosByChannel map[motors.Channel]servo.Servo,
) *PWMDriver {
	cancelCtx, cancelFunc := context.WithCancel(context.Background())
	return &PWMDriver{
		motors:     lo.Assign(motorsByChannel),
		servos:     lo.Assign(servosByChannel),
		logger:     logger,
		cancelCtx:  cancelCtx,
		cancelFunc: cancelFunc,
	}
}

// New builds the ESCs and servos described by conf on b.
func New(ctx context.Context, b board.Board, conf Config, logger logging.Logger) (*PWMDriver, error) {
	if shared := lo.Intersect(lo.Keys(conf.Motors), lo.Keys(conf.Vanes)); len(shared) > 0 {
		return nil, errors.Errorf("channel %s has both a motor and a vane", shared[0])
	}
	ms := map[motors.Channel]motor.Motor{}
	ss := map[motors.Channel]servo.Servo{}
	guard := utils.NewGuard(func() {
		if err := stopAll(ctx, ms, ss); err != nil {
			logger.Warnw("failed to stop partially built outputs", "error", err)
		}
	})
	defer guard.OnFail()

	for _, ch := range sortedChannels(lo.Keys(conf.Motors)) {
		c := conf.Motors[ch]
		m, err := esc.NewMotor(ctx, ch.String(), b, &c, logger.Sublogger(ch.String()))
		if err != nil {
			return nil, err
		}
		ms[ch] = m
	}
	for _, ch := range sortedChannels(lo.Keys(conf.Vanes)) {
		c := conf.Vanes[ch]
		s, err := gpio.NewServo(ctx, ch.String(), b, &c, logger.Sublogger(ch.String()))
		if err != nil {
			return nil, err
		}
		ss[ch] = s
	}
	guard.Success()
	return NewPWMDriver(logger, ms, ss), nil
}

// Write sends every command to its actuator. A failing channel does not stop the others.
func (d *PWMDriver) Write(cmds []motors.ChannelCommand) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var errs error
	for _, cmd := range cmds {
		errs = multierr.Append(errs, d.writeLocked(d.cancelCtx, cmd))
	}
	return errs
}

func (d *PWMDriver) writeLocked(ctx context.Context, cmd motors.ChannelCommand) error {
	m, isMotor := d.motors[cmd.Channel]
	s, isServo := d.servos[cmd.Channel]
	switch {
	case cmd.Kind == motors.CommandThrust && isMotor:
		return m.SetThrust(ctx, cmd.Value)
	case cmd.Kind == motors.CommandAngle && isServo:
		return s.Move(ctx, cmd.Value)
	case cmd.Kind == motors.CommandRawPWM && isMotor:
		return m.SetPulseWidth(ctx, cmd.Value)
	case cmd.Kind == motors.CommandRawPWM && isServo:
		return s.SetPulseWidth(ctx, cmd.Value)
	case !isMotor && !isServo:
		return errors.Errorf("no actuator on channel %s", cmd.Channel)
	}
	return errors.Errorf("%s command not supported on channel %s", cmd.Kind, cmd.Channel)
}

// SetRate changes the refresh rate of the motors in mask.
func (d *PWMDriver) SetRate(mask uint32, hz int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if hz <= 0 {
		return errors.Errorf("invalid rate %d Hz", hz)
	}
	var errs error
	for _, ch := range sortedChannels(lo.Keys(d.motors)) {
		if mask&ch.Bit() == 0 {
			continue
		}
		errs = multierr.Append(errs, d.motors[ch].SetUpdateRate(d.cancelCtx, uint(hz)))
	}
	return errs
}

// Channels returns the channels with an actuator, in order.
func (d *PWMDriver) Channels() []motors.Channel {
	d.mu.Lock()
	defer d.mu.Unlock()
	return sortedChannels(append(lo.Keys(d.motors), lo.Keys(d.servos)...))
}

// Close stops every actuator.
func (d *PWMDriver) Close(ctx context.Context) error {
	d.cancelFunc()
	d.mu.Lock()
	defer d.mu.Unlock()
	return stopAll(ctx, d.motors, d.servos)
}

func stopAll(ctx context.Context, ms map[motors.Channel]motor.Motor, ss map[motors.Channel]servo.Servo) error {
	var errs error
	for _, ch := range sortedChannels(lo.Keys(ms)) {
		errs = multierr.Append(errs, ms[ch].Stop(ctx))
	}
	for _, ch := range sortedChannels(lo.Keys(ss)) {
		errs = multierr.Append(errs, ss[ch].Stop(ctx))
	}
	return errs
}

func sortedChannels(chs []motors.Channel) []motors.Channel {
	sort.Slice(chs, func(i, j int) bool { return chs[i] < chs[j] })
	return chs
}
