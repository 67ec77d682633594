// Package fake implements a fake board.
package fake

import (
	"context"
	"sync"

	"go.viam.com/kestrel/components/board"
	"go.viam.com/kestrel/logging"
)

// Board is a board whose pins read back the values written to them. Pins are created on first
// use unless the board was built with a fixed pin list.
type Board struct {
	mu       sync.Mutex
	GPIOPins map[string]*GPIOPin
	fixed    bool
	logger   logging.Logger
}

// NewBoard returns a fake board. If pinNames is not empty only those pins exist.
func NewBoard(logger logging.Logger, pinNames ...string) *Board {
	b := &Board{
		GPIOPins: map[string]*GPIOPin{},
		fixed:    len(pinNames) > 0,
		logger:   logger,
	}
	for _, name := range pinNames {
		b.GPIOPins[name] = &GPIOPin{}
	}
	return b
}

var _ = board.Board(&Board{})

// GPIOPinByName returns the GPIO pin by the given name if it exists.
func (b *Board) GPIOPinByName(name string) (board.GPIOPin, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.GPIOPins[name]
	if !ok {
		if b.fixed {
			return nil, board.NewPinNotFoundError(name)
		}
		pin := &GPIOPin{}
		b.GPIOPins[name] = pin
		return pin, nil
	}
	return p, nil
}

// Pin returns the fake pin by name, or nil.
func (b *Board) Pin(name string) *GPIOPin {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.GPIOPins[name]
}

// A GPIOPin reads back the same set values.
type GPIOPin struct {
	high     bool
	pwm      float64
	pwmFreq  uint
	pwmCount int

	mu sync.Mutex
}

// Set sets the pin to either low or high.
func (gp *GPIOPin) Set(ctx context.Context, high bool, extra map[string]interface{}) error {
	gp.mu.Lock()
	defer gp.mu.Unlock()

	gp.high = high
	gp.pwm = 0
	gp.pwmFreq = 0
	return nil
}

// Get gets the high/low state of the pin.
func (gp *GPIOPin) Get(ctx context.Context, extra map[string]interface{}) (bool, error) {
	gp.mu.Lock()
	defer gp.mu.Unlock()

	return gp.high, nil
}

// PWM gets the pin's given duty cycle.
func (gp *GPIOPin) PWM(ctx context.Context, extra map[string]interface{}) (float64, error) {
	gp.mu.Lock()
	defer gp.mu.Unlock()

	return gp.pwm, nil
}

// SetPWM sets the pin to the given duty cycle.
func (gp *GPIOPin) SetPWM(ctx context.Context, dutyCyclePct float64, extra map[string]interface{}) error {
	gp.mu.Lock()
	defer gp.mu.Unlock()

	gp.pwm = dutyCyclePct
	gp.pwmCount++
	return nil
}

// PWMFreq gets the PWM frequency of the pin.
func (gp *GPIOPin) PWMFreq(ctx context.Context, extra map[string]interface{}) (uint, error) {
	gp.mu.Lock()
	defer gp.mu.Unlock()

	return gp.pwmFreq, nil
}

// SetPWMFreq sets the given pin to the given PWM frequency.
func (gp *GPIOPin) SetPWMFreq(ctx context.Context, freqHz uint, extra map[string]interface{}) error {
	gp.mu.Lock()
	defer gp.mu.Unlock()

	gp.pwmFreq = freqHz
	return nil
}

// PWMWrites returns how many times SetPWM was called.
func (gp *GPIOPin) PWMWrites() int {
	gp.mu.Lock()
	defer gp.mu.Unlock()
	return gp.pwmCount
}
