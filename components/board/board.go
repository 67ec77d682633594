// Package board defines the boards and pins that actuator outputs are written to.
package board

import (
	"github.com/pkg/errors"
)

// A Board exposes PWM capable GPIO pins by name.
type Board interface {
	// GPIOPinByName returns a GPIOPin by name.
	GPIOPinByName(name string) (GPIOPin, error)
}

// NewPinNotFoundError returns the error for a pin name the board does not have.
func NewPinNotFoundError(name string) error {
	return errors.Errorf("pin %q not found", name)
}
