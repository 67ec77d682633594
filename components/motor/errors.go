package motor

import "github.com/pkg/errors"

// NewUpdateRateError returns an error for an ESC refresh rate whose period is shorter than the
// longest pulse.
func NewUpdateRateError(motorName string, hz, maxWidthUs uint) error {
	return errors.Errorf("motor %s cannot run at %d Hz: a %dus pulse does not fit the period", motorName, hz, maxWidthUs)
}

// NewPulseWidthRangeError returns an error for a pulse width range that is empty or inverted.
func NewPulseWidthRangeError(motorName string, minUs, maxUs uint) error {
	return errors.Errorf("motor %s pulse range %d-%dus is empty", motorName, minUs, maxUs)
}
