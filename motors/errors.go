package motors

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrConfigurationInvalid is matched by every ConfigurationInvalidError.
	ErrConfigurationInvalid = errors.New("configuration invalid")
	// ErrModeConflict is matched by every ModeConflictError.
	ErrModeConflict = errors.New("mode conflict")
	// ErrConfigurationLocked is the cause of a reconfiguration attempted while armed or testing.
	ErrConfigurationLocked = errors.New("configuration locked")
	// ErrUnsupportedFrame is the cause of a ConfigurationInvalidError for an unknown frame.
	ErrUnsupportedFrame = errors.New("unsupported frame")
	// ErrInvalidVaneRange is the cause of a ConfigurationInvalidError for bad vane travel.
	ErrInvalidVaneRange = errors.New("invalid vane range")
	// ErrInvalidUpdateRate is returned for an output rate outside MinUpdateRateHz-MaxUpdateRateHz.
	ErrInvalidUpdateRate = errors.New("invalid update rate")
	// ErrInvalidTestSequence is returned for a test sequence number with no actuator behind it.
	ErrInvalidTestSequence = errors.New("invalid test sequence")
)

// ConfigurationInvalidError reports a frame or actuator configuration that cannot fly.
type ConfigurationInvalidError struct {
	Reason string
	Err    error
}

func (e *ConfigurationInvalidError) Error() string {
	return e.Reason
}

// Unwrap returns the underlying cause, if any.
func (e *ConfigurationInvalidError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrConfigurationInvalid.
func (e *ConfigurationInvalidError) Is(target error) bool {
	return target == ErrConfigurationInvalid
}

// NewConfigurationInvalidError returns a ConfigurationInvalidError with a formatted reason.
func NewConfigurationInvalidError(format string, args ...interface{}) error {
	return &ConfigurationInvalidError{Reason: fmt.Sprintf(format, args...)}
}

// NewInvalidVaneRangeError returns a ConfigurationInvalidError caused by ErrInvalidVaneRange.
func NewInvalidVaneRangeError(format string, args ...interface{}) error {
	return &ConfigurationInvalidError{Reason: fmt.Sprintf(format, args...), Err: ErrInvalidVaneRange}
}

// NewUnsupportedFrameError returns the error for a frame class and type with no mixing table.
func NewUnsupportedFrameError(class FrameClass, frameType FrameType) error {
	return &ConfigurationInvalidError{
		Reason: fmt.Sprintf("frame class %s with type %s is not supported", class, frameType),
		Err:    ErrUnsupportedFrame,
	}
}

// ModeConflictError reports an operation that the current SystemMode does not allow.
type ModeConflictError struct {
	Op   string
	Mode SystemMode
	Err  error
}

func (e *ModeConflictError) Error() string {
	msg := fmt.Sprintf("%s not permitted while %s", e.Op, e.Mode)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause, if any.
func (e *ModeConflictError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrModeConflict.
func (e *ModeConflictError) Is(target error) bool {
	return target == ErrModeConflict
}

// NewModeConflictError returns the error for op being attempted in mode.
func NewModeConflictError(op string, mode SystemMode) error {
	return &ModeConflictError{Op: op, Mode: mode}
}

// NewConfigurationLockedError returns the error for a reconfiguration attempted in mode.
func NewConfigurationLockedError(mode SystemMode) error {
	return &ModeConflictError{Op: "reconfiguration", Mode: mode, Err: ErrConfigurationLocked}
}

// NewInvalidUpdateRateError returns an error for an output rate outside the supported range.
func NewInvalidUpdateRateError(hz int) error {
	return errors.Wrapf(ErrInvalidUpdateRate, "%d Hz is outside %d-%d Hz", hz, MinUpdateRateHz, MaxUpdateRateHz)
}

// NewInvalidTestSequenceError returns an error for a test sequence number with no actuator.
func NewInvalidTestSequenceError(seq int) error {
	return errors.Wrapf(ErrInvalidTestSequence, "no actuator at sequence %d", seq)
}
