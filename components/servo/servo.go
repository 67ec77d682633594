// Package servo defines angular servos such as the thrust vanes of a frame.
package servo

import "context"

// A Servo moves to a commanded angle in degrees.
type Servo interface {
	// Move moves the servo to the given angle in degrees. Angles outside the servo's travel are
	// clamped. This will block until done or a new operation cancels this one.
	Move(ctx context.Context, angleDeg float64) error

	// Position returns the current set angle in degrees.
	Position(ctx context.Context) (float64, error)

	// SetPulseWidth writes a raw pulse width in microseconds.
	SetPulseWidth(ctx context.Context, widthUs float64) error

	// Stop stops driving the servo.
	Stop(ctx context.Context) error
}
