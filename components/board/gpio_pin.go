package board

import "context"

// A GPIOPin represents an individual GPIO pin on a board.
type GPIOPin interface {
	// Set sets the pin to either low or high.
	Set(ctx context.Context, high bool, extra map[string]interface{}) error

	// Get gets the high/low state of the pin.
	Get(ctx context.Context, extra map[string]interface{}) (bool, error)

	// PWM gets the pin's given duty cycle.
	PWM(ctx context.Context, extra map[string]interface{}) (float64, error)

	// SetPWM sets the pin to the given duty cycle.
	SetPWM(ctx context.Context, dutyCyclePct float64, extra map[string]interface{}) error

	// PWMFreq gets the PWM frequency of the pin.
	PWMFreq(ctx context.Context, extra map[string]interface{}) (uint, error)

	// SetPWMFreq sets the given pin to the given PWM frequency. 0 will use the board's default PWM frequency.
	SetPWMFreq(ctx context.Context, freqHz uint, extra map[string]interface{}) error
}

// PulseWidthToDutyCycle converts a pulse width in microseconds at freqHz to a duty cycle in [0, 1].
func PulseWidthToDutyCycle(widthUs float64, freqHz uint) float64 {
	if freqHz == 0 {
		return 0
	}
	periodUs := 1e6 / float64(freqHz)
	pct := widthUs / periodUs
	if pct < 0 {
		return 0
	}
	if pct > 1 {
		return 1
	}
	return pct
}

// DutyCycleToPulseWidth converts a duty cycle at freqHz back to a pulse width in microseconds.
func DutyCycleToPulseWidth(pct float64, freqHz uint) float64 {
	if freqHz == 0 {
		return 0
	}
	return pct * 1e6 / float64(freqHz)
}
