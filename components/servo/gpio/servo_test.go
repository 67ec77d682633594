package gpio

import (
	"context"
	"testing"

	"go.viam.com/test"

	"go.viam.com/kestrel/components/board"
	"go.viam.com/kestrel/components/board/fake"
	"go.viam.com/kestrel/logging"
)

func ptr[T any](v T) *T {
	return &v
}

func TestValidate(t *testing.T) {
	conf := Config{}
	err := conf.Validate("vanes.fore")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "pin")

	conf.Pin = "33"
	test.That(t, conf.Validate("vanes.fore"), test.ShouldBeNil)

	conf.StartPos = ptr(10.0)
	test.That(t, conf.Validate("vanes.fore").Error(), test.ShouldContainSubstring, "starting_position_deg")
	conf.StartPos = nil

	conf.MinDeg, conf.MaxDeg = ptr(120.0), ptr(100.0)
	test.That(t, conf.Validate("vanes.fore").Error(), test.ShouldContainSubstring, "must be below")
	conf.MinDeg, conf.MaxDeg = nil, nil

	conf.Frequency = ptr[uint](490)
	test.That(t, conf.Validate("vanes.fore").Error(), test.ShouldContainSubstring, "450Hz")
	conf.Frequency = nil

	conf.MinWidthUS = ptr[uint](100)
	test.That(t, conf.Validate("vanes.fore").Error(), test.ShouldContainSubstring, "min_width_us")
}

func TestDegreeMapping(t *testing.T) {
	// 20..200 degrees over 1000..2000us at 50Hz
	pct := mapDegToDutyCylePct(1000, 2000, 20, 200, 110, 50)
	test.That(t, pct, test.ShouldAlmostEqual, 0.075, 1e-12)
	test.That(t, mapDutyCylePctToDeg(1000, 2000, 20, 200, pct, 50), test.ShouldAlmostEqual, 110, 1e-9)

	test.That(t, mapDegToDutyCylePct(1000, 2000, 20, 200, 20, 50), test.ShouldAlmostEqual, 0.05, 1e-12)
	test.That(t, mapDegToDutyCylePct(1000, 2000, 20, 200, 200, 50), test.ShouldAlmostEqual, 0.1, 1e-12)

	// out of range duty cycles read back as the travel limits
	test.That(t, mapDutyCylePctToDeg(1000, 2000, 20, 200, 0.01, 50), test.ShouldAlmostEqual, 20, 1e-9)
	test.That(t, mapDutyCylePctToDeg(1000, 2000, 20, 200, 0.5, 50), test.ShouldAlmostEqual, 200, 1e-9)
}

func TestServo(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewTestLogger(t)
	b := fake.NewBoard(logger)

	conf := &Config{
		Pin:        "33",
		MinWidthUS: ptr[uint](1000),
		MaxWidthUS: ptr[uint](2000),
	}
	s, err := NewServo(ctx, "vane-fore", b, conf, logger)
	test.That(t, err, test.ShouldBeNil)

	freq, err := b.Pin("33").PWMFreq(ctx, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, freq, test.ShouldEqual, defaultFreqHz)

	// starts at the middle of the travel
	pos, err := s.Position(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pos, test.ShouldAlmostEqual, 110, 0.05)

	test.That(t, s.Move(ctx, 155), test.ShouldBeNil)
	pos, err = s.Position(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pos, test.ShouldAlmostEqual, 155, 0.05)

	test.That(t, s.Move(ctx, 500), test.ShouldBeNil)
	pos, _ = s.Position(ctx)
	test.That(t, pos, test.ShouldAlmostEqual, 200, 0.05)

	test.That(t, s.SetPulseWidth(ctx, 1000), test.ShouldBeNil)
	pct, _ := b.Pin("33").PWM(ctx, nil)
	test.That(t, board.DutyCycleToPulseWidth(pct, freq), test.ShouldAlmostEqual, 1000, 1)
	pos, _ = s.Position(ctx)
	test.That(t, pos, test.ShouldAlmostEqual, 20, 0.05)

	test.That(t, s.Stop(ctx), test.ShouldBeNil)
	pct, _ = b.Pin("33").PWM(ctx, nil)
	test.That(t, pct, test.ShouldEqual, 0.0)
}

func TestServoWithResolution(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewTestLogger(t)
	b := fake.NewBoard(logger)

	conf := &Config{Pin: "12", Resolution: ptr[uint](255)}
	s, err := NewServo(ctx, "vane-left", b, conf, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, s.Move(ctx, 90), test.ShouldBeNil)

	pct, _ := b.Pin("12").PWM(ctx, nil)
	ticks := pct * 255
	test.That(t, ticks, test.ShouldAlmostEqual, float64(int(ticks+0.5)), 1e-9)
	// only the start position and the move, no resolution probing
	test.That(t, b.Pin("12").PWMWrites(), test.ShouldEqual, 2)
}
