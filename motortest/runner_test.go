package motortest_test

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.viam.com/test"
	"go.viam.com/utils/testutils"

	"go.viam.com/kestrel/logging"
	"go.viam.com/kestrel/motors"
	"go.viam.com/kestrel/motortest"
	"go.viam.com/kestrel/testutils/inject"
)

func setup(t *testing.T) (*motors.Kestrel, *inject.Driver, *clock.Mock, *motortest.Runner) {
	t.Helper()
	logger := logging.NewTestLogger(t)
	driver := &inject.Driver{}
	k := motors.NewKestrel(logger, driver, motors.WithUpdateRate(50))
	test.That(t, k.Init(motors.FrameClassKestrel, motors.FrameTypePlus), test.ShouldBeNil)
	mock := clock.NewMock()
	r := motortest.NewRunner(k, logger, mock)
	t.Cleanup(r.Close)
	return k, driver, mock, r
}

func runAsync(ctx context.Context, r *motortest.Runner, req motortest.Request) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- r.Run(ctx, req)
	}()
	return errCh
}

// advance moves the mock clock until the run returns.
func advance(t *testing.T, mock *clock.Mock, errCh <-chan error) error {
	t.Helper()
	for i := 0; i < 1000; i++ {
		select {
		case err := <-errCh:
			return err
		default:
		}
		mock.Add(100 * time.Millisecond)
	}
	t.Fatal("motor test never returned")
	return nil
}

func waitForTest(t *testing.T, k *motors.Kestrel, driver *inject.Driver, ch motors.Channel, pwm float64) {
	t.Helper()
	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		test.That(tb, k.Mode(), test.ShouldEqual, motors.ModeTest)
		cmd, ok := driver.Value(ch)
		test.That(tb, ok, test.ShouldBeTrue)
		test.That(tb, cmd.Kind, test.ShouldEqual, motors.CommandRawPWM)
		test.That(tb, cmd.Value, test.ShouldEqual, pwm)
	})
}

func TestRun(t *testing.T) {
	k, driver, mock, r := setup(t)

	errCh := runAsync(context.Background(), r, motortest.Request{Seq: 1, PWM: 1300, Duration: 2 * time.Second})
	waitForTest(t, k, driver, motors.ChannelMotorFore, 1300)
	test.That(t, r.Running(), test.ShouldBeTrue)
	test.That(t, len(r.Operations()), test.ShouldEqual, 1)
	test.That(t, r.Operations()[0].HasLabel(motortest.OperationLabel), test.ShouldBeTrue)

	before := len(driver.Writes())
	test.That(t, advance(t, mock, errCh), test.ShouldBeNil)
	// the test command is refreshed every period
	test.That(t, len(driver.Writes()), test.ShouldBeGreaterThan, before+1)

	test.That(t, k.Mode(), test.ShouldEqual, motors.ModeDisarmed)
	test.That(t, r.Running(), test.ShouldBeFalse)
	test.That(t, r.Operations(), test.ShouldBeEmpty)
	cmd, ok := driver.Value(motors.ChannelMotorFore)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, cmd.Kind, test.ShouldEqual, motors.CommandThrust)
	test.That(t, cmd.Value, test.ShouldEqual, 0.0)
}

func TestRunRejected(t *testing.T) {
	k, driver, _, r := setup(t)

	err := r.Run(context.Background(), motortest.Request{Seq: 1, PWM: 1300})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "duration")

	err = r.Run(context.Background(), motortest.Request{Seq: 9, PWM: 1300, Duration: time.Second})
	test.That(t, errors.Is(err, motors.ErrInvalidTestSequence), test.ShouldBeTrue)
	test.That(t, k.Mode(), test.ShouldEqual, motors.ModeDisarmed)
	_, ok := driver.Value(motors.ChannelMotorFore)
	test.That(t, ok, test.ShouldBeTrue)

	test.That(t, k.Arm(), test.ShouldBeNil)
	err = r.Run(context.Background(), motortest.Request{Seq: 1, PWM: 1300, Duration: time.Second})
	test.That(t, errors.Is(err, motors.ErrModeConflict), test.ShouldBeTrue)
	test.That(t, k.Mode(), test.ShouldEqual, motors.ModeArmedStabilizing)
}

func TestNewRunCancelsOld(t *testing.T) {
	k, driver, mock, r := setup(t)

	first := runAsync(context.Background(), r, motortest.Request{Seq: 1, PWM: 1300, Duration: time.Hour})
	waitForTest(t, k, driver, motors.ChannelMotorFore, 1300)

	second := runAsync(context.Background(), r, motortest.Request{Seq: 2, PWM: 1600, Duration: time.Second})
	err := <-first
	test.That(t, errors.Is(err, context.Canceled), test.ShouldBeTrue)

	waitForTest(t, k, driver, motors.ChannelMotorRight, 1600)
	test.That(t, advance(t, mock, second), test.ShouldBeNil)
	test.That(t, k.Mode(), test.ShouldEqual, motors.ModeDisarmed)
}

func TestStartAndCancel(t *testing.T) {
	k, driver, _, r := setup(t)

	test.That(t, r.Start(motortest.Request{Seq: 4, PWM: 1500, Duration: time.Hour}), test.ShouldBeTrue)
	waitForTest(t, k, driver, motors.ChannelVaneFore, 1500)

	r.Cancel()
	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		test.That(tb, k.Mode(), test.ShouldEqual, motors.ModeDisarmed)
		test.That(tb, r.Running(), test.ShouldBeFalse)
	})

	r.Close()
	test.That(t, r.Start(motortest.Request{Seq: 1, PWM: 1500, Duration: time.Second}), test.ShouldBeFalse)
}
