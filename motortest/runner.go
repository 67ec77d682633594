// Package motortest runs timed single-actuator tests on a disarmed frame, one at a time.
package motortest

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/kestrel/logging"
	"go.viam.com/kestrel/motors"
	"go.viam.com/kestrel/operation"
	"go.viam.com/kestrel/utils"
)

// OperationLabel labels every motor test in the operation manager.
const OperationLabel = "motor-test"

// Frame is the part of a motors.Kestrel a test drives.
type Frame interface {
	EnterTestMode() error
	ExitTestMode() error
	OutputTestSeq(seq, pwm int) error
	Output(demand motors.ControlDemand) error
	UpdateRate() int
}

var _ Frame = (*motors.Kestrel)(nil)

// Request is one timed test: actuator seq of the test order held at PWM microseconds.
type Request struct {
	Seq      int
	PWM      int
	Duration time.Duration
}

// Runner runs motor tests. Starting a test cancels the one in progress.
type Runner struct {
	frame  Frame
	logger logging.Logger
	clock  clock.Clock
	ops    *operation.Manager

	single  operation.SingleOperationManager
	runMu   sync.Mutex
	workers *utils.StoppableWorkers
}

// NewRunner returns a Runner for frame. A nil clk uses the wall clock.
func NewRunner(frame Frame, logger logging.Logger, clk clock.Clock) *Runner {
	if clk == nil {
		clk = clock.New()
	}
	return &Runner{
		frame:   frame,
		logger:  logger,
		clock:   clk,
		ops:     operation.NewManager(logger, clk),
		single:  operation.SingleOperationManager{Clock: clk},
		workers: utils.NewStoppableWorkers(),
	}
}

// Run drives req until its duration passes or ctx is done, then leaves test mode with every
// actuator at the safe output.
func (r *Runner) Run(ctx context.Context, req Request) (err error) {
	if req.Duration <= 0 {
		return errors.Errorf("motor test duration must be positive, got %s", req.Duration)
	}
	ctx, done := r.single.New(ctx)
	defer done()

	// a cancelled run must finish exiting test mode before the next one enters it
	r.runMu.Lock()
	defer r.runMu.Unlock()
	if ctx.Err() != nil {
		return ctx.Err()
	}

	ctx, finish := r.ops.Create(ctx, "motortest.Run", req)
	defer finish()
	operation.CancelOtherWithLabel(ctx, OperationLabel)

	if err := r.frame.EnterTestMode(); err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, r.frame.ExitTestMode())
	}()
	if err := r.frame.OutputTestSeq(req.Seq, req.PWM); err != nil {
		return err
	}
	r.logger.Infow("motor test started", "seq", req.Seq, "pwm", req.PWM, "duration", req.Duration)

	ticker := r.clock.Ticker(time.Second / time.Duration(r.frame.UpdateRate()))
	defer ticker.Stop()
	deadline := r.clock.Timer(req.Duration)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Infow("motor test cancelled", "seq", req.Seq)
			return ctx.Err()
		case <-deadline.C:
			r.logger.Infow("motor test finished", "seq", req.Seq)
			return nil
		case <-ticker.C:
			if err := r.frame.Output(motors.ControlDemand{}); err != nil {
				return err
			}
		}
	}
}

// Start runs req in the background. It returns false once the Runner is closed.
func (r *Runner) Start(req Request) bool {
	return r.workers.AddWorkers(func(ctx context.Context) {
		if err := r.Run(ctx, req); err != nil && !errors.Is(err, context.Canceled) {
			r.logger.Warnw("motor test failed", "seq", req.Seq, "error", err)
		}
	})
}

// Cancel stops the test in progress, if any.
func (r *Runner) Cancel() {
	r.single.CancelRunning(context.Background())
}

// Running returns whether a test is in progress.
func (r *Runner) Running() bool {
	return r.single.OpRunning()
}

// Operations returns the tests in progress.
func (r *Runner) Operations() []*operation.Operation {
	return r.ops.All()
}

// Close cancels any test and waits for background runs to return.
func (r *Runner) Close() {
	r.workers.Stop()
}
