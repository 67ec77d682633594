// Package control ticks a frame's output cycle at a fixed rate.
package control

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.viam.com/utils"

	"go.viam.com/kestrel/logging"
	"go.viam.com/kestrel/motors"
)

// A Cycler runs one output cycle. *motors.Kestrel is a Cycler.
type Cycler interface {
	Output(demand motors.ControlDemand) error
}

var _ Cycler = (*motors.Kestrel)(nil)

// Loop calls a Cycler once per period with the demand of a DemandSource.
type Loop struct {
	cycler Cycler
	source DemandSource
	logger logging.Logger
	clock  clock.Clock
	hz     int
	dt     time.Duration

	mu                      sync.Mutex
	running                 bool
	cancel                  context.CancelFunc
	activeBackgroundWorkers sync.WaitGroup

	statsMu   sync.Mutex
	cycles    uint64
	errs      uint64
	lastErr   error
	lastTick  time.Time
	periods   window
	durations window
}

// NewLoop constructs a loop running at hz. A nil clk uses the wall clock.
func NewLoop(logger logging.Logger, cycler Cycler, source DemandSource, hz int, clk clock.Clock) (*Loop, error) {
	if hz < motors.MinUpdateRateHz || hz > motors.MaxUpdateRateHz {
		return nil, errors.Errorf("loop frequency must be within %d-%d Hz, got %d",
			motors.MinUpdateRateHz, motors.MaxUpdateRateHz, hz)
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Loop{
		cycler: cycler,
		source: source,
		logger: logger,
		clock:  clk,
		hz:     hz,
		dt:     time.Second / time.Duration(hz),
	}, nil
}

// Frequency returns the loop's frequency in hertz.
func (l *Loop) Frequency() int {
	return l.hz
}

// Start starts ticking in the background.
func (l *Loop) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return errors.New("control loop already running")
	}

	l.statsMu.Lock()
	l.lastTick = time.Time{}
	l.periods.reset()
	l.durations.reset()
	l.statsMu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	ticker := l.clock.Ticker(l.dt)
	l.logger.Infow("running loop", "hz", l.hz, "period", l.dt)

	l.activeBackgroundWorkers.Add(1)
	utils.ManagedGo(func() {
		for {
			select {
			case <-ctx.Done():
				return
			case t := <-ticker.C:
				l.Step(ctx, t)
			}
		}
	}, func() {
		ticker.Stop()
		l.activeBackgroundWorkers.Done()
	})
	l.running = true
	return nil
}

// Step runs a single cycle as if ticked at t.
func (l *Loop) Step(ctx context.Context, t time.Time) {
	demand := l.source.Demand(ctx)
	start := l.clock.Now()
	err := l.cycler.Output(demand)
	elapsed := l.clock.Since(start)

	l.statsMu.Lock()
	defer l.statsMu.Unlock()
	l.cycles++
	if !l.lastTick.IsZero() {
		l.periods.add(t.Sub(l.lastTick))
	}
	l.lastTick = t
	l.durations.add(elapsed)

	if err != nil {
		l.errs++
		if l.lastErr == nil || l.lastErr.Error() != err.Error() {
			l.logger.Warnw("output cycle failed", "error", err)
		}
	} else if l.lastErr != nil {
		l.logger.Infow("output cycle recovered", "failed_cycles", l.errs)
	}
	l.lastErr = err
}

// Stats returns counters and timing for the recent cycles.
func (l *Loop) Stats() Stats {
	l.statsMu.Lock()
	defer l.statsMu.Unlock()
	s := summarize(&l.periods, &l.durations)
	s.Cycles = l.cycles
	s.Errors = l.errs
	return s
}

// Running returns whether the loop is ticking.
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// Stop stops the loop and waits for the cycle in progress.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.running {
		return
	}
	l.logger.Debug("closing loop")
	l.cancel()
	l.activeBackgroundWorkers.Wait()
	l.running = false
}
