package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"go.viam.com/kestrel/config"
	"go.viam.com/kestrel/control"
	"go.viam.com/kestrel/motors"
	"go.viam.com/kestrel/motortest"
)

// printf prints a message with no decoration.
func printf(w io.Writer, format string, a ...interface{}) {
	fmt.Fprintf(w, format+"\n", a...) //nolint:errcheck
}

// warningf prints a message prefixed with a bold yellow "Warning: ".
func warningf(w io.Writer, format string, a ...interface{}) {
	color.New(color.Bold, color.FgYellow).Fprint(w, "Warning: ") //nolint:errcheck
	fmt.Fprintf(w, format+"\n", a...)                             //nolint:errcheck
}

func demandFromFlags(c *cli.Context) motors.ControlDemand {
	return motors.ControlDemand{
		Roll:     c.Float64(flagRoll),
		Pitch:    c.Float64(flagPitch),
		Yaw:      c.Float64(flagYaw),
		Throttle: c.Float64(flagThrottle),
	}
}

// withBench builds a bench for the command and tears it down afterwards.
func withBench(c *cli.Context, f func(b *bench) error) (err error) {
	b, err := newBench(c)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, b.Close(c.Context))
	}()
	return f(b)
}

// CheckAction initializes the frame and reports the arming checks.
func CheckAction(c *cli.Context) error {
	return withBench(c, func(b *bench) error {
		k := b.kestrel
		printf(c.App.Writer, "frame %s %s, mask 0x%02X, %d Hz", k.FrameString(), b.conf.Frame.Type,
			k.MotorMask(), k.UpdateRate())
		tbl, err := b.actuatorTable(c.Context)
		if err != nil {
			return err
		}
		printf(c.App.Writer, "%s", tbl)

		if err := k.ArmingCheck(); err != nil {
			return errors.Wrap(err, "arming checks failed")
		}
		printf(c.App.Writer, "arming checks passed")
		return nil
	})
}

// FactorsAction prints the mixing factors per channel.
func FactorsAction(c *cli.Context) error {
	return withBench(c, func(b *bench) error {
		k := b.kestrel
		t := table.NewWriter()
		t.AppendHeader(table.Row{"Channel", "Roll", "Pitch", "Yaw", "Throttle"})
		for i := 0; i < motors.NumChannels; i++ {
			t.AppendRow(table.Row{
				motors.Channel(i),
				k.RollFactor(i), k.PitchFactorJSON(i), k.YawFactor(i), k.ThrottleFactor(i),
			})
		}
		printf(c.App.Writer, "%s", t.Render())
		return nil
	})
}

// MixAction mixes the demand from the flags without writing it.
func MixAction(c *cli.Context) error {
	return withBench(c, func(b *bench) error {
		res, err := b.kestrel.Mix(demandFromFlags(c))
		if err != nil {
			return err
		}
		t := table.NewWriter()
		t.AppendHeader(table.Row{"Position", "Raw", "Thrust", "Vane (deg)"})
		for _, pos := range motors.Positions() {
			t.AppendRow(table.Row{
				pos,
				fmt.Sprintf("%.4f", res.Raw[pos]),
				fmt.Sprintf("%.4f", res.Thrust[pos]),
				fmt.Sprintf("%.2f", res.Vanes[pos]),
			})
		}
		d := res.Demand
		printf(c.App.Writer, "demand roll %.3f pitch %.3f yaw %.3f throttle %.3f", d.Roll, d.Pitch, d.Yaw, d.Throttle)
		printf(c.App.Writer, "%s", t.Render())
		if res.Limits.Any() {
			warningf(c.App.Writer, "limits hit: %s", res.Limits)
		}
		return nil
	})
}

// TestOrderAction prints which actuator each test sequence number drives.
func TestOrderAction(c *cli.Context) error {
	return withBench(c, func(b *bench) error {
		t := table.NewWriter()
		t.AppendHeader(table.Row{"Seq", "Channel", "Pin"})
		for seq := 1; seq <= b.kestrel.NumTestSequences(); seq++ {
			ch, _ := b.kestrel.MotorTestOrder(seq)
			t.AppendRow(table.Row{seq, ch, b.pins[ch]})
		}
		printf(c.App.Writer, "%s", t.Render())
		return nil
	})
}

// TestAction holds one actuator of the test order at a raw pulse width for a while.
func TestAction(c *cli.Context) error {
	return withBench(c, func(b *bench) error {
		runner := motortest.NewRunner(b.kestrel, b.logger.Sublogger("motortest"), nil)
		defer runner.Close()

		req := motortest.Request{
			Seq:      c.Int(flagSeq),
			PWM:      c.Int(flagPWM),
			Duration: c.Duration(flagDuration),
		}
		ch, ok := b.kestrel.MotorTestOrder(req.Seq)
		if !ok {
			return motors.NewInvalidTestSequenceError(req.Seq)
		}
		printf(c.App.Writer, "testing %s on pin %s at %d us for %s", ch, b.pins[ch], req.PWM, req.Duration)

		ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
		defer stop()
		if err := runner.Run(ctx, req); err != nil && !errors.Is(err, ctx.Err()) {
			return err
		}
		tbl, err := b.actuatorTable(c.Context)
		if err != nil {
			return err
		}
		printf(c.App.Writer, "%s", tbl)
		return nil
	})
}

// RunAction arms the frame and runs the output loop with the demand from the flags.
func RunAction(c *cli.Context) error {
	return withBench(c, func(b *bench) error {
		k := b.kestrel
		if err := k.Arm(); err != nil {
			return err
		}
		loop, err := control.NewLoop(b.logger.Sublogger("loop"), k,
			control.NewConstant(demandFromFlags(c)), k.UpdateRate(), nil)
		if err != nil {
			return err
		}

		if path := c.String(flagConfig); path != "" && b.conf.Watch {
			w, err := config.Watch(path, b.logger.Sublogger("config"), config.Reapply(k, b.logger))
			if err != nil {
				return err
			}
			defer func() {
				if err := w.Close(); err != nil {
					b.logger.Warnw("closing config watcher", "error", err)
				}
			}()
		}

		if err := loop.Start(); err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
		defer stop()
		select {
		case <-ctx.Done():
		case <-time.After(c.Duration(flagDuration)):
		}
		loop.Stop()

		s := loop.Stats()
		printf(c.App.Writer, "%d cycles, %d failed, period %s (jitter %s, max %s), p99 cycle %s",
			s.Cycles, s.Errors, s.MeanPeriod, s.Jitter, s.MaxPeriod, s.P99Duration)
		tbl, err := b.actuatorTable(c.Context)
		if err != nil {
			return err
		}
		printf(c.App.Writer, "%s", tbl)
		if limits := k.LimitFlags(); limits.Any() {
			warningf(c.App.Writer, "limits hit: %s", limits)
		}
		return nil
	})
}
