// Package cli contains the kestrel bench and diagnostics command line tool. It runs the mixer
// against simulated PWM pins so a frame configuration can be checked without hardware.
package cli

import (
	"io"
	"time"

	"github.com/urfave/cli/v2"
)

const (
	flagConfig   = "config"
	flagDebug    = "debug"
	flagRoll     = "roll"
	flagPitch    = "pitch"
	flagYaw      = "yaw"
	flagThrottle = "throttle"
	flagSeq      = "seq"
	flagPWM      = "pwm"
	flagDuration = "duration"
)

func demandFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Float64Flag{Name: flagRoll, Usage: "roll demand in [-1, 1]"},
		&cli.Float64Flag{Name: flagPitch, Usage: "pitch demand in [-1, 1]"},
		&cli.Float64Flag{Name: flagYaw, Usage: "yaw demand in [-1, 1]"},
		&cli.Float64Flag{Name: flagThrottle, Usage: "throttle demand in [0, 1]"},
	}
}

// NewApp returns the kestrel command line app writing to out.
func NewApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:            "kestrel",
		Usage:           "check and exercise a Kestrel vane-tricopter output configuration",
		HideHelpCommand: true,
		Writer:          out,
		ErrWriter:       out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "load configuration from `FILE`",
				EnvVars: []string{"KESTREL_CONFIG"},
			},
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "check",
				Usage:  "initialize the frame and run the arming checks",
				Action: CheckAction,
			},
			{
				Name:   "factors",
				Usage:  "print the mixing factors of every channel",
				Action: FactorsAction,
			},
			{
				Name:   "mix",
				Usage:  "mix one demand and print the actuator outputs without writing them",
				Flags:  demandFlags(),
				Action: MixAction,
			},
			{
				Name:  "test",
				Usage: "drive one actuator of the test order at a raw pulse width",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: flagSeq, Usage: "test sequence number, 1-based", Required: true},
					&cli.IntFlag{Name: flagPWM, Usage: "pulse width in microseconds", Value: 1100},
					&cli.DurationFlag{Name: flagDuration, Usage: "how long to hold the output", Value: 2 * time.Second},
				},
				Action: TestAction,
			},
			{
				Name:   "order",
				Usage:  "print the motor test order",
				Action: TestOrderAction,
			},
			{
				Name:  "run",
				Usage: "arm and run the output loop at the configured update rate with a fixed demand",
				Flags: append(demandFlags(),
					&cli.DurationFlag{Name: flagDuration, Usage: "how long to run", Value: time.Second},
				),
				Action: RunAction,
			},
		},
	}
}
