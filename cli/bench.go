package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"go.viam.com/kestrel/components/board"
	"go.viam.com/kestrel/components/board/fake"
	"go.viam.com/kestrel/components/motor/esc"
	"go.viam.com/kestrel/components/servo/gpio"
	"go.viam.com/kestrel/config"
	"go.viam.com/kestrel/logging"
	"go.viam.com/kestrel/motors"
	"go.viam.com/kestrel/output"
	"go.viam.com/kestrel/utils"
)

// bench is a Kestrel wired to ESCs and servos on simulated pins.
type bench struct {
	conf      *config.Config
	logger    logging.Logger
	logCloser io.Closer
	board     *fake.Board
	pins      map[motors.Channel]string
	driver    *output.PWMDriver
	kestrel   *motors.Kestrel
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Parse([]byte("{}"), "json")
	}
	return config.Load(path)
}

// defaultOutputs gives every channel a pin named after it when the file assigns none.
func defaultOutputs(conf *config.Config) {
	if len(conf.Outputs.Motors) > 0 || len(conf.Outputs.Vanes) > 0 {
		return
	}
	conf.Outputs.Motors = map[string]esc.Config{}
	conf.Outputs.Vanes = map[string]gpio.Config{}
	for _, pos := range motors.Positions() {
		conf.Outputs.Motors[pos.String()] = esc.Config{Pin: pos.MotorChannel().String()}
		conf.Outputs.Vanes[pos.String()] = gpio.Config{Pin: pos.VaneChannel().String()}
	}
}

func newBench(c *cli.Context) (*bench, error) {
	conf, err := loadConfig(c.String(flagConfig))
	if err != nil {
		return nil, err
	}
	if c.Bool(flagDebug) {
		conf.Log.Level = "debug"
	}
	defaultOutputs(conf)

	logger, logCloser, err := conf.Log.NewLogger("kestrel")
	if err != nil {
		return nil, err
	}
	guard := utils.NewGuard(func() {
		if err := logCloser.Close(); err != nil {
			fmt.Fprintln(c.App.ErrWriter, err)
		}
	})
	defer guard.OnFail()

	b := fake.NewBoard(logger.Sublogger("board"), conf.Outputs.Pins...)
	oc := conf.OutputConfig()
	driver, err := output.New(c.Context, b, oc, logger.Sublogger("output"))
	if err != nil {
		return nil, err
	}
	m, err := motors.New(conf.Frame.Class, conf.Frame.Type, logger.Sublogger("motors"), driver, conf.Options()...)
	if err != nil {
		return nil, multierr.Combine(err, driver.Close(c.Context))
	}
	k, err := utils.AssertType[*motors.Kestrel](m)
	if err != nil {
		return nil, multierr.Combine(err, driver.Close(c.Context))
	}

	pins := map[motors.Channel]string{}
	for ch, mc := range oc.Motors {
		pins[ch] = mc.Pin
	}
	for ch, sc := range oc.Vanes {
		pins[ch] = sc.Pin
	}
	guard.Success()
	return &bench{
		conf:      conf,
		logger:    logger,
		logCloser: logCloser,
		board:     b,
		pins:      pins,
		driver:    driver,
		kestrel:   k,
	}, nil
}

func (b *bench) Close(ctx context.Context) error {
	return multierr.Combine(b.kestrel.Disarm(), b.driver.Close(ctx), b.logCloser.Close())
}

// pulseWidth reads back the pulse on the pin of ch.
func (b *bench) pulseWidth(ctx context.Context, ch motors.Channel) (float64, error) {
	name, ok := b.pins[ch]
	if !ok {
		return 0, errors.Errorf("no pin for channel %s", ch)
	}
	pin := b.board.Pin(name)
	freq, err := pin.PWMFreq(ctx, nil)
	if err != nil {
		return 0, err
	}
	duty, err := pin.PWM(ctx, nil)
	if err != nil {
		return 0, err
	}
	return board.DutyCycleToPulseWidth(duty, freq), nil
}

func (b *bench) actuatorTable(ctx context.Context) (string, error) {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Channel", "Kind", "Position", "Value", "Pin", "Pulse (us)"})
	for _, a := range b.kestrel.Actuators() {
		width, err := b.pulseWidth(ctx, a.Channel)
		if err != nil {
			return "", err
		}
		value := fmt.Sprintf("%.3f", a.Value)
		if a.Kind == motors.KindVane {
			value = fmt.Sprintf("%.1f deg", a.Value)
		}
		if a.TestPWM > 0 {
			value = fmt.Sprintf("%d us (test)", a.TestPWM)
		}
		t.AppendRow(table.Row{a.Channel, a.Kind, a.Position, value, b.pins[a.Channel], fmt.Sprintf("%.0f", width)})
	}
	return t.Render(), nil
}
