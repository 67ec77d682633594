// Package config reads the Kestrel configuration file.
//
// The file is JSON or YAML. ${VAR} references are expanded from the environment before parsing,
// so pins and limits can differ per airframe without separate files:
//
//	frame:
//	  class: kestrel
//	  type: plus
//	update_rate_hz: 490
//	vanes:
//	  fore: {min_deg: 30, max_deg: 190, offset_deg: -5}
//	outputs:
//	  motors:
//	    fore: {pin: "${KESTREL_FORE_ESC_PIN}"}
package config

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"

	"go.viam.com/kestrel/components/motor/esc"
	"go.viam.com/kestrel/components/servo/gpio"
	"go.viam.com/kestrel/logging"
	"go.viam.com/kestrel/motors"
	"go.viam.com/kestrel/output"
)

// Config is the whole configuration file.
type Config struct {
	Frame FrameConfig `json:"frame"`

	UpdateRateHz              int     `json:"update_rate_hz"`
	VaneBias                  float64 `json:"vane_bias"`
	VaneMaxDeflectionDeg      float64 `json:"vane_max_deflection_deg"`
	MinAttitudeAuthority      float64 `json:"min_attitude_authority"`
	RequireThrustCompensation bool    `json:"require_thrust_compensation"`

	// Vanes is keyed by arm position: right, left or fore.
	Vanes   map[string]VaneConfig `json:"vanes"`
	Outputs OutputsConfig         `json:"outputs"`
	Log     LogConfig             `json:"log"`

	// Watch reapplies the file when it changes while the frame is disarmed.
	Watch bool `json:"watch"`
}

// FrameConfig selects the frame.
type FrameConfig struct {
	Class motors.FrameClass `json:"class"`
	Type  motors.FrameType  `json:"type"`
}

// VaneConfig describes the vane on one arm.
type VaneConfig struct {
	Present *bool `json:"present,omitempty"`
	// MinDeg and MaxDeg default to the full vane travel when omitted.
	MinDeg    *float64 `json:"min_deg,omitempty"`
	MaxDeg    *float64 `json:"max_deg,omitempty"`
	OffsetDeg float64  `json:"offset_deg"`
	Reversed  bool     `json:"reversed"`
}

// Limits returns the vane travel in degrees.
func (v VaneConfig) Limits() (float64, float64) {
	minDeg, maxDeg := motors.VaneRangeMinDeg, motors.VaneRangeMaxDeg
	if v.MinDeg != nil {
		minDeg = *v.MinDeg
	}
	if v.MaxDeg != nil {
		maxDeg = *v.MaxDeg
	}
	return minDeg, maxDeg
}

// OutputsConfig assigns board pins to each arm's ESC and vane servo.
type OutputsConfig struct {
	Pins   []string               `json:"pins"`
	Motors map[string]esc.Config  `json:"motors"`
	Vanes  map[string]gpio.Config `json:"vanes"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level      string `json:"level"`
	File       string `json:"file"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
}

// Validate returns every problem in the configuration at once.
func (conf *Config) Validate(path string) error {
	var errs error
	if conf.Frame.Class != motors.FrameClassKestrel {
		errs = multierr.Append(errs, goutils.NewConfigValidationError(path+".frame",
			errors.Errorf("class %q has no mixing table", conf.Frame.Class)))
	}
	if conf.UpdateRateHz < motors.MinUpdateRateHz || conf.UpdateRateHz > motors.MaxUpdateRateHz {
		errs = multierr.Append(errs, goutils.NewConfigValidationError(path,
			errors.Errorf("update_rate_hz must be within %d-%d, got %d",
				motors.MinUpdateRateHz, motors.MaxUpdateRateHz, conf.UpdateRateHz)))
	}
	for name, v := range conf.Vanes {
		vpath := path + ".vanes." + name
		if _, err := motors.ParsePosition(name); err != nil {
			errs = multierr.Append(errs, goutils.NewConfigValidationError(vpath, err))
			continue
		}
		minDeg, maxDeg := v.Limits()
		if minDeg < motors.VaneRangeMinDeg || maxDeg > motors.VaneRangeMaxDeg || minDeg >= maxDeg {
			errs = multierr.Append(errs, goutils.NewConfigValidationError(vpath,
				errors.Errorf("range %.1f-%.1f must be increasing and inside %.0f-%.0f degrees",
					minDeg, maxDeg, motors.VaneRangeMinDeg, motors.VaneRangeMaxDeg)))
		}
	}
	for name, m := range conf.Outputs.Motors {
		mpath := path + ".outputs.motors." + name
		if _, err := motors.ParsePosition(name); err != nil {
			errs = multierr.Append(errs, goutils.NewConfigValidationError(mpath, err))
			continue
		}
		errs = multierr.Append(errs, m.Validate(mpath))
	}
	for name, s := range conf.Outputs.Vanes {
		spath := path + ".outputs.vanes." + name
		if _, err := motors.ParsePosition(name); err != nil {
			errs = multierr.Append(errs, goutils.NewConfigValidationError(spath, err))
			continue
		}
		errs = multierr.Append(errs, s.Validate(spath))
	}
	if _, err := logging.LevelFromString(conf.Log.Level); err != nil {
		errs = multierr.Append(errs, goutils.NewConfigValidationError(path+".log", err))
	}
	return errs
}

// Options converts the file into Kestrel options.
func (conf *Config) Options() []motors.Option {
	opts := []motors.Option{
		motors.WithUpdateRate(conf.UpdateRateHz),
		motors.WithVaneBias(conf.VaneBias),
		motors.WithVaneMaxDeflection(conf.VaneMaxDeflectionDeg),
		motors.WithMinAttitudeAuthority(conf.MinAttitudeAuthority),
	}
	if conf.RequireThrustCompensation {
		opts = append(opts, motors.WithRequiredThrustCompensation())
	}
	for _, pos := range motors.Positions() {
		v, ok := conf.Vanes[pos.String()]
		if !ok {
			continue
		}
		minDeg, maxDeg := v.Limits()
		opts = append(opts,
			motors.WithVaneLimits(pos, minDeg, maxDeg),
			motors.WithVaneOffset(pos, v.OffsetDeg),
			motors.WithVaneReversed(pos, v.Reversed))
		if v.Present != nil {
			opts = append(opts, motors.WithVanePresent(pos, *v.Present))
		}
	}
	return opts
}

// OutputConfig maps the per-arm outputs onto logical channels.
func (conf *Config) OutputConfig() output.Config {
	oc := output.Config{
		Motors: map[motors.Channel]esc.Config{},
		Vanes:  map[motors.Channel]gpio.Config{},
	}
	for _, pos := range motors.Positions() {
		if m, ok := conf.Outputs.Motors[pos.String()]; ok {
			oc.Motors[pos.MotorChannel()] = m
		}
		if s, ok := conf.Outputs.Vanes[pos.String()]; ok {
			oc.Vanes[pos.VaneChannel()] = s
		}
	}
	return oc
}

// Apply reconfigures k from conf. It fails without changes unless k is disarmed.
func Apply(k *motors.Kestrel, conf *Config) error {
	return k.Reconfigure(conf.Frame.Class, conf.Frame.Type, conf.Options()...)
}
