package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/a8m/envsubst"
	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"go.viam.com/kestrel/motors"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("frame.class", motors.FrameClassKestrel.String())
	v.SetDefault("frame.type", motors.FrameTypePlus.String())
	v.SetDefault("update_rate_hz", motors.DefaultUpdateRateHz)
	v.SetDefault("vane_bias", motors.DefaultVaneBias)
	v.SetDefault("vane_max_deflection_deg", 0)
	v.SetDefault("min_attitude_authority", motors.DefaultMinAttitudeAuthority)
	v.SetDefault("require_thrust_compensation", false)
	v.SetDefault("watch", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
}

// Load reads, expands and validates the file at path. The format follows the extension, YAML
// when it is not .json.
func Load(path string) (*Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config file %s", path)
	}
	return Parse(buf, formatOf(path))
}

// Parse reads, expands and validates a configuration in format "json" or "yaml".
func Parse(data []byte, format string) (*Config, error) {
	expanded, err := envsubst.Bytes(data)
	if err != nil {
		return nil, errors.Wrap(err, "expanding environment variables")
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigType(format)
	if err := v.ReadConfig(bytes.NewReader(expanded)); err != nil {
		return nil, errors.Wrap(err, "parsing config")
	}

	var conf Config
	if err := v.Unmarshal(&conf, decoderConfig); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	if err := conf.Validate("kestrel"); err != nil {
		return nil, err
	}
	return &conf, nil
}

func decoderConfig(dc *mapstructure.DecoderConfig) {
	dc.TagName = "json"
	dc.ErrorUnused = true
	dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

func formatOf(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return "json"
	}
	return "yaml"
}
