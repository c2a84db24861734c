package config

import (
	"fmt"
	"strings"

	"github.com/Pro7ech/hebind/native"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// AddFlags registers the configuration flags on the given flag set.
func AddFlags(fs *pflag.FlagSet) {
	fs.String(ConfigFileKey, "", "path to a JSON or YAML configuration file")
	fs.String(LogLevelKey, defaultLogLevel, "log level (debug, info, warn, error)")
	fs.String(ParamsKey, "", "path to a JSON or YAML BGV parameter file")
	fs.Int(WorkersKey, defaultWorkers, "number of parameter files validated concurrently")
	fs.String(OutputKey, defaultOutput, "output format (text, json)")
	fs.Uint64(MaxModulusBitsKey, native.DefaultMaxModulusBits, "largest accepted modulus chain bit budget")
	fs.Uint64(MaxDeriveMKey, native.DefaultMaxDeriveM, "largest cyclotomic order for which generators are derived")
	fs.Bool(FailFastKey, false, "stop validating parameter files after the first invalid one")
}

// NewConfig builds and validates the configuration.
func NewConfig(v *viper.Viper) (Config, error) {
	cfg, err := BuildConfig(v)
	if err != nil {
		return cfg, err
	}
	if err = cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("failed to validate configuration: %w", err)
	}
	return cfg, nil
}

// BuildViper builds the viper instance. The configuration file is optional;
// all keys may be provided via flag, environment variable or configuration file.
func BuildViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}

	if filename := v.GetString(ConfigFileKey); filename != "" {
		v.SetConfigFile(filename)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read configuration file: %w", err)
		}
	}

	return v, nil
}

func SetDefaultConfigValues(v *viper.Viper) {
	v.SetDefault(LogLevelKey, defaultLogLevel)
	v.SetDefault(WorkersKey, defaultWorkers)
	v.SetDefault(OutputKey, defaultOutput)
	v.SetDefault(MaxModulusBitsKey, native.DefaultMaxModulusBits)
	v.SetDefault(MaxDeriveMKey, native.DefaultMaxDeriveM)
	v.SetDefault(FailFastKey, false)
}

// BuildConfig constructs the configuration using Viper.
// The following precedence order is used. Each item takes precedence over the item below it:
//  1. Flags
//  2. Environment variables
//  3. Config file
//  4. Defaults
func BuildConfig(v *viper.Viper) (Config, error) {
	SetDefaultConfigValues(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal viper config: %w", err)
	}

	return cfg, nil
}
