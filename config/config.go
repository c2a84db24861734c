// Package config implements the configuration of the bgvctx command:
// command line flags, environment variables and configuration file,
// as well as the decoding of BGV parameter files.
package config

import (
	"errors"
	"fmt"

	"github.com/Pro7ech/hebind/native"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	OutputText = "text"
	OutputJSON = "json"
)

// Config is the configuration of the bgvctx command.
type Config struct {
	LogLevel       string `mapstructure:"log-level"`
	Params         string `mapstructure:"params"`
	Workers        int    `mapstructure:"workers"`
	Output         string `mapstructure:"output"`
	MaxModulusBits uint64 `mapstructure:"max-modulus-bits"`
	MaxDeriveM     uint64 `mapstructure:"max-derive-m"`
	FailFast       bool   `mapstructure:"fail-fast"`
}

// Validate checks the consistency of the configuration.
func (c *Config) Validate() error {

	var errs []error

	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("invalid %s: %w", LogLevelKey, err))
	}

	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("invalid %s: %d < 1", WorkersKey, c.Workers))
	}

	switch c.Output {
	case OutputText, OutputJSON:
	default:
		errs = append(errs, fmt.Errorf("invalid %s: %q is neither %q nor %q", OutputKey, c.Output, OutputText, OutputJSON))
	}

	if c.MaxModulusBits == 0 {
		errs = append(errs, fmt.Errorf("invalid %s: cannot be zero", MaxModulusBitsKey))
	}

	if c.MaxDeriveM < 2 {
		errs = append(errs, fmt.Errorf("invalid %s: %d < 2", MaxDeriveMKey, c.MaxDeriveM))
	}

	return errors.Join(errs...)
}

// Logger returns a new logger writing to stderr at the configured level.
func (c *Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", LogLevelKey, err)
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}

	return zc.Build()
}

// EngineOptions returns the options of the native engine.
func (c *Config) EngineOptions(logger *zap.Logger) []native.Option {
	return []native.Option{
		native.WithLogger(logger),
		native.WithMaxModulusBits(c.MaxModulusBits),
		native.WithMaxDeriveM(c.MaxDeriveM),
	}
}
