package config

const (
	// Command line option keys
	ConfigFileKey = "config-file"
	VersionKey    = "version"

	// Environment variables are the upper case keys, prefixed, with hyphens
	// replaced by underscores: log-level is read from BGVCTX_LOG_LEVEL.
	EnvPrefix = "BGVCTX"

	// Top-level configuration keys
	LogLevelKey       = "log-level"
	ParamsKey         = "params"
	WorkersKey        = "workers"
	OutputKey         = "output"
	MaxModulusBitsKey = "max-modulus-bits"
	MaxDeriveMKey     = "max-derive-m"
	FailFastKey       = "fail-fast"
)

const (
	defaultLogLevel = "info"
	defaultWorkers  = 4
	defaultOutput   = OutputText
)
