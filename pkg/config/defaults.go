package config

import (
	"os"
	"strconv"
)

// Default values for options.
const (
	DefaultFormat        = "couchdb"
	DefaultOutput        = "text"
	DefaultBackOffWindow = 100
	DefaultLogLevel      = "warning"
)

// Environment variable names.
const (
	EnvFormat        = "LOGSTAT_FORMAT"
	EnvLogLevel      = "LOGSTAT_LOG_LEVEL"
	EnvBackOffWindow = "LOGSTAT_BACKOFF_WINDOW"
)

// DefaultOptions returns options with sensible defaults.
func DefaultOptions() *Options {
	return &Options{
		Format:        DefaultFormat,
		Output:        DefaultOutput,
		BackOffWindow: DefaultBackOffWindow,
		LogLevel:      DefaultLogLevel,
	}
}

// ApplyEnvironmentOverrides applies environment variable overrides.
// Malformed numeric values are ignored.
func (o *Options) ApplyEnvironmentOverrides() {
	if format := os.Getenv(EnvFormat); format != "" {
		o.Format = format
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		o.LogLevel = level
	}
	if window := os.Getenv(EnvBackOffWindow); window != "" {
		if n, err := strconv.ParseInt(window, 10, 64); err == nil && n > 0 {
			o.BackOffWindow = n
		}
	}
}
