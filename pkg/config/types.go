// Package config provides option loading and validation for logstat.
package config

import "time"

// Options is the complete set of inputs of a logstat run. It can be loaded
// from a YAML profile and is then overridden by command-line flags.
type Options struct {
	// FilePath is the log file to scan (required).
	FilePath string `yaml:"path"`

	// Start and End bound the time window, in TimeLayout (required).
	Start string `yaml:"begin"`
	End   string `yaml:"end"`

	// Group aggregates requests instead of printing every line.
	Group bool `yaml:"group"`

	// HTTPOnly hides generic and stack trace lines while grouping.
	HTTPOnly bool `yaml:"http_only"`

	// NoQueryParams strips the query string before building grouping keys.
	NoQueryParams bool `yaml:"no_query_params"`

	// SplitOn groups by the Nth path segment. 0 disables it.
	SplitOn int `yaml:"split_on,omitempty"`

	// Limit hides grouped entries whose count does not exceed it. 0 shows all.
	Limit int `yaml:"limit,omitempty"`

	// Format selects the line parser.
	Format string `yaml:"format,omitempty"`

	// Output selects the report format (text, json, table).
	Output string `yaml:"output,omitempty"`

	// BackOffWindow is the duplicate back-off step in bytes.
	BackOffWindow int64 `yaml:"backoff_window,omitempty"`

	// LogLevel is the diagnostic log level (logrus level names).
	LogLevel string `yaml:"log_level,omitempty"`

	// Location is the IANA time zone used to read timestamps.
	// Empty means the local time zone.
	Location string `yaml:"location,omitempty"`

	// Populated during validation.
	startTime int64
	endTime   int64
	location  *time.Location
}

// StartTime returns the parsed start bound in seconds since the epoch.
func (o *Options) StartTime() int64 {
	return o.startTime
}

// EndTime returns the parsed end bound in seconds since the epoch.
func (o *Options) EndTime() int64 {
	return o.endTime
}

// TimeLocation returns the resolved time zone.
func (o *Options) TimeLocation() *time.Location {
	if o.location == nil {
		return time.Local
	}
	return o.location
}
