package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ccollicutt/logstat/pkg/record"
)

// Load reads a YAML profile on top of the defaults and applies environment
// overrides. The result is not validated: required fields are usually
// completed from the command line first.
func Load(_ context.Context, path string) (*Options, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided profile path is expected
	if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}

	opts := DefaultOptions()
	if err := yaml.Unmarshal(data, opts); err != nil {
		return nil, fmt.Errorf("parsing profile: %w", err)
	}

	opts.ApplyEnvironmentOverrides()
	return opts, nil
}

// Validate checks options for errors and resolves the time bounds.
func Validate(o *Options) error {
	if o.FilePath == "" {
		return errors.New("path: a log file is required")
	}
	if o.Start == "" {
		return errors.New("begin: a start time is required")
	}
	if o.End == "" {
		return errors.New("end: an end time is required")
	}

	loc := time.Local
	if o.Location != "" {
		l, err := time.LoadLocation(o.Location)
		if err != nil {
			return fmt.Errorf("location: %w", err)
		}
		loc = l
	}
	o.location = loc

	start, err := parseBound(o.Start, loc)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	end, err := parseBound(o.End, loc)
	if err != nil {
		return fmt.Errorf("end: %w", err)
	}
	if end < start {
		return fmt.Errorf("end: %s is before begin %s", o.End, o.Start)
	}
	o.startTime = start
	o.endTime = end

	if o.SplitOn < 0 {
		return fmt.Errorf("split_on: must be >= 0, got %d", o.SplitOn)
	}
	if o.Limit < 0 {
		return fmt.Errorf("limit: must be >= 0, got %d", o.Limit)
	}

	if o.Format == "" {
		o.Format = DefaultFormat
	}
	if o.Output == "" {
		o.Output = DefaultOutput
	}
	switch o.Output {
	case "text", "json", "table":
	default:
		return fmt.Errorf("output: invalid format %q (must be text, json or table)", o.Output)
	}
	if o.BackOffWindow <= 0 {
		o.BackOffWindow = DefaultBackOffWindow
	}

	return nil
}

// parseBound parses a window bound. The whole string must be in TimeLayout.
func parseBound(s string, loc *time.Location) (int64, error) {
	t, err := time.ParseInLocation(record.TimeLayout, s, loc)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q (want %s)", s, record.TimeLayout)
	}
	return t.Unix(), nil
}
