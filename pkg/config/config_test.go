package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validOptions() *Options {
	opts := DefaultOptions()
	opts.FilePath = "/var/log/couchdb/couch.log"
	opts.Start = "2019-03-21T10:00:00"
	opts.End = "2019-03-21T11:00:00"
	opts.Location = "UTC"
	return opts
}

func TestLoad_ValidProfile(t *testing.T) {
	content := `
path: /var/log/couchdb/couch.log
begin: "2019-03-21T10:00:00"
end: "2019-03-21T11:00:00"
group: true
http_only: true
no_query_params: true
split_on: 2
limit: 5
output: table
backoff_window: 512
location: UTC
`
	path := writeTempFile(t, "profile.yaml", content)

	opts, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if opts.FilePath != "/var/log/couchdb/couch.log" {
		t.Errorf("FilePath = %q", opts.FilePath)
	}
	if !opts.Group || !opts.HTTPOnly || !opts.NoQueryParams {
		t.Errorf("boolean options not loaded: %+v", opts)
	}
	if opts.SplitOn != 2 || opts.Limit != 5 {
		t.Errorf("SplitOn = %d, Limit = %d, want 2 and 5", opts.SplitOn, opts.Limit)
	}
	if opts.Output != "table" {
		t.Errorf("Output = %q, want table", opts.Output)
	}
	if opts.BackOffWindow != 512 {
		t.Errorf("BackOffWindow = %d, want 512", opts.BackOffWindow)
	}
	if opts.Format != DefaultFormat {
		t.Errorf("Format = %q, want default %q", opts.Format, DefaultFormat)
	}
	if err := Validate(opts); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(context.Background(), "/nonexistent/profile.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeTempFile(t, "invalid.yaml", `invalid: yaml: content: [`)
	_, err := Load(context.Background(), path)
	if err == nil {
		t.Error("Load() expected error for invalid YAML")
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv(EnvFormat, "custom")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvBackOffWindow, "4096")

	path := writeTempFile(t, "profile.yaml", "format: couchdb\nlog_level: info\nbackoff_window: 10\n")
	opts, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if opts.Format != "custom" {
		t.Errorf("Format = %q, want custom", opts.Format)
	}
	if opts.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", opts.LogLevel)
	}
	if opts.BackOffWindow != 4096 {
		t.Errorf("BackOffWindow = %d, want 4096", opts.BackOffWindow)
	}
}

func TestApplyEnvironmentOverrides_BadWindow(t *testing.T) {
	t.Setenv(EnvBackOffWindow, "lots")

	opts := DefaultOptions()
	opts.ApplyEnvironmentOverrides()
	if opts.BackOffWindow != DefaultBackOffWindow {
		t.Errorf("BackOffWindow = %d, want default", opts.BackOffWindow)
	}
}

func TestValidate_Valid(t *testing.T) {
	opts := validOptions()
	if err := Validate(opts); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	wantStart := time.Date(2019, 3, 21, 10, 0, 0, 0, time.UTC).Unix()
	if opts.StartTime() != wantStart {
		t.Errorf("StartTime() = %d, want %d", opts.StartTime(), wantStart)
	}
	if opts.EndTime() != wantStart+3600 {
		t.Errorf("EndTime() = %d, want %d", opts.EndTime(), wantStart+3600)
	}
	if opts.TimeLocation() != time.UTC {
		t.Errorf("TimeLocation() = %v, want UTC", opts.TimeLocation())
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Options)
	}{
		{"missing path", func(o *Options) { o.FilePath = "" }},
		{"missing begin", func(o *Options) { o.Start = "" }},
		{"missing end", func(o *Options) { o.End = "" }},
		{"bad begin", func(o *Options) { o.Start = "21/03/2019 10:00" }},
		{"bad end", func(o *Options) { o.End = "2019-03-21" }},
		{"end before begin", func(o *Options) { o.End = "2019-03-21T09:59:59" }},
		{"negative split", func(o *Options) { o.SplitOn = -1 }},
		{"negative limit", func(o *Options) { o.Limit = -3 }},
		{"unknown output", func(o *Options) { o.Output = "xml" }},
		{"unknown location", func(o *Options) { o.Location = "Mars/Olympus_Mons" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := validOptions()
			tt.modify(opts)
			if err := Validate(opts); err == nil {
				t.Error("Validate() expected error")
			}
		})
	}
}

func TestValidate_Defaults(t *testing.T) {
	opts := validOptions()
	opts.Format = ""
	opts.Output = ""
	opts.BackOffWindow = 0

	if err := Validate(opts); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if opts.Format != DefaultFormat || opts.Output != DefaultOutput || opts.BackOffWindow != DefaultBackOffWindow {
		t.Errorf("defaults not applied: %+v", opts)
	}
}

func TestValidate_SameBounds(t *testing.T) {
	opts := validOptions()
	opts.End = opts.Start
	if err := Validate(opts); err != nil {
		t.Errorf("Validate() error = %v, a one-second window is valid", err)
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if opts == nil {
		t.Fatal("DefaultOptions() returned nil")
	}
	if opts.Format == "" || opts.Output == "" || opts.LogLevel == "" {
		t.Errorf("DefaultOptions() has empty defaults: %+v", opts)
	}
	if opts.TimeLocation() != time.Local {
		t.Error("unvalidated options should report the local time zone")
	}
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}
	return path
}
