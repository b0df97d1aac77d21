package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ccollicutt/logstat/internal/logging"
	"github.com/ccollicutt/logstat/pkg/aggregator"
	"github.com/ccollicutt/logstat/pkg/config"
	"github.com/ccollicutt/logstat/pkg/logstat"
	"github.com/ccollicutt/logstat/pkg/output"
	"github.com/ccollicutt/logstat/pkg/parser"
)

// UsageError marks a problem with the command line itself. The caller prints
// the usage text along with it.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string { return e.Err.Error() }
func (e *UsageError) Unwrap() error { return e.Err }

// IsUsageError reports whether err was caused by bad command-line input.
func IsUsageError(err error) bool {
	var ue *UsageError
	return errors.As(err, &ue)
}

// ScanOptions holds command-line options for a scan.
type ScanOptions struct {
	ConfigPath string
	Verbose    bool

	// Flag values. Only those set explicitly override the profile.
	FilePath      string
	Start         string
	End           string
	Group         bool
	HTTPOnly      bool
	Silence       bool
	NoQueryParams bool
	SplitOn       int
	Limit         int
	Format        string
	Output        string
	BackOffWindow int64
	LogLevel      string
	Location      string
}

// BindScanFlags registers the scan flags on cmd.
func BindScanFlags(cmd *cobra.Command, opts *ScanOptions) {
	f := cmd.Flags()
	f.StringVarP(&opts.FilePath, "path", "p", "", "Log file to scan (required)")
	f.StringVarP(&opts.Start, "begin", "b", "", "Window start, yyyy-MM-ddTHH:mm:ss (required)")
	f.StringVarP(&opts.End, "end", "e", "", "Window end, yyyy-MM-ddTHH:mm:ss (required)")
	f.BoolVarP(&opts.Group, "group", "g", false, "Count requests instead of printing lines")
	f.BoolVar(&opts.HTTPOnly, "http-only", false, "Hide non-request lines while grouping")
	f.BoolVarP(&opts.Silence, "silence", "s", false, "Same as --http-only")
	f.BoolVarP(&opts.NoQueryParams, "no-query-params", "n", false, "Strip query strings from grouping keys")
	f.IntVar(&opts.SplitOn, "split-on", 0, "Group by the Nth path segment (0 disables)")
	f.IntVarP(&opts.Limit, "limit", "l", 0, "Only show counts greater than this")
	f.StringVarP(&opts.ConfigPath, "config", "c", "", "YAML profile with default options")
	f.StringVarP(&opts.Format, "format", "f", config.DefaultFormat, "Log format")
	f.StringVarP(&opts.Output, "output", "o", config.DefaultOutput, "Output format (text|json|table)")
	f.Int64Var(&opts.BackOffWindow, "backoff-window", config.DefaultBackOffWindow, "Duplicate back-off step in bytes")
	f.StringVar(&opts.LogLevel, "log-level", config.DefaultLogLevel, "Diagnostic log level")
	f.StringVar(&opts.Location, "location", "", "Time zone of the log timestamps (default local)")
	f.BoolVarP(&opts.Verbose, "verbose", "v", false, "Show scan statistics after the counts")
}

// ResolveOptions merges defaults, the optional profile, environment
// overrides and explicitly set flags, then validates the result.
func ResolveOptions(ctx context.Context, flags *pflag.FlagSet, opts *ScanOptions) (*config.Options, error) {
	var cfg *config.Options
	if opts.ConfigPath != "" {
		loaded, err := config.Load(ctx, opts.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("loading profile: %w", err)
		}
		cfg = loaded
	} else {
		cfg = config.DefaultOptions()
		cfg.ApplyEnvironmentOverrides()
	}

	changed := flags.Changed
	if changed("path") {
		cfg.FilePath = opts.FilePath
	}
	if changed("begin") {
		cfg.Start = opts.Start
	}
	if changed("end") {
		cfg.End = opts.End
	}
	if changed("group") {
		cfg.Group = opts.Group
	}
	if changed("http-only") {
		cfg.HTTPOnly = opts.HTTPOnly
	}
	if changed("silence") && opts.Silence {
		cfg.HTTPOnly = true
	}
	if changed("no-query-params") {
		cfg.NoQueryParams = opts.NoQueryParams
	}
	if changed("split-on") {
		cfg.SplitOn = opts.SplitOn
	}
	if changed("limit") {
		cfg.Limit = opts.Limit
	}
	if changed("format") {
		cfg.Format = opts.Format
	}
	if changed("output") {
		cfg.Output = opts.Output
	}
	if changed("backoff-window") {
		cfg.BackOffWindow = opts.BackOffWindow
	}
	if changed("log-level") {
		cfg.LogLevel = opts.LogLevel
	}
	if changed("location") {
		cfg.Location = opts.Location
	}

	if err := config.Validate(cfg); err != nil {
		return nil, &UsageError{Err: err}
	}
	return cfg, nil
}

// RunScan resolves the options, scans the file and prints either the
// matching lines or the grouped counts.
func RunScan(cmd *cobra.Command, opts *ScanOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := ResolveOptions(ctx, cmd.Flags(), opts)
	if err != nil {
		return err
	}

	p, err := parser.Lookup(cfg.Format)
	if err != nil {
		return &UsageError{Err: err}
	}

	var formatter output.Formatter
	if cfg.Group {
		formatter, err = output.NewFormatter(cfg.Output, output.FormatOptions{Verbose: opts.Verbose})
		if err != nil {
			return &UsageError{Err: err}
		}
	}

	log := logging.New(cfg.LogLevel, cmd.ErrOrStderr())
	stdout := cmd.OutOrStdout()

	// Structured reports own stdout; pass-through lines go to stderr.
	passthrough := stdout
	if formatter != nil && cfg.Output != "text" {
		passthrough = cmd.ErrOrStderr()
	}

	result, err := logstat.Run(ctx, cfg, p, passthrough, log)
	if err != nil {
		return err
	}

	if formatter == nil {
		return nil
	}
	return writeReport(ctx, formatter, result, cfg, stdout)
}

func writeReport(ctx context.Context, f output.Formatter, result *aggregator.Result, cfg *config.Options, w io.Writer) error {
	report := output.NewReport(result, cfg.Limit)
	report.Metadata.Source = cfg.FilePath
	report.Metadata.Start = cfg.Start
	report.Metadata.End = cfg.End

	if err := f.Format(ctx, report, w); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}
	return nil
}
