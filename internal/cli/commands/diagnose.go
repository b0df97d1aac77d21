package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/logstat/pkg/config"
	"github.com/ccollicutt/logstat/pkg/detector"
	"github.com/ccollicutt/logstat/pkg/locator"
	"github.com/ccollicutt/logstat/pkg/parser"
	"github.com/ccollicutt/logstat/pkg/record"
)

// Diagnostic statuses.
const (
	StatusOK      = "ok"
	StatusWarning = "warning"
	StatusError   = "error"
)

// DiagnoseOptions holds options for the diagnose command
type DiagnoseOptions struct {
	Verbose bool
}

// DiagnosticResult represents the result of a single diagnostic check
type DiagnosticResult struct {
	Check    string
	Status   string // "ok", "warning", "error"
	Message  string
	Details  []string
	Suggests []string
}

// NewDiagnoseCommand creates the diagnose command
func NewDiagnoseCommand() *cobra.Command {
	opts := &DiagnoseOptions{}

	cmd := &cobra.Command{
		Use:   "diagnose <profile>",
		Short: "Diagnose why a profile would not produce output",
		Long: `Diagnose common problems with a profile before scanning.

This command checks:
- Profile syntax and required fields
- Log file existence and accessibility
- Log format matching against actual lines
- Chronological order of the sampled lines
- Whether the time window falls inside the file

Example:
  logstat diagnose couch.yaml
  logstat diagnose -v couch.yaml  # verbose output`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runDiagnose(ctx, cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show detailed diagnostic output")

	return cmd
}

func runDiagnose(ctx context.Context, w io.Writer, profilePath string, opts *DiagnoseOptions) error {
	results := []DiagnosticResult{}

	// 1. Check profile existence
	result := checkConfigExists(profilePath)
	results = append(results, result)
	if result.Status == StatusError {
		printDiagnostics(w, results, opts)
		return nil
	}

	// 2. Parse and validate the profile
	cfg, result := checkConfigParseable(ctx, profilePath)
	results = append(results, result)
	if result.Status == StatusError {
		printDiagnostics(w, results, opts)
		return nil
	}

	// 3. Check the log file
	result = checkLogFile(cfg.FilePath)
	results = append(results, result)
	if result.Status == StatusError {
		printDiagnostics(w, results, opts)
		return nil
	}

	// 4. Check the log format against actual lines
	p, result := checkLogFormat(ctx, cfg)
	results = append(results, result)
	if result.Status == StatusError {
		printDiagnostics(w, results, opts)
		return nil
	}

	// 5. Check the window against the file span
	results = append(results, checkWindow(ctx, cfg, p))

	printDiagnostics(w, results, opts)
	return nil
}

func checkConfigExists(path string) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Profile",
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		result.Status = StatusError
		result.Message = fmt.Sprintf("Profile not found: %s", path)
		result.Suggests = []string{
			"Check the file path is correct",
			"Use 'logstat detect <log-file> --write-config couch.yaml' to generate a starter profile",
		}
		return result
	}
	if err != nil {
		result.Status = StatusError
		result.Message = fmt.Sprintf("Cannot access profile: %v", err)
		result.Suggests = []string{"Check file permissions"}
		return result
	}
	if info.IsDir() {
		result.Status = StatusError
		result.Message = "Path is a directory, not a file"
		return result
	}
	if info.Size() == 0 {
		result.Status = StatusError
		result.Message = "Profile is empty"
		result.Suggests = []string{
			"Use 'logstat detect <log-file> --write-config couch.yaml' to generate a starter profile",
		}
		return result
	}

	result.Status = StatusOK
	result.Message = fmt.Sprintf("Found: %s (%d bytes)", path, info.Size())
	return result
}

func checkConfigParseable(ctx context.Context, path string) (*config.Options, DiagnosticResult) {
	result := DiagnosticResult{
		Check: "Profile Syntax",
	}

	cfg, err := config.Load(ctx, path)
	if err != nil {
		result.Status = StatusError
		result.Message = fmt.Sprintf("Failed to parse profile: %v", err)
		if strings.Contains(err.Error(), "yaml") {
			result.Suggests = []string{
				"Check YAML syntax - ensure proper indentation (use spaces, not tabs)",
			}
		}
		return nil, result
	}

	if err := config.Validate(cfg); err != nil {
		result.Status = StatusError
		result.Message = fmt.Sprintf("Invalid profile: %v", err)
		if strings.Contains(err.Error(), "invalid time") {
			result.Suggests = []string{
				fmt.Sprintf("Times must look like %s", record.TimeLayout),
			}
		}
		return nil, result
	}

	result.Status = StatusOK
	result.Message = "Profile parsed successfully"
	result.Details = []string{
		fmt.Sprintf("Window: %s .. %s (%s)", cfg.Start, cfg.End, cfg.TimeLocation()),
		fmt.Sprintf("Format: %s", cfg.Format),
		fmt.Sprintf("Group: %t", cfg.Group),
	}
	return cfg, result
}

func checkLogFile(path string) DiagnosticResult {
	result := DiagnosticResult{
		Check: fmt.Sprintf("Log File: %s", path),
	}

	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		result.Status = StatusError
		result.Message = "File not found"
		result.Suggests = []string{"Check the path setting in the profile"}
	case err != nil:
		result.Status = StatusError
		result.Message = fmt.Sprintf("Cannot access: %v", err)
	case info.IsDir():
		result.Status = StatusError
		result.Message = "Path is a directory, not a file"
	case info.Size() == 0:
		result.Status = StatusError
		result.Message = "File is empty"
	default:
		// #nosec G304 - path is provided by user via profile
		f, err := os.Open(path)
		if err != nil {
			result.Status = StatusError
			result.Message = fmt.Sprintf("Cannot read: %v", err)
			result.Suggests = []string{"Check file permissions"}
			return result
		}
		_ = f.Close()
		result.Status = StatusOK
		result.Message = fmt.Sprintf("Readable (%d bytes)", info.Size())
	}
	return result
}

func checkLogFormat(ctx context.Context, cfg *config.Options) (parser.LineParser, DiagnosticResult) {
	result := DiagnosticResult{
		Check: fmt.Sprintf("Log Format: %s", cfg.Format),
	}

	p, err := parser.Lookup(cfg.Format)
	if err != nil {
		result.Status = StatusError
		result.Message = err.Error()
		return nil, result
	}
	p = parser.WithLocation(p, cfg.TimeLocation())

	d := detector.New(detector.WithParsers(p), detector.WithLocation(cfg.TimeLocation()))
	det, err := d.DetectFromFile(ctx, cfg.FilePath)
	if err != nil {
		result.Status = StatusError
		result.Message = fmt.Sprintf("Cannot sample file: %v", err)
		return nil, result
	}

	if !det.HasMatch() {
		result.Status = StatusError
		result.Message = fmt.Sprintf("None of %d sampled lines parsed", det.SampledLines)
		result.Suggests = []string{"Run 'logstat detect <log-file>' to find the right format"}
		return nil, result
	}

	best := det.BestMatch()
	result.Details = []string{fmt.Sprintf("Sample: %s", best.SampleLine)}
	for _, c := range best.KindCounts() {
		result.Details = append(result.Details, fmt.Sprintf("%s lines: %d", c.Name, c.N))
	}

	switch {
	case !best.Ordered():
		result.Status = StatusWarning
		result.Message = fmt.Sprintf("%d sampled records go back in time", best.OutOfOrder)
		result.Suggests = []string{"The start time can only be located in a chronologically ordered file"}
	case best.Confidence < 0.5:
		result.Status = StatusWarning
		result.Message = fmt.Sprintf("Only %.0f%% of sampled lines parsed", best.Confidence*100)
	default:
		result.Status = StatusOK
		result.Message = fmt.Sprintf("%.0f%% of %d sampled lines parsed", best.Confidence*100, det.SampledLines)
	}
	return p, result
}

func checkWindow(ctx context.Context, cfg *config.Options, p parser.LineParser) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Time Window",
	}

	// #nosec G304 - path is provided by user via profile
	f, err := os.Open(cfg.FilePath)
	if err != nil {
		result.Status = StatusError
		result.Message = fmt.Sprintf("Cannot read: %v", err)
		return result
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		result.Status = StatusError
		result.Message = fmt.Sprintf("Cannot stat: %v", err)
		return result
	}

	first, last, err := locator.New(f, info.Size(), p).Bounds(ctx)
	if err != nil {
		result.Status = StatusError
		result.Message = fmt.Sprintf("Cannot read file bounds: %v", err)
		return result
	}
	if !first.Found {
		result.Status = StatusError
		result.Message = "No parsable records in the file"
		return result
	}

	loc := cfg.TimeLocation()
	firstTS := record.FormatTime(first.Record.Timestamp, loc)
	lastTS := record.FormatTime(last.Record.Timestamp, loc)
	result.Details = []string{
		fmt.Sprintf("First record: %s", firstTS),
		fmt.Sprintf("Last record:  %s", lastTS),
		fmt.Sprintf("File covers: %s", time.Duration(last.Record.Timestamp-first.Record.Timestamp)*time.Second),
	}

	start, end := cfg.StartTime(), cfg.EndTime()
	switch {
	case start < first.Record.Timestamp:
		result.Status = StatusError
		result.Message = fmt.Sprintf("Start %s is before the first record (%s)", cfg.Start, firstTS)
		result.Suggests = []string{fmt.Sprintf("Use a begin time of %s or later", firstTS)}
	case start > last.Record.Timestamp:
		result.Status = StatusError
		result.Message = fmt.Sprintf("Start %s is after the last record (%s)", cfg.Start, lastTS)
		result.Suggests = []string{fmt.Sprintf("Use a begin time of %s or earlier", lastTS)}
	case end > last.Record.Timestamp:
		result.Status = StatusWarning
		result.Message = fmt.Sprintf("End %s is after the last record; the scan will read to the end of the file", cfg.End)
	default:
		result.Status = StatusOK
		result.Message = "Window is inside the file"
	}
	return result
}

func printDiagnostics(w io.Writer, results []DiagnosticResult, opts *DiagnoseOptions) {
	fmt.Fprintln(w, "=== logstat Profile Diagnostics ===")
	fmt.Fprintln(w)

	okCount := 0
	warnCount := 0
	errCount := 0

	for _, r := range results {
		// Status icon
		var icon string
		switch r.Status {
		case StatusOK:
			icon = "PASS"
			okCount++
		case StatusWarning:
			icon = "WARN"
			warnCount++
		case StatusError:
			icon = "FAIL"
			errCount++
		}

		fmt.Fprintf(w, "[%s] %s\n", icon, r.Check)
		fmt.Fprintf(w, "    %s\n", r.Message)

		if opts.Verbose || r.Status != StatusOK {
			for _, d := range r.Details {
				fmt.Fprintf(w, "      - %s\n", d)
			}
		}

		for _, s := range r.Suggests {
			fmt.Fprintf(w, "      Hint: %s\n", s)
		}

		fmt.Fprintln(w)
	}

	// Summary
	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %d passed, %d warnings, %d errors\n", okCount, warnCount, errCount)

	if errCount > 0 {
		fmt.Fprintln(w, "\nFix the errors above before scanning.")
	} else if warnCount > 0 {
		fmt.Fprintln(w, "\nProfile is usable but has warnings.")
	} else {
		fmt.Fprintln(w, "\nProfile looks good!")
	}
}
