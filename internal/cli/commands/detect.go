package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ccollicutt/logstat/pkg/config"
	"github.com/ccollicutt/logstat/pkg/detector"
	"github.com/ccollicutt/logstat/pkg/record"
)

// DetectOptions holds command-line options for the detect command.
type DetectOptions struct {
	Output      string
	SampleSize  int
	ShowAll     bool
	WriteConfig string
	Location    string
}

// NewDetectCommand creates the detect command.
func NewDetectCommand() *cobra.Command {
	opts := &DetectOptions{}

	cmd := &cobra.Command{
		Use:   "detect <log-file>",
		Short: "Detect the log format and time span of a file",
		Long: `Analyze a log file to find which supported log format it is written in.

Samples lines from the head of the file and parses them with every registered
format. Reports the best format with a confidence score, a breakdown of the
parsed records and the first and last timestamps in the file, which bound the
values accepted by --begin and --end.

Optionally generates a starter profile with --write-config.

Example:
  logstat detect /var/log/couchdb/couch.log
  logstat detect --sample 500 --all /var/log/couchdb/couch.log
  logstat detect -w couch.yaml /var/log/couchdb/couch.log`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().IntVarP(&opts.SampleSize, "sample", "n", 100, "Number of lines to sample")
	cmd.Flags().BoolVar(&opts.ShowAll, "all", false, "Show all matching formats, not just the best match")
	cmd.Flags().StringVarP(&opts.WriteConfig, "write-config", "w", "", "Write starter profile to file (will not overwrite)")
	cmd.Flags().StringVar(&opts.Location, "location", "", "Time zone of the log timestamps (default local)")

	return cmd
}

func runDetect(cmd *cobra.Command, args []string, opts *DetectOptions) error {
	logFile := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Check file exists
	if _, err := os.Stat(logFile); os.IsNotExist(err) {
		return fmt.Errorf("log file not found: %s", logFile)
	}

	loc := time.Local
	if opts.Location != "" {
		l, err := time.LoadLocation(opts.Location)
		if err != nil {
			return &UsageError{Err: fmt.Errorf("location: %w", err)}
		}
		loc = l
	}

	d := detector.New(detector.WithSampleSize(opts.SampleSize), detector.WithLocation(loc))

	result, err := d.DetectFromFile(ctx, logFile)
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	w := cmd.OutOrStdout()

	// Write config file if requested
	if opts.WriteConfig != "" {
		if err := writeStarterConfig(result, logFile, opts); err != nil {
			return err
		}
		fmt.Fprintf(w, "Wrote starter profile to: %s\n\n", opts.WriteConfig)
	}

	switch opts.Output {
	case "json":
		return outputDetectJSON(w, result, logFile, opts)
	case "text":
		return outputDetectText(w, result, logFile, opts)
	default:
		return &UsageError{Err: fmt.Errorf("unknown output format %q (use text or json)", opts.Output)}
	}
}

func outputDetectText(w io.Writer, result *detector.DetectionResult, logFile string, opts *DetectOptions) error {
	fmt.Fprintln(w, "=== Log Format Detection ===")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "File: %s\n", logFile)
	fmt.Fprintf(w, "Lines sampled: %d\n", result.SampledLines)
	fmt.Fprintf(w, "Lines parsed: %d\n", result.ParsedLines)
	fmt.Fprintln(w)

	if !result.HasMatch() {
		fmt.Fprintln(w, "No supported log format detected.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Tip: Check the first few lines manually; only registered formats can be scanned.")
		return nil
	}

	best := result.BestMatch()
	fmt.Fprintf(w, "Detected Format: %s\n", best.Format)
	fmt.Fprintf(w, "Confidence: %.1f%% (%d/%d lines parsed)\n",
		best.Confidence*100, best.MatchCount, result.SampledLines)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Sample match:\n  %s\n", best.SampleLine)
	fmt.Fprintln(w)

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle("Sampled records")
	tw.AppendHeader(table.Row{"Breakdown", "Value", "Lines"})
	for _, c := range best.KindCounts() {
		tw.AppendRow(table.Row{"kind", c.Name, c.N})
	}
	tw.AppendSeparator()
	for _, c := range best.SeverityCounts() {
		tw.AppendRow(table.Row{"severity", c.Name, c.N})
	}
	tw.Render()
	fmt.Fprintln(w)

	if !best.Ordered() {
		fmt.Fprintf(w, "WARNING: %d sampled records are older than the record before them.\n", best.OutOfOrder)
		fmt.Fprintln(w, "The file must be in chronological order for the start time to be located.")
		fmt.Fprintln(w)
	}

	if span := result.Span; span != nil {
		fmt.Fprintf(w, "First record: %s (offset %d)\n", span.First.Format(record.TimeLayout), span.FirstOffset)
		fmt.Fprintf(w, "Last record:  %s (offset %d)\n", span.Last.Format(record.TimeLayout), span.LastOffset)
		fmt.Fprintf(w, "Covers: %s over %d bytes\n", span.Duration(), span.Size)
		fmt.Fprintln(w)
	}

	// Show alternatives if requested
	if opts.ShowAll && len(result.Matches) > 1 {
		fmt.Fprintln(w, "--- Alternative formats detected ---")
		for i, m := range result.Matches[1:] {
			fmt.Fprintf(w, "%d. %s (%.1f%% confidence)\n", i+2, m.Format, m.Confidence*100)
		}
		fmt.Fprintln(w)
	}

	return nil
}

// JSONMatch represents a format match in JSON output.
type JSONMatch struct {
	Name       string           `json:"name"`
	Confidence float64          `json:"confidence"`
	MatchCount int              `json:"match_count"`
	OutOfOrder int              `json:"out_of_order"`
	SampleLine string           `json:"sample_line"`
	Kinds      []detector.Count `json:"kinds"`
	Severities []detector.Count `json:"severities"`
}

// JSONSpan represents the time span in JSON output.
type JSONSpan struct {
	First       string `json:"first"`
	Last        string `json:"last"`
	FirstOffset int64  `json:"first_offset"`
	LastOffset  int64  `json:"last_offset"`
	Size        int64  `json:"size"`
}

// JSONOutput represents the full JSON output.
type JSONOutput struct {
	File         string      `json:"file"`
	Matches      []JSONMatch `json:"matches"`
	SampledLines int         `json:"sampled_lines"`
	ParsedLines  int         `json:"parsed_lines"`
	Span         *JSONSpan   `json:"span,omitempty"`
}

func outputDetectJSON(w io.Writer, result *detector.DetectionResult, logFile string, opts *DetectOptions) error {
	out := JSONOutput{
		File:         logFile,
		SampledLines: result.SampledLines,
		ParsedLines:  result.ParsedLines,
		Matches:      make([]JSONMatch, 0),
	}

	matches := result.Matches
	if !opts.ShowAll && len(matches) > 1 {
		matches = matches[:1] // Only show best match
	}

	for _, m := range matches {
		out.Matches = append(out.Matches, JSONMatch{
			Name:       m.Format,
			Confidence: m.Confidence,
			MatchCount: m.MatchCount,
			OutOfOrder: m.OutOfOrder,
			SampleLine: m.SampleLine,
			Kinds:      m.KindCounts(),
			Severities: m.SeverityCounts(),
		})
	}

	if span := result.Span; span != nil {
		out.Span = &JSONSpan{
			First:       span.First.Format(record.TimeLayout),
			Last:        span.Last.Format(record.TimeLayout),
			FirstOffset: span.FirstOffset,
			LastOffset:  span.LastOffset,
			Size:        span.Size,
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

// writeStarterConfig writes a profile covering the whole file with the
// detected format.
func writeStarterConfig(result *detector.DetectionResult, logFile string, opts *DetectOptions) error {
	configPath := opts.WriteConfig

	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s (will not overwrite)", configPath)
	}

	if !result.HasMatch() || result.Span == nil {
		return fmt.Errorf("cannot generate config: no log format detected")
	}

	data, err := generateStarterConfig(logFile, result, opts.Location)
	if err != nil {
		return err
	}

	// #nosec G306 - profile doesn't need restrictive permissions
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// generateStarterConfig renders a YAML profile for the detected file.
func generateStarterConfig(logFile string, result *detector.DetectionResult, location string) ([]byte, error) {
	// Get absolute path for log file if possible
	absLogFile := logFile
	if abs, err := filepath.Abs(logFile); err == nil {
		absLogFile = abs
	}

	best := result.BestMatch()
	profile := config.DefaultOptions()
	profile.FilePath = absLogFile
	profile.Start = result.Span.First.Format(record.TimeLayout)
	profile.End = result.Span.Last.Format(record.TimeLayout)
	profile.Format = best.Format
	profile.Location = location
	profile.Group = true

	body, err := yaml.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("rendering profile: %w", err)
	}

	header := fmt.Sprintf("# logstat profile\n# Generated by: logstat detect\n# Detected format: %s (%.0f%% confidence)\n\n",
		best.Format, best.Confidence*100)
	return append([]byte(header), body...), nil
}
