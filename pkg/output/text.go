package output

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
)

// TextFormatter prints the classic "<key> : <count> calls" listing.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text.
func (f *TextFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "\n_________\nLogs count (total unique: %d)\n", report.TotalUnique)
	for _, e := range report.Entries {
		fmt.Fprintf(bw, "%s : %s\n", e.Key, Calls(e.Count))
	}

	if f.opts.Verbose {
		fmt.Fprintf(bw, "\nLines read: %d\n", report.Metadata.LinesRead)
		fmt.Fprintf(bw, "Requests counted: %d\n", report.Metadata.Counted)
		fmt.Fprintf(bw, "Duration: %s\n", report.Metadata.Duration.Round(1e6))
	}

	return bw.Flush()
}

func formatUint(n uint64) string {
	return strconv.FormatUint(n, 10)
}
