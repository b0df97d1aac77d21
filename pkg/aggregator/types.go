// Package aggregator streams the records of a time window, either printing
// them through or folding HTTP requests into grouped counters.
package aggregator

import "time"

// Options controls how records are streamed and grouped.
type Options struct {
	// Start and End bound the window, in seconds since the epoch (inclusive).
	Start int64
	End   int64

	// Group counts requests instead of printing every line.
	Group bool

	// HTTPOnly suppresses generic and stack trace lines in grouping mode.
	HTTPOnly bool

	// NoQueryParams strips the query string before building the key.
	NoQueryParams bool

	// SplitOn groups by the Nth '/'-delimited path segment (0 disables).
	SplitOn int
}

// Result summarizes a streaming pass.
type Result struct {
	// Groups holds the request counters. Empty unless Options.Group is set.
	Groups *Groups

	// LinesRead is the number of raw lines read, including unparsable ones.
	LinesRead int

	// LinesWritten is the number of raw lines written through.
	LinesWritten int

	// RecordsCounted is the number of requests folded into Groups.
	RecordsCounted int

	// StoppedAtEnd is true when a record past Options.End halted the scan.
	StoppedAtEnd bool

	// Duration is how long the pass took.
	Duration time.Duration
}
