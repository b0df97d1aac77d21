// Package output provides formatting of grouped request counts.
package output

import (
	"time"

	"github.com/ccollicutt/logstat/pkg/aggregator"
)

// Report is the presentation of a grouping run.
type Report struct {
	// TotalUnique is the number of distinct keys, before the limit filter.
	TotalUnique int `json:"total_unique"`

	// Limit is the threshold that was applied (0 shows everything).
	Limit int `json:"limit,omitempty"`

	// Entries are the shown keys, by descending count.
	Entries []aggregator.Entry `json:"entries"`

	// Metadata provides context about the run.
	Metadata Metadata `json:"metadata"`
}

// Metadata provides context about the scan that produced the report.
type Metadata struct {
	Source       string        `json:"source,omitempty"`
	Start        string        `json:"start,omitempty"`
	End          string        `json:"end,omitempty"`
	LinesRead    int           `json:"lines_read"`
	Counted      int           `json:"counted"`
	StoppedAtEnd bool          `json:"stopped_at_end"`
	Duration     time.Duration `json:"duration"`
}

// NewReport builds a report from a streaming result. Entries whose count
// does not exceed limit are dropped when limit > 0.
func NewReport(result *aggregator.Result, limit int) *Report {
	report := &Report{
		Limit:   limit,
		Entries: []aggregator.Entry{},
	}
	if result == nil || result.Groups == nil {
		return report
	}

	report.TotalUnique = result.Groups.Len()
	for _, e := range result.Groups.Sorted() {
		if limit > 0 && e.Count <= uint64(limit) {
			continue
		}
		report.Entries = append(report.Entries, e)
	}

	report.Metadata = Metadata{
		LinesRead:    result.LinesRead,
		Counted:      result.RecordsCounted,
		StoppedAtEnd: result.StoppedAtEnd,
		Duration:     result.Duration,
	}
	return report
}

// Calls renders a count as "N call" or "N calls".
func Calls(n uint64) string {
	if n == 1 {
		return "1 call"
	}
	return formatUint(n) + " calls"
}
