package output

import (
	"context"
	"encoding/json"
	"io"

	"github.com/ccollicutt/logstat/pkg/aggregator"
)

// JSONFormatter formats reports as JSON.
type JSONFormatter struct {
	opts FormatOptions
}

// NewJSONFormatter creates a new JSON formatter with the given options.
func NewJSONFormatter(opts FormatOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Name returns the format name.
func (f *JSONFormatter) Name() string {
	return "json"
}

// jsonReport is the encoded form of a Report. Metadata is only present
// in verbose mode.
type jsonReport struct {
	TotalUnique int                `json:"total_unique"`
	Limit       int                `json:"limit,omitempty"`
	Entries     []aggregator.Entry `json:"entries"`
	Metadata    *Metadata          `json:"metadata,omitempty"`
}

// Format renders the report as JSON.
func (f *JSONFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	out := jsonReport{
		TotalUnique: report.TotalUnique,
		Limit:       report.Limit,
		Entries:     report.Entries,
	}
	if out.Entries == nil {
		out.Entries = []aggregator.Entry{}
	}
	if f.opts.Verbose {
		md := report.Metadata
		out.Metadata = &md
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
