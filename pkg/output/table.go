package output

import (
	"context"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// TableFormatter renders the counts as a box-drawn table.
type TableFormatter struct {
	opts FormatOptions
}

// NewTableFormatter creates a new table formatter with the given options.
func NewTableFormatter(opts FormatOptions) *TableFormatter {
	return &TableFormatter{opts: opts}
}

// Name returns the format name.
func (f *TableFormatter) Name() string {
	return "table"
}

// Format renders the report as a table.
func (f *TableFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.Style().Options.SeparateHeader = true
	tw.Style().Options.DrawBorder = true
	tw.SetTitle(fmt.Sprintf("Logs count (total unique: %d)", report.TotalUnique))

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignCenter},
		{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignCenter, WidthMax: 100},
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignCenter},
	})

	tw.AppendHeader(table.Row{"#", "Key", "Calls"})
	for i, e := range report.Entries {
		tw.AppendRow(table.Row{i + 1, e.Key, e.Count})
	}
	if len(report.Entries) == 0 {
		tw.AppendRow(table.Row{"-", "(no requests)", 0})
	}

	if f.opts.Verbose {
		tw.AppendFooter(table.Row{"", "lines read", report.Metadata.LinesRead})
	}

	_ = tw.Render()
	return nil
}
