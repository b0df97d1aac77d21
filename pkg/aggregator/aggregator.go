package aggregator

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ccollicutt/logstat/pkg/parser"
)

// Capacity hint for the groups map: the busiest logs seen produce about this
// many lines per second, and in the worst case every line is a distinct key.
const (
	linesPerSecond  = 150
	maxCapacityHint = 1 << 20
)

// Aggregator reads lines from a located offset up to the end of the window.
type Aggregator struct {
	parser parser.LineParser
	out    io.Writer
	opts   Options
	log    logrus.FieldLogger
}

// Option configures the Aggregator.
type Option func(*Aggregator)

// WithLogger sets the logger used for scan diagnostics.
func WithLogger(log logrus.FieldLogger) Option {
	return func(a *Aggregator) {
		if log != nil {
			a.log = log
		}
	}
}

// New creates an Aggregator that writes pass-through lines to out.
func New(p parser.LineParser, out io.Writer, opts Options, o ...Option) *Aggregator {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	a := &Aggregator{
		parser: p,
		out:    out,
		opts:   opts,
		log:    discard,
	}
	for _, opt := range o {
		opt(a)
	}
	return a
}

// Stream reads r line by line. Unparsable lines and records before Start
// are skipped; the first record after End stops the scan. In pass-through
// mode every remaining line is written verbatim. In grouping mode requests
// are counted and other lines are written unless HTTPOnly is set.
func (a *Aggregator) Stream(ctx context.Context, r io.Reader) (*Result, error) {
	begin := time.Now()
	result := &Result{Groups: NewGroups(a.capacityHint())}

	w := bufio.NewWriter(a.out)
	lr := parser.NewLineReader(r, 0)

	for {
		line, err := lr.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			_ = w.Flush()
			return nil, err
		}
		result.LinesRead++

		rec := parser.ParseLine(a.parser, line)
		if !rec.Parsed() || rec.Timestamp < a.opts.Start {
			continue
		}
		if rec.Timestamp > a.opts.End {
			result.StoppedAtEnd = true
			break
		}

		if a.opts.Group && rec.IsRequest() {
			if key, ok := GroupKey(rec, a.opts); ok {
				result.Groups.Add(key)
				result.RecordsCounted++
			}
			continue
		}
		if a.opts.Group && a.opts.HTTPOnly {
			continue
		}

		if _, err := w.WriteString(line.Text); err != nil {
			return nil, fmt.Errorf("writing line: %w", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return nil, fmt.Errorf("writing line: %w", err)
		}
		result.LinesWritten++
	}

	if err := w.Flush(); err != nil {
		return nil, fmt.Errorf("flushing output: %w", err)
	}

	result.Duration = time.Since(begin)
	a.log.WithFields(logrus.Fields{
		"lines_read":      result.LinesRead,
		"lines_written":   result.LinesWritten,
		"records_counted": result.RecordsCounted,
		"unique_keys":     result.Groups.Len(),
		"stopped_at_end":  result.StoppedAtEnd,
		"duration":        result.Duration,
	}).Debug("stream done")

	return result, nil
}

func (a *Aggregator) capacityHint() int {
	if !a.opts.Group {
		return 0
	}
	secs := a.opts.End - a.opts.Start
	if secs <= 0 {
		return linesPerSecond
	}
	if secs > maxCapacityHint/linesPerSecond {
		return maxCapacityHint
	}
	return int(secs) * linesPerSecond
}
