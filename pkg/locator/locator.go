// Package locator finds where a point in time starts inside a large,
// chronologically ordered log file without reading the whole file.
//
// The search runs over byte offsets. Every lookup seeks to an offset and scans
// forward to the next line the parser accepts, so lookups that land in the
// middle of a line or on unparsable lines are routine. The file's timestamps
// must be non-decreasing; out-of-order lines give unspecified (but never
// crashing) results.
package locator

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/ccollicutt/logstat/pkg/parser"
	"github.com/ccollicutt/logstat/pkg/record"
)

// DefaultBackOffWindow is the step, in bytes, used to walk backwards over
// runs of identical timestamps.
const DefaultBackOffWindow int64 = 100

// minTailStep is the initial step used when looking for the last record.
const minTailStep int64 = 4096

// ErrNotFound is returned when the target time is not covered by the file:
// the file has no parsable record, or the target lies before the first or
// after the last record.
var ErrNotFound = errors.New("start time not found")

// Position is the result of resolving an offset to the next valid record.
type Position struct {
	// Offset is where the lookup started.
	Offset int64
	// LineOffset is the offset of the line holding Record.
	LineOffset int64
	// Record is the first parsable record at or after Offset.
	Record record.Record
	// Found is false when the end of file was reached first.
	Found bool
}

// Locator binary-searches a log file by timestamp.
type Locator struct {
	r      io.ReaderAt
	size   int64
	parser parser.LineParser
	window int64
	log    logrus.FieldLogger
}

// Option configures the Locator.
type Option func(*Locator)

// WithBackOffWindow sets the duplicate back-off step (default 100 bytes).
func WithBackOffWindow(n int64) Option {
	return func(l *Locator) {
		if n > 0 {
			l.window = n
		}
	}
}

// WithLogger sets the logger used for search diagnostics.
func WithLogger(log logrus.FieldLogger) Option {
	return func(l *Locator) {
		if log != nil {
			l.log = log
		}
	}
}

// New creates a Locator over the first size bytes of r.
func New(r io.ReaderAt, size int64, p parser.LineParser, opts ...Option) *Locator {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	l := &Locator{
		r:      r,
		size:   size,
		parser: p,
		window: DefaultBackOffWindow,
		log:    discard,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Locate returns an offset from which forward scanning reaches the first
// record whose timestamp is >= target, including every record that carries
// target itself. Offset 0 is a valid answer; failure is ErrNotFound.
func (l *Locator) Locate(ctx context.Context, target int64) (int64, error) {
	first, last, err := l.Bounds(ctx)
	if err != nil {
		return 0, err
	}
	if !first.Found {
		return 0, fmt.Errorf("%w: no parsable records", ErrNotFound)
	}
	if target < first.Record.Timestamp {
		return 0, fmt.Errorf("%w: target precedes first record", ErrNotFound)
	}
	if target > last.Record.Timestamp {
		return 0, fmt.Errorf("%w: target follows last record", ErrNotFound)
	}

	offset, err := l.Search(ctx, target)
	if err != nil {
		return 0, err
	}
	return l.BackOff(ctx, target, offset)
}

// Search runs the coarse binary search over [0, size]. It returns as soon as
// a lookup resolves to target exactly; otherwise it returns the smallest visited
// offset whose record is later than target. A lookup that hits the end of the
// file counts as later than target.
func (l *Locator) Search(ctx context.Context, target int64) (int64, error) {
	left, right := int64(0), l.size
	best := int64(-1)

	for left <= right {
		mid := left + (right-left)/2

		p, err := l.RecordAt(ctx, mid)
		if err != nil {
			return 0, err
		}

		l.log.WithFields(logrus.Fields{
			"offset":    mid,
			"found":     p.Found,
			"timestamp": p.Record.Timestamp,
		}).Debug("search step")

		switch {
		case p.Found && p.Record.Timestamp < target:
			left = mid + 1
		case p.Found && p.Record.Timestamp == target:
			return mid, nil
		default:
			if p.Found {
				best = mid
			}
			right = mid - 1
		}
	}

	if best < 0 {
		return 0, ErrNotFound
	}
	return best, nil
}

// BackOff walks backwards from offset in window-sized steps while the record
// found there still carries target, so that no earlier record with the same
// timestamp is skipped.
func (l *Locator) BackOff(ctx context.Context, target, offset int64) (int64, error) {
	steps := 0
	for {
		p, err := l.RecordAt(ctx, offset)
		if err != nil {
			return 0, err
		}
		if !p.Found || p.Record.Timestamp != target || offset == 0 {
			l.log.WithFields(logrus.Fields{
				"offset": offset,
				"steps":  steps,
			}).Debug("back-off done")
			return offset, nil
		}
		offset -= l.window
		if offset < 0 {
			offset = 0
		}
		steps++
	}
}

// RecordAt resolves offset to the first parsable record at or after it.
func (l *Locator) RecordAt(ctx context.Context, offset int64) (Position, error) {
	if offset < 0 {
		offset = 0
	}
	pos := Position{Offset: offset, Record: record.Unparsed()}
	if offset >= l.size {
		return pos, nil
	}

	lr := parser.NewLineReader(io.NewSectionReader(l.r, offset, l.size-offset), offset)
	for {
		line, err := lr.Next(ctx)
		if err == io.EOF {
			return pos, nil
		}
		if err != nil {
			return Position{}, fmt.Errorf("reading offset %d: %w", offset, err)
		}
		rec := parser.ParseLine(l.parser, line)
		if rec.Parsed() {
			pos.LineOffset = line.Offset
			pos.Record = rec
			pos.Found = true
			return pos, nil
		}
	}
}

// Bounds returns the first and the last parsable records of the file.
// Both positions have Found == false when the file has no parsable record.
func (l *Locator) Bounds(ctx context.Context) (first, last Position, err error) {
	first, err = l.RecordAt(ctx, 0)
	if err != nil || !first.Found {
		return first, first, err
	}

	step := l.window
	if step < minTailStep {
		step = minTailStep
	}
	for start := l.size; ; step *= 2 {
		start -= step
		if start < 0 {
			start = 0
		}
		last, err = l.lastFrom(ctx, start)
		if err != nil || last.Found || start == 0 {
			return first, last, err
		}
	}
}

// lastFrom returns the last parsable record between offset and the end of
// the file.
func (l *Locator) lastFrom(ctx context.Context, offset int64) (Position, error) {
	pos := Position{Offset: offset, Record: record.Unparsed()}
	lr := parser.NewLineReader(io.NewSectionReader(l.r, offset, l.size-offset), offset)
	for {
		line, err := lr.Next(ctx)
		if err == io.EOF {
			return pos, nil
		}
		if err != nil {
			return Position{}, fmt.Errorf("scanning tail from offset %d: %w", offset, err)
		}
		if rec := parser.ParseLine(l.parser, line); rec.Parsed() {
			pos.LineOffset = line.Offset
			pos.Record = rec
			pos.Found = true
		}
	}
}
