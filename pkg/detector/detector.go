// Package detector identifies which registered log format a file is written
// in and reports the time span it covers.
package detector

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/ccollicutt/logstat/pkg/locator"
	"github.com/ccollicutt/logstat/pkg/parser"
)

// DetectionResult holds the result of analyzing a log file.
type DetectionResult struct {
	Matches      []FormatMatch // Formats that parsed at least one line, best first
	SampledLines int           // Number of lines sampled
	ParsedLines  int           // Number of lines parsed by the best match

	// Span is the time range of the file according to the best match.
	// It is only set by DetectFromFile.
	Span *Span
}

// Span is the first and last record of a file.
type Span struct {
	First       time.Time
	Last        time.Time
	FirstOffset int64
	LastOffset  int64
	Size        int64
}

// Duration returns the time covered by the file.
func (s *Span) Duration() time.Duration {
	return s.Last.Sub(s.First)
}

// Detector scores registered log formats against a sample of lines.
type Detector struct {
	parsers    []parser.LineParser
	sampleSize int
	location   *time.Location
}

// Option configures the Detector.
type Option func(*Detector)

// WithSampleSize sets the number of lines to sample (default 100).
func WithSampleSize(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.sampleSize = n
		}
	}
}

// WithParsers replaces the candidate formats (default: every registered one).
func WithParsers(parsers ...parser.LineParser) Option {
	return func(d *Detector) {
		d.parsers = parsers
	}
}

// WithLocation sets the time zone timestamps are read in (default: local).
func WithLocation(loc *time.Location) Option {
	return func(d *Detector) {
		d.location = loc
	}
}

// New creates a new Detector.
func New(opts ...Option) *Detector {
	d := &Detector{
		parsers:    parser.All(),
		sampleSize: 100,
		location:   time.Local,
	}
	for _, opt := range opts {
		opt(d)
	}
	localized := make([]parser.LineParser, len(d.parsers))
	for i, p := range d.parsers {
		localized[i] = parser.WithLocation(p, d.location)
	}
	d.parsers = localized
	return d
}

// DetectFromFile samples the head of a log file, scores every format and,
// when one matches, finds the first and last record with it.
func (d *Detector) DetectFromFile(ctx context.Context, path string) (*DetectionResult, error) {
	// #nosec G304 - path is provided by user via CLI
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}

	lines, err := d.sample(ctx, file)
	if err != nil {
		return nil, err
	}

	result := d.DetectFromLines(lines)
	if !result.HasMatch() {
		return result, nil
	}

	first, last, err := locator.New(file, info.Size(), result.BestMatch().Parser()).Bounds(ctx)
	if err != nil {
		return nil, fmt.Errorf("finding time span: %w", err)
	}
	if first.Found && last.Found {
		result.Span = &Span{
			First:       time.Unix(first.Record.Timestamp, 0).In(d.location),
			Last:        time.Unix(last.Record.Timestamp, 0).In(d.location),
			FirstOffset: first.LineOffset,
			LastOffset:  last.LineOffset,
			Size:        info.Size(),
		}
	}
	return result, nil
}

// DetectFromLines scores every format against lines.
func (d *Detector) DetectFromLines(lines []string) *DetectionResult {
	result := &DetectionResult{
		SampledLines: len(lines),
	}

	if len(lines) == 0 {
		return result
	}

	for _, p := range d.parsers {
		m := newFormatMatch(p)
		for _, line := range lines {
			if rec := parser.GetRecord(p, line); rec.Parsed() {
				m.add(line, rec)
			}
		}
		if m.MatchCount == 0 {
			continue
		}
		m.Confidence = float64(m.MatchCount) / float64(len(lines))
		result.Matches = append(result.Matches, *m)
	}

	// Sort by confidence descending, then ordered samples first, then by name
	sort.SliceStable(result.Matches, func(i, j int) bool {
		a, b := result.Matches[i], result.Matches[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if a.Ordered() != b.Ordered() {
			return a.Ordered()
		}
		return a.Format < b.Format
	})

	if len(result.Matches) > 0 {
		result.ParsedLines = result.Matches[0].MatchCount
	}

	return result
}

// sample reads up to sampleSize non-empty lines from the head of r.
func (d *Detector) sample(ctx context.Context, r io.Reader) ([]string, error) {
	var lines []string
	lr := parser.NewLineReader(r, 0)

	for len(lines) < d.sampleSize {
		line, err := lr.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if !line.Truncated && strings.TrimSpace(line.Text) != "" {
			lines = append(lines, line.Text)
		}
	}

	return lines, nil
}

// BestMatch returns the highest confidence match, or nil if none found.
func (r *DetectionResult) BestMatch() *FormatMatch {
	if len(r.Matches) == 0 {
		return nil
	}
	return &r.Matches[0]
}

// HasMatch returns true if at least one format matched.
func (r *DetectionResult) HasMatch() bool {
	return len(r.Matches) > 0
}
