package parser

import (
	"time"

	"github.com/ccollicutt/logstat/pkg/record"
)

// LineParser turns raw log lines into records for one log format.
// Implementations must be safe for sequential access (not concurrent).
type LineParser interface {
	// Name returns the format name used to select the parser.
	Name() string

	// Tokenize splits a raw line into tokens.
	// Most formats delegate to the package-level Tokenize.
	Tokenize(line string) []string

	// Parse extracts a record from tokens. It must never fail: any
	// structural mismatch yields record.Unparsed().
	Parse(tokens []string) record.Record
}

// GetRecord parses a raw line with p.
func GetRecord(p LineParser, line string) record.Record {
	return p.Parse(p.Tokenize(line))
}

// ParseLine parses a line read by a LineReader with p. Truncated lines
// yield record.Unparsed().
func ParseLine(p LineParser, line Line) record.Record {
	if line.Truncated {
		return record.Unparsed()
	}
	return GetRecord(p, line.Text)
}

// Localizer is implemented by parsers whose timestamps are interpreted in a
// time zone.
type Localizer interface {
	// InLocation returns a copy of the parser that interprets timestamps in loc.
	InLocation(loc *time.Location) LineParser
}

// WithLocation returns p configured for loc when p supports it, or p itself.
func WithLocation(p LineParser, loc *time.Location) LineParser {
	if l, ok := p.(Localizer); ok && loc != nil {
		return l.InLocation(loc)
	}
	return p
}
