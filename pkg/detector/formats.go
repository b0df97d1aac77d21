package detector

import (
	"sort"

	"github.com/ccollicutt/logstat/pkg/parser"
	"github.com/ccollicutt/logstat/pkg/record"
)

// FormatMatch is the score of one registered log format against a sample.
type FormatMatch struct {
	Format     string  // Registered parser name
	Confidence float64 // 0.0 to 1.0 (share of sampled lines parsed)
	MatchCount int     // Number of lines that produced a record
	SampleLine string  // First line that parsed
	Sample     record.Record

	// Kinds and Severities break MatchCount down.
	Kinds      map[record.Kind]int
	Severities map[record.Severity]int

	// OutOfOrder counts records older than the record before them. Binary
	// search needs this to be zero.
	OutOfOrder int

	parser parser.LineParser
	last   int64
}

func newFormatMatch(p parser.LineParser) *FormatMatch {
	return &FormatMatch{
		Format:     p.Name(),
		Kinds:      make(map[record.Kind]int),
		Severities: make(map[record.Severity]int),
		parser:     p,
		last:       record.NoTimestamp,
	}
}

// add tallies one parsed record.
func (m *FormatMatch) add(line string, rec record.Record) {
	if m.MatchCount == 0 {
		m.SampleLine = line
		m.Sample = rec
	}
	m.MatchCount++
	m.Kinds[rec.Kind]++
	m.Severities[rec.Severity]++

	if m.last != record.NoTimestamp && rec.Timestamp < m.last {
		m.OutOfOrder++
	}
	m.last = rec.Timestamp
}

// Parser returns the parser that produced this match.
func (m *FormatMatch) Parser() parser.LineParser {
	return m.parser
}

// Ordered reports whether the sampled timestamps never went backwards.
func (m *FormatMatch) Ordered() bool {
	return m.OutOfOrder == 0
}

// KindCounts returns the kind breakdown in a stable order, skipping kinds
// that never occurred.
func (m *FormatMatch) KindCounts() []Count {
	var out []Count
	for _, k := range []record.Kind{record.KindRequest, record.KindGeneric, record.KindStackTrace} {
		if n := m.Kinds[k]; n > 0 {
			out = append(out, Count{Name: k.String(), N: n})
		}
	}
	return out
}

// SeverityCounts returns the severity breakdown, most frequent first.
func (m *FormatMatch) SeverityCounts() []Count {
	out := make([]Count, 0, len(m.Severities))
	for s, n := range m.Severities {
		out = append(out, Count{Name: s.String(), N: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].N != out[j].N {
			return out[i].N > out[j].N
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Count is a named tally.
type Count struct {
	Name string `json:"name"`
	N    int    `json:"count"`
}
