// Package record defines the normalized representation of a single log line.
package record

import "math"

// NoTimestamp marks a record whose line could not be parsed as a
// severity-tagged, timestamped log entry.
const NoTimestamp int64 = math.MinInt64

// Kind classifies what a parsed line represents.
type Kind int

const (
	// KindUnparsed is the kind of the sentinel record.
	KindUnparsed Kind = iota
	// KindGeneric is a generic or system message.
	KindGeneric
	// KindStackTrace is a continuation line of a stack trace or error report.
	KindStackTrace
	// KindRequest is an HTTP request line.
	KindRequest
)

func (k Kind) String() string {
	switch k {
	case KindGeneric:
		return "generic"
	case KindStackTrace:
		return "stacktrace"
	case KindRequest:
		return "request"
	default:
		return "unparsed"
	}
}

// Record represents a single parsed log line.
// Records are values; a parser produces a fresh one for every line.
type Record struct {
	// Timestamp is seconds since the epoch, or NoTimestamp.
	Timestamp int64
	// Severity is the syslog-style level tag of the line.
	Severity Severity
	// Kind says which of generic message, stack trace or request the line is.
	Kind Kind

	// Identifying fields, carried through for verbatim printing.
	Host      string
	PID       string
	MessageID string
	Domain    string
	Client    string
	User      string

	// Request fields. Only meaningful when Kind is KindRequest.
	Method     Method
	MethodName string
	URL        string // path and query
	Path       string // URL with the query string stripped
	Status     int
	Duration   int
}

// Unparsed returns the sentinel record.
func Unparsed() Record {
	return Record{Timestamp: NoTimestamp}
}

// Parsed reports whether the record came from a well-formed log entry.
func (r Record) Parsed() bool {
	return r.Timestamp != NoTimestamp && r.Severity != SeverityUndefined
}

// IsGeneric reports whether the record is a generic or system message.
func (r Record) IsGeneric() bool { return r.Kind == KindGeneric }

// IsStackTrace reports whether the record is a stack trace continuation.
func (r Record) IsStackTrace() bool { return r.Kind == KindStackTrace }

// IsRequest reports whether the record is an HTTP request.
func (r Record) IsRequest() bool { return r.Kind == KindRequest }
