package parser

import (
	"strings"
	"time"

	"github.com/ccollicutt/logstat/pkg/record"
)

// CouchDBName is the registry name of the CouchDB parser.
const CouchDBName = "couchdb"

// couchDBNonRequestMarker replaces the message id on system messages.
const couchDBNonRequestMarker = "--------"

// Token positions of a CouchDB log line:
//
//	[info] 2019-03-21T10:00:00.000000Z couchdb@db1 <0.1.0> 1a2b3c4d db1:5984 10.0.0.1 admin GET /db/doc?x=1 200 ok 12
const (
	tokSeverity = iota
	tokTimestamp
	tokHost
	tokPID
	tokMessageID
	tokDomain
	tokClient
	tokUser
	tokMethod
	tokURL
	tokStatus
	tokStatusText
	tokDuration
)

// CouchDB parses CouchDB access and error logs.
type CouchDB struct {
	// Location is used to interpret timestamps. Nil means time.Local.
	Location *time.Location
}

// NewCouchDB creates a CouchDB parser interpreting timestamps in loc.
func NewCouchDB(loc *time.Location) *CouchDB {
	return &CouchDB{Location: loc}
}

// Name returns the format name.
func (p *CouchDB) Name() string {
	return CouchDBName
}

// InLocation returns a CouchDB parser interpreting timestamps in loc.
func (p *CouchDB) InLocation(loc *time.Location) LineParser {
	return NewCouchDB(loc)
}

// Tokenize splits the line on spaces.
func (p *CouchDB) Tokenize(line string) []string {
	return Tokenize(line)
}

// Parse classifies a tokenized CouchDB line as a system message, a stack
// trace continuation or an HTTP request.
func (p *CouchDB) Parse(tokens []string) record.Record {
	severity := record.ParseSeverity(token(tokens, tokSeverity))
	if severity == record.SeverityUndefined {
		return record.Unparsed()
	}
	ts, ok := record.ParseTime(token(tokens, tokTimestamp), p.Location)
	if !ok {
		return record.Unparsed()
	}

	rec := record.Record{
		Timestamp: ts,
		Severity:  severity,
		Host:      token(tokens, tokHost),
		PID:       token(tokens, tokPID),
	}

	msgID := token(tokens, tokMessageID)
	if msgID == couchDBNonRequestMarker {
		rec.Kind = record.KindGeneric
		return rec
	}
	rec.MessageID = msgID

	methodName := token(tokens, tokMethod)
	method := record.ParseMethod(methodName)
	if method == record.MethodUnknown {
		rec.Kind = record.KindStackTrace
		return rec
	}

	url := token(tokens, tokURL)
	rec.Kind = record.KindRequest
	rec.Method = method
	rec.MethodName = methodName
	rec.Domain = token(tokens, tokDomain)
	rec.Client = token(tokens, tokClient)
	rec.User = token(tokens, tokUser)
	rec.URL = url
	rec.Path = stripQuery(url)
	rec.Status = atoi(token(tokens, tokStatus))
	rec.Duration = atoi(token(tokens, tokDuration))
	return rec
}

// token returns tokens[i], or "" when the line is too short.
func token(tokens []string, i int) string {
	if i < len(tokens) {
		return tokens[i]
	}
	return ""
}

func stripQuery(url string) string {
	if i := strings.IndexByte(url, '?'); i >= 0 {
		return url[:i]
	}
	return url
}

// atoi parses an optional sign followed by leading decimal digits and
// ignores the rest ("12ms" is 12). Anything else, including overflow, is 0.
func atoi(s string) int {
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			break
		}
		if n > (1<<31-1-int(c-'0'))/10 {
			return 0
		}
		n = n*10 + int(c-'0')
	}
	if neg {
		return -n
	}
	return n
}
