package aggregator

import (
	"strings"

	"github.com/ccollicutt/logstat/pkg/record"
)

// GroupKey derives the grouping key of a request record.
//
// With SplitOn > 0 the key is the SplitOn-th segment (0-based, leading '/'
// ignored) of the request path; requests whose path is too short are not
// grouped and ok is false. Otherwise the key is "METHOD path". The path is
// query-stripped when NoQueryParams is set.
func GroupKey(rec record.Record, opts Options) (key string, ok bool) {
	if !rec.IsRequest() {
		return "", false
	}

	path := rec.URL
	if opts.NoQueryParams {
		path = rec.Path
	}

	if opts.SplitOn > 0 {
		segments := strings.Split(strings.TrimPrefix(path, "/"), "/")
		if n := len(segments); n > 0 && segments[n-1] == "" {
			segments = segments[:n-1]
		}
		if len(segments) <= opts.SplitOn {
			return "", false
		}
		return segments[opts.SplitOn], true
	}

	return rec.MethodName + " " + path, true
}
