package record

import "time"

// TimeLayout is the textual timestamp format used by log lines and by the
// start/end bounds given on the command line.
const TimeLayout = "2006-01-02T15:04:05"

// ParseTime parses the leading TimeLayout portion of s in loc and returns
// seconds since the epoch. Anything after the seconds field (fractions, a
// zone suffix) is ignored. A nil loc means time.Local.
func ParseTime(s string, loc *time.Location) (int64, bool) {
	if len(s) < len(TimeLayout) {
		return NoTimestamp, false
	}
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(TimeLayout, s[:len(TimeLayout)], loc)
	if err != nil {
		return NoTimestamp, false
	}
	return t.Unix(), true
}

// FormatTime renders an epoch timestamp in TimeLayout.
func FormatTime(ts int64, loc *time.Location) string {
	if ts == NoTimestamp {
		return "-"
	}
	if loc == nil {
		loc = time.Local
	}
	return time.Unix(ts, 0).In(loc).Format(TimeLayout)
}
