package locator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccollicutt/logstat/pkg/parser"
	"github.com/ccollicutt/logstat/pkg/record"
)

var t0 = time.Date(2019, 3, 21, 10, 0, 0, 0, time.UTC).Unix()

// logFile is a synthetic log with the offset of every line.
type logFile struct {
	data    string
	offsets []int64
	stamps  []int64
}

func requestLine(ts int64, path string) string {
	return fmt.Sprintf("[info] %s.000000Z couchdb@db1 <0.1.0> 0a1b2c3d db1:5984 10.0.0.1 admin GET %s 200 ok 3",
		record.FormatTime(ts, time.UTC), path)
}

func buildLog(stamps []int64, noise func(i int) string) logFile {
	var b strings.Builder
	f := logFile{}
	for i, ts := range stamps {
		if noise != nil {
			if n := noise(i); n != "" {
				b.WriteString(n)
				b.WriteByte('\n')
			}
		}
		f.offsets = append(f.offsets, int64(b.Len()))
		f.stamps = append(f.stamps, ts)
		b.WriteString(requestLine(ts, fmt.Sprintf("/x/%d", i)))
		b.WriteByte('\n')
	}
	f.data = b.String()
	return f
}

func perSecond(n int) []int64 {
	stamps := make([]int64, n)
	for i := range stamps {
		stamps[i] = t0 + int64(i)
	}
	return stamps
}

func newLocator(f logFile, opts ...Option) *Locator {
	r := strings.NewReader(f.data)
	return New(r, int64(len(f.data)), parser.NewCouchDB(time.UTC), opts...)
}

// firstIndexAtOrAfter returns the index of the first record at or after
// target, or -1.
func (f logFile) firstIndexAtOrAfter(target int64) int {
	for i, ts := range f.stamps {
		if ts >= target {
			return i
		}
	}
	return -1
}

// assertCovers checks that scanning from offset visits every record with a
// timestamp >= target.
func assertCovers(t *testing.T, f logFile, offset, target int64) {
	t.Helper()
	i := f.firstIndexAtOrAfter(target)
	require.GreaterOrEqual(t, i, 0)
	assert.LessOrEqual(t, offset, f.offsets[i], "offset must not pass the first record >= target")
}

func TestLocate_StrictlyIncreasing(t *testing.T) {
	f := buildLog(perSecond(300), nil)
	l := newLocator(f)
	ctx := context.Background()

	for i, ts := range f.stamps {
		offset, err := l.Locate(ctx, ts)
		require.NoError(t, err, "record %d", i)
		assertCovers(t, f, offset, ts)

		// Never more than one back-off window before the previous line.
		if i > 0 {
			assert.Greater(t, offset, f.offsets[i-1]-DefaultBackOffWindow, "record %d located too early", i)
		}
	}
}

func TestLocate_FirstRecordIsOffsetZero(t *testing.T) {
	f := buildLog(perSecond(50), nil)
	offset, err := newLocator(f).Locate(context.Background(), t0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), offset)
}

func TestLocate_DuplicateRuns(t *testing.T) {
	for _, k := range []int{1, 2, 5, 60} {
		t.Run(fmt.Sprintf("run of %d", k), func(t *testing.T) {
			var stamps []int64
			for i := 0; i < 40; i++ {
				stamps = append(stamps, t0+int64(i))
			}
			target := t0 + 40
			firstDup := len(stamps)
			for i := 0; i < k; i++ {
				stamps = append(stamps, target)
			}
			for i := 41; i < 80; i++ {
				stamps = append(stamps, t0+int64(i))
			}

			f := buildLog(stamps, nil)
			offset, err := newLocator(f).Locate(context.Background(), target)
			require.NoError(t, err)
			assert.LessOrEqual(t, offset, f.offsets[firstDup], "offset must precede all %d duplicates", k)
		})
	}
}

func TestLocate_DuplicateRunLongerThanWindow(t *testing.T) {
	stamps := []int64{t0, t0 + 1}
	for i := 0; i < 200; i++ {
		stamps = append(stamps, t0+2)
	}
	stamps = append(stamps, t0+3)

	f := buildLog(stamps, nil)
	offset, err := newLocator(f, WithBackOffWindow(10)).Locate(context.Background(), t0+2)
	require.NoError(t, err)
	assert.LessOrEqual(t, offset, f.offsets[2])
}

func TestLocate_WithNoiseLines(t *testing.T) {
	noise := func(i int) string {
		switch i % 3 {
		case 0:
			return "    at couch_db:open/2 line 44"
		case 1:
			return "[verbose] not a recognised level"
		default:
			return ""
		}
	}
	f := buildLog(perSecond(120), noise)
	l := newLocator(f)

	for _, i := range []int{0, 1, 17, 59, 60, 118, 119} {
		offset, err := l.Locate(context.Background(), f.stamps[i])
		require.NoError(t, err)
		assertCovers(t, f, offset, f.stamps[i])
	}
}

func TestLocate_OverlongLine(t *testing.T) {
	dump := fmt.Sprintf("[error] %s.000000Z couchdb@db1 <0.99.0> -------- %s",
		record.FormatTime(t0+149, time.UTC), strings.Repeat("y", 2<<20))
	noise := func(i int) string {
		if i == 150 {
			return dump
		}
		return ""
	}
	f := buildLog(perSecond(300), noise)
	l := newLocator(f)

	for _, i := range []int{0, 100, 149, 150, 151, 200, 299} {
		offset, err := l.Locate(context.Background(), f.stamps[i])
		require.NoError(t, err, "record %d", i)
		assertCovers(t, f, offset, f.stamps[i])
	}

	first, last, err := l.Bounds(context.Background())
	require.NoError(t, err)
	assert.Equal(t, t0, first.Record.Timestamp)
	assert.Equal(t, t0+299, last.Record.Timestamp)
}

func TestLocate_TargetInGap(t *testing.T) {
	stamps := make([]int64, 100)
	for i := range stamps {
		stamps[i] = t0 + int64(2*i)
	}
	f := buildLog(stamps, nil)
	l := newLocator(f)

	for _, target := range []int64{t0 + 1, t0 + 51, t0 + 197} {
		offset, err := l.Locate(context.Background(), target)
		require.NoError(t, err)
		assertCovers(t, f, offset, target)
	}
}

func TestLocate_NotFound(t *testing.T) {
	f := buildLog(perSecond(20), nil)

	tests := []struct {
		name   string
		data   string
		target int64
	}{
		{"empty file", "", t0},
		{"no parsable records", "garbage\nmore garbage\n", t0},
		{"before first record", f.data, t0 - 1},
		{"after last record", f.data, t0 + 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(strings.NewReader(tt.data), int64(len(tt.data)), parser.NewCouchDB(time.UTC))
			_, err := l.Locate(context.Background(), tt.target)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestLocate_LastRecordWithoutTrailingNewline(t *testing.T) {
	f := buildLog(perSecond(30), nil)
	f.data = strings.TrimSuffix(f.data, "\n")

	offset, err := newLocator(f).Locate(context.Background(), t0+29)
	require.NoError(t, err)
	assertCovers(t, f, offset, t0+29)
}

func TestBounds(t *testing.T) {
	f := buildLog(perSecond(500), func(int) string { return "trailing noise" })
	f.data += "unparsable tail line\n"

	first, last, err := newLocator(f).Bounds(context.Background())
	require.NoError(t, err)
	require.True(t, first.Found)
	require.True(t, last.Found)
	assert.Equal(t, t0, first.Record.Timestamp)
	assert.Equal(t, t0+499, last.Record.Timestamp)
	assert.Equal(t, f.offsets[499], last.LineOffset)
}

func TestRecordAt(t *testing.T) {
	f := buildLog(perSecond(10), nil)
	l := newLocator(f)
	ctx := context.Background()

	p, err := l.RecordAt(ctx, f.offsets[3]+5)
	require.NoError(t, err)
	require.True(t, p.Found)
	assert.Equal(t, f.stamps[4], p.Record.Timestamp)
	assert.Equal(t, f.offsets[4], p.LineOffset)

	p, err = l.RecordAt(ctx, int64(len(f.data)))
	require.NoError(t, err)
	assert.False(t, p.Found)
	assert.False(t, p.Record.Parsed())
}

func TestLocate_OSFile(t *testing.T) {
	f := buildLog(perSecond(1000), nil)
	path := filepath.Join(t.TempDir(), "couch.log")
	require.NoError(t, os.WriteFile(path, []byte(f.data), 0o600))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	info, err := file.Stat()
	require.NoError(t, err)

	l := New(file, info.Size(), parser.NewCouchDB(time.UTC))
	offset, err := l.Locate(context.Background(), t0+100)
	require.NoError(t, err)
	assertCovers(t, f, offset, t0+100)
}

func TestLocate_Cancelled(t *testing.T) {
	f := buildLog(perSecond(10), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newLocator(f).Locate(ctx, t0+5)
	assert.ErrorIs(t, err, context.Canceled)
}
