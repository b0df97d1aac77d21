package aggregator

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccollicutt/logstat/pkg/parser"
	"github.com/ccollicutt/logstat/pkg/record"
)

var t0 = time.Date(2019, 3, 21, 10, 0, 0, 0, time.UTC).Unix()

func stamp(ts int64) string {
	return record.FormatTime(ts, time.UTC) + ".000000Z"
}

func request(ts int64, method, url string) string {
	return fmt.Sprintf("[info] %s couchdb@db1 <0.1.0> 0a1b2c3d db1:5984 10.0.0.1 admin %s %s 200 ok 3", stamp(ts), method, url)
}

func system(ts int64, msg string) string {
	return fmt.Sprintf("[notice] %s couchdb@db1 <0.31.0> -------- %s", stamp(ts), msg)
}

func trace(ts int64) string {
	return fmt.Sprintf("[error] %s couchdb@db1 <0.99.0> 5e6f7a8b {badmatch,{error,enoent}} in couch_file:open/2", stamp(ts))
}

func stream(t *testing.T, opts Options, lines ...string) (*Result, string) {
	t.Helper()
	var out bytes.Buffer
	a := New(parser.NewCouchDB(time.UTC), &out, opts)
	res, err := a.Stream(context.Background(), strings.NewReader(strings.Join(lines, "\n")+"\n"))
	require.NoError(t, err)
	return res, out.String()
}

func TestStream_PassThrough(t *testing.T) {
	lines := []string{
		request(t0, "GET", "/a"),
		"    continuation without header",
		system(t0+1, "started"),
		trace(t0+2),
		request(t0+3, "PUT", "/b"),
	}
	res, out := stream(t, Options{Start: t0, End: t0 + 10}, lines...)

	want := strings.Join([]string{lines[0], lines[2], lines[3], lines[4]}, "\n") + "\n"
	assert.Equal(t, want, out)
	assert.Equal(t, 5, res.LinesRead)
	assert.Equal(t, 4, res.LinesWritten)
	assert.Equal(t, 0, res.Groups.Len())
	assert.False(t, res.StoppedAtEnd)
}

func TestStream_StopsAtEnd(t *testing.T) {
	lines := []string{
		request(t0, "GET", "/a"),
		request(t0+1, "GET", "/a"),
		request(t0+2, "GET", "/a"),
		request(t0+1, "GET", "/late"),
	}
	res, out := stream(t, Options{Start: t0, End: t0 + 1}, lines...)

	assert.Equal(t, lines[0]+"\n"+lines[1]+"\n", out)
	assert.True(t, res.StoppedAtEnd)
	assert.Equal(t, 3, res.LinesRead, "the first record past the end halts further reads")
	assert.NotContains(t, out, "/late")
}

func TestStream_SkipsBeforeStart(t *testing.T) {
	lines := []string{
		request(t0-2, "GET", "/early"),
		request(t0-1, "GET", "/early"),
		request(t0, "GET", "/a"),
	}
	res, _ := stream(t, Options{Start: t0, End: t0 + 5, Group: true}, lines...)

	assert.Equal(t, uint64(1), res.Groups.Count("GET /a"))
	assert.Equal(t, uint64(0), res.Groups.Count("GET /early"))
}

func TestStream_Grouping(t *testing.T) {
	lines := []string{
		request(t0, "GET", "/db/doc?rev=1"),
		system(t0, "compaction started"),
		request(t0+1, "GET", "/db/doc?rev=2"),
		trace(t0+1),
		request(t0+2, "PUT", "/db/doc"),
		request(t0+2, "GET", "/db/doc?rev=1"),
	}

	t.Run("full url", func(t *testing.T) {
		res, out := stream(t, Options{Start: t0, End: t0 + 5, Group: true}, lines...)
		assert.Equal(t, uint64(2), res.Groups.Count("GET /db/doc?rev=1"))
		assert.Equal(t, uint64(1), res.Groups.Count("GET /db/doc?rev=2"))
		assert.Equal(t, uint64(1), res.Groups.Count("PUT /db/doc"))
		assert.Equal(t, 4, res.RecordsCounted)
		assert.Equal(t, lines[1]+"\n"+lines[3]+"\n", out, "non-request lines pass through")
	})

	t.Run("no query params", func(t *testing.T) {
		res, _ := stream(t, Options{Start: t0, End: t0 + 5, Group: true, NoQueryParams: true}, lines...)
		assert.Equal(t, uint64(3), res.Groups.Count("GET /db/doc"))
		assert.Equal(t, 2, res.Groups.Len())
	})

	t.Run("http only", func(t *testing.T) {
		res, out := stream(t, Options{Start: t0, End: t0 + 5, Group: true, HTTPOnly: true}, lines...)
		assert.Empty(t, out)
		assert.Equal(t, 4, res.RecordsCounted)
	})

	t.Run("split on", func(t *testing.T) {
		res, _ := stream(t, Options{Start: t0, End: t0 + 5, Group: true, SplitOn: 1, NoQueryParams: true}, lines...)
		assert.Equal(t, uint64(4), res.Groups.Count("doc"))
		assert.Equal(t, 1, res.Groups.Len())
	})
}

func TestStream_OverlongLineSkipped(t *testing.T) {
	dump := system(t0+1, strings.Repeat("y", 3<<20))
	lines := []string{
		request(t0, "GET", "/a"),
		dump,
		request(t0+2, "GET", "/b"),
	}
	res, out := stream(t, Options{Start: t0, End: t0 + 10}, lines...)

	assert.Equal(t, lines[0]+"\n"+lines[2]+"\n", out)
	assert.Equal(t, 3, res.LinesRead)
	assert.Equal(t, 2, res.LinesWritten)
}

func TestStream_PreservesCRLF(t *testing.T) {
	lines := []string{
		request(t0, "GET", "/a") + "\r",
		system(t0+1, "started") + "\r",
	}
	_, out := stream(t, Options{Start: t0, End: t0 + 10}, lines...)

	assert.Equal(t, lines[0]+"\n"+lines[1]+"\n", out)
}

func TestStream_EndToEnd(t *testing.T) {
	lines := make([]string, 1000)
	for i := range lines {
		lines[i] = request(t0+int64(i), "GET", "/x")
	}
	res, out := stream(t, Options{Start: t0 + 100, End: t0 + 200, Group: true}, lines...)

	assert.Empty(t, out)
	assert.Equal(t, 1, res.Groups.Len())
	assert.Equal(t, uint64(101), res.Groups.Count("GET /x"))
}

func TestStream_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := New(parser.NewCouchDB(time.UTC), &bytes.Buffer{}, Options{Start: t0, End: t0})
	_, err := a.Stream(ctx, strings.NewReader(request(t0, "GET", "/a")))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCapacityHint(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want int
	}{
		{"pass-through", Options{Start: 0, End: 100}, 0},
		{"one minute", Options{Start: 0, End: 60, Group: true}, 60 * linesPerSecond},
		{"empty window", Options{Start: 5, End: 5, Group: true}, linesPerSecond},
		{"capped", Options{Start: 0, End: 1 << 40, Group: true}, maxCapacityHint},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New(parser.NewCouchDB(time.UTC), &bytes.Buffer{}, tt.opts)
			assert.Equal(t, tt.want, a.capacityHint())
		})
	}
}
