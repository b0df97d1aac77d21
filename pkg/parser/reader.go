package parser

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
)

const (
	initialLineBuffer = 16 * 1024
	maxLineSize       = 1024 * 1024 // 1MB max line size
)

// Line is a raw log line and its position in the underlying file.
type Line struct {
	// Text is the line content without the trailing '\n'. A '\r' before it
	// is kept so that lines can be written back byte for byte.
	Text string
	// Offset is the byte offset of the first byte of the line.
	Offset int64
	// Num is the 1-based line number relative to where reading started.
	Num int
	// Truncated is set when the line exceeded maxLineSize. Text then holds
	// only its first maxLineSize bytes and the line never parses.
	Truncated bool
}

// LineReader reads lines from a reader that starts at a known byte offset.
// Lines of any length are consumed; only the first maxLineSize bytes of a
// line are retained.
type LineReader struct {
	r    *bufio.Reader
	next int64
	num  int
}

// NewLineReader creates a LineReader over r. base is the file offset of the
// first byte r returns, so Line.Offset reports absolute positions.
func NewLineReader(r io.Reader, base int64) *LineReader {
	return &LineReader{
		r:    bufio.NewReaderSize(r, initialLineBuffer),
		next: base,
	}
}

// Next returns the next line.
// Returns io.EOF when the reader is exhausted.
func (r *LineReader) Next(ctx context.Context) (Line, error) {
	select {
	case <-ctx.Done():
		return Line{}, ctx.Err()
	default:
	}

	start := r.next
	var buf []byte
	truncated := false

	for {
		chunk, err := r.r.ReadSlice('\n')
		r.next += int64(len(chunk))

		if !truncated {
			// One extra byte leaves room for the newline.
			if room := maxLineSize + 1 - len(buf); len(chunk) > room {
				buf = append(buf, chunk[:room]...)
				truncated = true
			} else {
				buf = append(buf, chunk...)
			}
		}

		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if err == io.EOF {
			if r.next == start {
				return Line{}, io.EOF
			}
			break
		}
		if err != nil {
			return Line{}, fmt.Errorf("reading line at offset %d: %w", start, err)
		}
		break
	}

	if n := len(buf); !truncated && n > 0 && buf[n-1] == '\n' {
		buf = buf[:n-1]
	}
	if len(buf) > maxLineSize {
		buf = buf[:maxLineSize]
		truncated = true
	}
	r.num++
	return Line{
		Text:      string(buf),
		Offset:    start,
		Num:       r.num,
		Truncated: truncated,
	}, nil
}
