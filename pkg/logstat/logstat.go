// Package logstat ties the locator and the aggregator together: it opens a
// log file, finds where the requested window starts and streams it.
package logstat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/ccollicutt/logstat/pkg/aggregator"
	"github.com/ccollicutt/logstat/pkg/config"
	"github.com/ccollicutt/logstat/pkg/locator"
	"github.com/ccollicutt/logstat/pkg/parser"
)

// ErrOpen is returned, wrapped with the OS error, when the log file cannot
// be opened or inspected.
var ErrOpen = errors.New("cannot open log file")

// Run scans the file named by opts for the window [StartTime, EndTime] and
// writes pass-through lines to w. opts must have been validated.
//
// A start time that does not occur in the file yields an error matching
// locator.ErrNotFound; nothing is written in that case.
func Run(ctx context.Context, opts *config.Options, p parser.LineParser, w io.Writer, log logrus.FieldLogger) (*aggregator.Result, error) {
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}
	p = parser.WithLocation(p, opts.TimeLocation())

	f, err := os.Open(opts.FilePath) // #nosec G304 -- reading a user-selected log file is the point
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrOpen, opts.FilePath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrOpen, opts.FilePath, err)
	}
	size := info.Size()

	loc := locator.New(f, size, p,
		locator.WithBackOffWindow(opts.BackOffWindow),
		locator.WithLogger(log),
	)
	offset, err := loc.Locate(ctx, opts.StartTime())
	if err != nil {
		return nil, fmt.Errorf("locating %s: %w", opts.Start, err)
	}

	log.WithFields(logrus.Fields{
		"file":   opts.FilePath,
		"size":   size,
		"offset": offset,
	}).Debug("streaming from located offset")

	agg := aggregator.New(p, w, aggregator.Options{
		Start:         opts.StartTime(),
		End:           opts.EndTime(),
		Group:         opts.Group,
		HTTPOnly:      opts.HTTPOnly,
		NoQueryParams: opts.NoQueryParams,
		SplitOn:       opts.SplitOn,
	}, aggregator.WithLogger(log))

	result, err := agg.Stream(ctx, io.NewSectionReader(f, offset, size-offset))
	if err != nil {
		return result, fmt.Errorf("streaming %s: %w", opts.FilePath, err)
	}
	return result, nil
}
