// Package logging builds the diagnostic logger used across logstat.
package logging

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

// DefaultLevel is used when the requested level cannot be parsed.
const DefaultLevel = logrus.WarnLevel

// New returns a logger writing to w at the given level. Colors are only
// enabled when w is a terminal.
func New(level string, w io.Writer) *logrus.Logger {
	if w == nil {
		w = os.Stderr
	}

	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
		DisableColors: !IsTerminal(w),
	})

	lvl, err := ParseLevel(level)
	logger.SetLevel(lvl)
	if err != nil {
		logger.WithError(err).Warn("couldn't parse log level, using warning")
	}
	return logger
}

// ParseLevel parses a logrus level name. An empty name yields DefaultLevel
// without error.
func ParseLevel(level string) (logrus.Level, error) {
	if level == "" {
		return DefaultLevel, nil
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return DefaultLevel, err
	}
	return lvl, nil
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
