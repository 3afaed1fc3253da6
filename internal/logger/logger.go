// Package logger builds the charmbracelet/log loggers used across the app.
package logger

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Options configure New.
type Options struct {
	Debug  bool
	Output io.Writer // defaults to stderr
}

// New creates a timestamped console logger.
func New(opts Options) *log.Logger {
	level := log.InfoLevel
	if opts.Debug {
		level = log.DebugLevel
	}
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	return log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		Level:           level,
	})
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// Component returns a child logger tagged with a component name.
func Component(l *log.Logger, name string) *log.Logger {
	if l == nil {
		l = Discard()
	}
	return l.With("component", name)
}
