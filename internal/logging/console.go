package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// Options configures the leveled logger.
type Options struct {
	Level      string
	Format     string
	Timestamps bool
	Caller     bool
	Prefix     string
}

// ParseLevel parses a level name. Unknown names map to info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

// ParseFormatter parses a formatter name. Unknown names map to text.
func ParseFormatter(format string) log.Formatter {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}

// New returns a logger writing to w.
func New(w io.Writer, opts Options) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           ParseLevel(opts.Level),
		Formatter:       ParseFormatter(opts.Format),
		ReportTimestamp: opts.Timestamps,
		ReportCaller:    opts.Caller,
		Prefix:          opts.Prefix,
	})
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// Setup builds the process logger. With an empty baseDir it writes to
// stderr. Otherwise it writes JSON lines with timestamps to a new run log
// under baseDir, and the returned close function closes that file.
func Setup(stderr io.Writer, opts Options, baseDir, workDir string) (*log.Logger, func() error, error) {
	if baseDir == "" {
		return New(stderr, opts), func() error { return nil }, nil
	}
	run, err := NewRunLogger(baseDir, workDir)
	if err != nil {
		return nil, nil, fmt.Errorf("open run log: %w", err)
	}
	opts.Format = "json"
	opts.Timestamps = true
	logger := New(run.Writer(), opts)
	logger.Debug("run started", "run_id", run.RunID)
	return logger, run.Close, nil
}
