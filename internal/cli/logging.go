package cli

import (
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"
)

// logLevel maps the verbosity flags to a slog level.
func logLevel(opts *GlobalOptions) slog.Level {
	switch {
	case opts.Verbose:
		return slog.LevelDebug
	case opts.Quiet:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newLogger builds the diagnostic logger for a command and installs it as
// the slog default.
func newLogger(w io.Writer, color bool, opts *GlobalOptions) *slog.Logger {
	logger := slog.New(tint.NewHandler(w, &tint.Options{
		Level:      logLevel(opts),
		TimeFormat: time.TimeOnly,
		NoColor:    !color,
	}))
	slog.SetDefault(logger)
	return logger
}
