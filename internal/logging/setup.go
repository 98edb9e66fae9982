package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log formats accepted by Options.Format.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
	FormatText    = "text"
)

// Formats lists the accepted log formats.
var Formats = []string{FormatConsole, FormatJSON, FormatText}

// Options controls how the application logger is built.
type Options struct {
	// Level is a zerolog level name ("debug", "info", "warn", "error", "disabled").
	Level string
	// File, when set, routes logs to a size-rotated file instead of the fallback writer.
	File string
	// Format is one of Formats. Empty means console, or json when File is set.
	Format string
	// Component tags every entry.
	Component string
}

// Log file rotation limits.
const (
	MaxLogSizeMB  = 10
	MaxLogBackups = 3
	MaxLogAgeDays = 28
)

// Setup builds the application logger. The returned closer releases the log
// file and is never nil.
func Setup(opts Options, fallback io.Writer) (Logger, io.Closer, error) {
	level := zerolog.WarnLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(opts.Level)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	format := opts.Format
	if format == "" {
		format = FormatConsole
		if opts.File != "" {
			format = FormatJSON
		}
	}

	w := fallback
	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		if dir := filepath.Dir(opts.File); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
			}
		}
		rotating := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    MaxLogSizeMB,
			MaxBackups: MaxLogBackups,
			MaxAge:     MaxLogAgeDays,
		}
		w, closer = rotating, rotating
	}

	switch format {
	case FormatJSON:
		return NewLogger(w, opts.Component).WithLevel(level), closer, nil
	case FormatText:
		prefix := ""
		if opts.Component != "" {
			prefix = opts.Component + " "
		}
		return NewStdLoggerAdapter(log.New(w, prefix, log.LstdFlags|log.Lmsgprefix)).WithLevel(level), closer, nil
	case FormatConsole:
		return NewConsoleLogger(w, opts.Component).WithLevel(level), closer, nil
	}
	_ = closer.Close()
	return nil, nil, fmt.Errorf("invalid log format %q", opts.Format)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
