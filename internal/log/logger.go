// Package log sets up the structured file logger.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Logger is a slog logger whose level can be changed after setup
type Logger struct {
	*slog.Logger
	level  *slog.LevelVar
	closer io.Closer
}

// Setup initializes a JSON logger appending to file. The terminal belongs
// to the TUI, so nothing is written to stdout or stderr.
func Setup(file, level string) (*Logger, error) {
	if strings.HasPrefix(file, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		file = filepath.Join(home, file[1:])
	}

	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	l := New(f, level)
	l.closer = f
	return l, nil
}

// New creates a JSON logger writing to w
func New(w io.Writer, level string) *Logger {
	lv := new(slog.LevelVar)
	lv.Set(ParseLevel(level))
	return &Logger{
		Logger: slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lv})),
		level:  lv,
	}
}

// SetLevel changes the minimum level at runtime
func (l *Logger) SetLevel(level string) {
	next := ParseLevel(level)
	if l.level.Level() == next {
		return
	}
	l.level.Set(next)
	l.Info("log level changed", "level", next.String())
}

// Level returns the current minimum level
func (l *Logger) Level() slog.Level { return l.level.Level() }

// Close closes the underlying file, if any
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// ParseLevel converts a string log level to slog.Level
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NullLogger returns a logger that discards all output
func NullLogger() *Logger {
	return New(io.Discard, "ERROR")
}
