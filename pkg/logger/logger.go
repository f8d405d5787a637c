package logger

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the logging interface used by the library.
type Logger interface {
	Info(msg string, obj any)
	Warn(msg string, obj any)
	Debug(msg string, obj any)
	Error(msg string, obj any)
}

// NopLogger discards all log messages.
type NopLogger struct{}

func (NopLogger) Info(string, any)  {}
func (NopLogger) Warn(string, any)  {}
func (NopLogger) Debug(string, any) {}
func (NopLogger) Error(string, any) {}

type zerologLogger struct {
	zl zerolog.Logger
}

// NewWriterLogger builds a human-readable logger that writes to an io.Writer.
func NewWriterLogger(w io.Writer, level string) Logger {
	if w == nil {
		return NopLogger{}
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	return NewZerologLogger(zerolog.New(out).Level(ParseLevel(level)).With().Timestamp().Logger())
}

// NewZerologLogger adapts an existing zerolog.Logger.
func NewZerologLogger(zl zerolog.Logger) Logger {
	return zerologLogger{zl: zl}
}

// ParseLevel maps a config string to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func (l zerologLogger) write(event *zerolog.Event, msg string, obj any) {
	switch v := obj.(type) {
	case nil:
	case map[string]any:
		event = event.Fields(v)
	case error:
		event = event.Err(v)
	default:
		event = event.Interface("obj", v)
	}
	event.Msg(msg)
}

func (l zerologLogger) Info(msg string, obj any)  { l.write(l.zl.Info(), msg, obj) }
func (l zerologLogger) Warn(msg string, obj any)  { l.write(l.zl.Warn(), msg, obj) }
func (l zerologLogger) Debug(msg string, obj any) { l.write(l.zl.Debug(), msg, obj) }
func (l zerologLogger) Error(msg string, obj any) { l.write(l.zl.Error(), msg, obj) }

// Debug writes a debug log when enabled and logger is non-nil.
func Debug(enabled bool, logger Logger, msg string, obj any) {
	if !enabled || logger == nil {
		return
	}
	logger.Debug(msg, obj)
}

// Debugf is a compatibility helper for format-style debug logging.
func Debugf(enabled bool, logger Logger, format string, args ...any) {
	Debug(enabled, logger, fmt.Sprintf(format, args...), nil)
}

// Info writes an info log when logger is non-nil.
func Info(logger Logger, msg string, obj any) {
	if logger == nil {
		return
	}
	logger.Info(msg, obj)
}

// Warn writes a warning log when logger is non-nil.
func Warn(logger Logger, msg string, obj any) {
	if logger == nil {
		return
	}
	logger.Warn(msg, obj)
}

// Error writes an error log when logger is non-nil.
func Error(logger Logger, msg string, obj any) {
	if logger == nil {
		return
	}
	logger.Error(msg, obj)
}
