// Package logging builds the console logger and the rotated error log.
package logging

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ParseLevel maps a config string to a log level, defaulting to info.
func ParseLevel(level string) log.Level {
	switch level {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// ParseFormatter maps a config string to a formatter, defaulting to text.
func ParseFormatter(format string) log.Formatter {
	switch format {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}

// New returns a logger writing to w.
func New(w io.Writer, level, format string) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           ParseLevel(level),
		Formatter:       ParseFormatter(format),
		ReportTimestamp: true,
		Prefix:          "waypoint",
	})
}

// NewConsole returns a logger writing to stderr.
func NewConsole(level, format string) *log.Logger {
	return New(os.Stderr, level, format)
}

// Discard returns a logger that drops everything. Used by tests and the TUI,
// where console output would corrupt the screen.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// ErrorLog appends errors to a size-rotated file.
type ErrorLog struct {
	sink   *lumberjack.Logger
	logger *log.Logger
}

func NewErrorLog(path string) *ErrorLog {
	sink := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    5, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}
	return &ErrorLog{
		sink: sink,
		logger: log.NewWithOptions(sink, log.Options{
			Level:           log.ErrorLevel,
			Formatter:       log.LogfmtFormatter,
			ReportTimestamp: true,
		}),
	}
}

// Record writes err under the given command name.
func (e *ErrorLog) Record(command string, err error) {
	if e == nil || err == nil {
		return
	}
	e.logger.Error("command failed", "command", command, "err", err)
}

func (e *ErrorLog) Close() error {
	if e == nil || e.sink == nil {
		return nil
	}
	return e.sink.Close()
}
