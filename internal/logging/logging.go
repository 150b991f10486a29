// Package logging provides a tiny level-gated wrapper over the standard
// library logger, matching the log.Printf convention used throughout the
// rest of this codebase rather than pulling in a structured logging library.
package logging

import (
	"log"
	"os"
)

// Level is one of the six levels accepted by the CLI's --log-level flag.
type Level int

const (
	// Off disables all logging.
	Off Level = iota
	// Error logs only fatal-to-a-table and unexpected-failure conditions.
	Error
	// Warn additionally logs non-fatal structural warnings.
	Warn
	// Info additionally logs per-table progress.
	Info
	// Debug additionally logs per-batch pipeline detail.
	Debug
	// Trace additionally logs per-row detail; verbose, for diagnosing a
	// specific table.
	Trace
)

// ParseLevel maps the CLI's textual level to a Level. Unknown values default
// to Info, matching a sensible CLI default.
func ParseLevel(s string) Level {
	switch s {
	case "OFF":
		return Off
	case "ERROR":
		return Error
	case "WARN":
		return Warn
	case "INFO":
		return Info
	case "DEBUG":
		return Debug
	case "TRACE":
		return Trace
	default:
		return Info
	}
}

// Logger gates log.Printf calls behind a minimum level.
type Logger struct {
	level Level
	out   *log.Logger
}

// New returns a Logger writing to stderr with the standard flags, gated at
// level.
func New(level Level) *Logger {
	return &Logger{
		level: level,
		out:   log.New(os.Stderr, "", log.LstdFlags),
	}
}

func (l *Logger) log(level Level, format string, args ...any) {
	if l == nil || level > l.level {
		return
	}
	l.out.Printf(format, args...)
}

// Errorf logs at Error level.
func (l *Logger) Errorf(format string, args ...any) { l.log(Error, format, args...) }

// Warnf logs at Warn level.
func (l *Logger) Warnf(format string, args ...any) { l.log(Warn, format, args...) }

// Infof logs at Info level.
func (l *Logger) Infof(format string, args ...any) { l.log(Info, format, args...) }

// Debugf logs at Debug level.
func (l *Logger) Debugf(format string, args ...any) { l.log(Debug, format, args...) }

// Tracef logs at Trace level.
func (l *Logger) Tracef(format string, args ...any) { l.log(Trace, format, args...) }
