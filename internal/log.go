package internal

import (
	"io"
	"log"
	"os"
	"strings"
)

// LogLevel represents different logging verbosity levels
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

// Logger provides leveled logging for the command line. Component logs
// written with the standard logger are shown from LogLevelInfo up.
type Logger struct {
	level LogLevel
	out   *log.Logger
	w     io.Writer
}

// NewLogger creates a logger writing to w at the given level
func NewLogger(level LogLevel, w io.Writer) *Logger {
	return &Logger{level: level, out: log.New(w, "", log.LstdFlags), w: w}
}

// NewDefaultLogger creates a stderr logger from EDUSTAT_LOG_LEVEL,
// defaulting to WARN
func NewDefaultLogger() *Logger {
	level, ok := ParseLogLevel(os.Getenv("EDUSTAT_LOG_LEVEL"))
	if !ok {
		level = LogLevelWarn
	}
	return NewLogger(level, os.Stderr)
}

// ParseLogLevel maps ERROR, WARN, INFO or DEBUG to a level
func ParseLogLevel(s string) (LogLevel, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return LogLevelError, true
	case "WARN":
		return LogLevelWarn, true
	case "INFO":
		return LogLevelInfo, true
	case "DEBUG":
		return LogLevelDebug, true
	}
	return LogLevelWarn, false
}

// SetLevel changes the verbosity
func (l *Logger) SetLevel(level LogLevel) {
	l.level = level
}

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	if l.level >= LogLevelError {
		l.out.Printf("[ERROR] "+format, args...)
	}
}

// Warn logs warning messages
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.level >= LogLevelWarn {
		l.out.Printf("[WARN] "+format, args...)
	}
}

// Info logs info messages
func (l *Logger) Info(format string, args ...interface{}) {
	if l.level >= LogLevelInfo {
		l.out.Printf("[INFO] "+format, args...)
	}
}

// Debug logs debug messages
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.level >= LogLevelDebug {
		l.out.Printf("[DEBUG] "+format, args...)
	}
}

// GetLevel returns the current log level
func (l *Logger) GetLevel() LogLevel {
	return l.level
}

// ComponentWriter is the destination for the standard logger: the
// logger's writer at INFO and above, io.Discard below
func (l *Logger) ComponentWriter() io.Writer {
	if l.level >= LogLevelInfo {
		return l.w
	}
	return io.Discard
}
