package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// LogLevel selects the minimum severity the server logger emits.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

var levelNames = [...]string{
	LogLevelDebug: "debug",
	LogLevelInfo:  "info",
	LogLevelWarn:  "warn",
	LogLevelError: "error",
}

// String returns the string representation of the log level
func (l LogLevel) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return "unknown"
	}
	return levelNames[l]
}

var levelsByName = map[string]LogLevel{
	"debug":   LogLevelDebug,
	"info":    LogLevelInfo,
	"warn":    LogLevelWarn,
	"warning": LogLevelWarn,
	"error":   LogLevelError,
}

// parseLogLevel maps a level name (case-insensitive) to a LogLevel,
// falling back to info for anything unrecognized.
func parseLogLevel(level string) LogLevel {
	if lvl, ok := levelsByName[strings.ToLower(level)]; ok {
		return lvl
	}
	return LogLevelInfo
}

// ANSI colors per level, used only when stderr is a terminal.
var levelColors = map[LogLevel]string{
	LogLevelDebug: "\033[36m", // cyan
	LogLevelInfo:  "\033[32m", // green
	LogLevelWarn:  "\033[33m", // yellow
	LogLevelError: "\033[31m", // red
}

const colorReset = "\033[0m"

// Logger provides leveled logging for the server process.
type Logger struct {
	level LogLevel
	color bool
}

// NewLogger creates a new logger with the specified log level. Level tags
// are colorized when stderr is a terminal.
func NewLogger(level string) *Logger {
	return &Logger{
		level: parseLogLevel(level),
		color: isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()),
	}
}

func (l *Logger) tag(level LogLevel) string {
	tag := "[" + strings.ToUpper(level.String()) + "]"
	if l.color {
		return levelColors[level] + tag + colorReset
	}
	return tag
}

// logf is the single emit point; every leveled method funnels through it.
func (l *Logger) logf(level LogLevel, format string, v ...any) {
	if level < l.level {
		return
	}
	log.Printf(l.tag(level)+" "+format, v...)
}

// Debugf logs a debug message
func (l *Logger) Debugf(format string, v ...any) { l.logf(LogLevelDebug, format, v...) }

// Infof logs an info message
func (l *Logger) Infof(format string, v ...any) { l.logf(LogLevelInfo, format, v...) }

// Warnf logs a warning message
func (l *Logger) Warnf(format string, v ...any) { l.logf(LogLevelWarn, format, v...) }

// Errorf logs an error message
func (l *Logger) Errorf(format string, v ...any) { l.logf(LogLevelError, format, v...) }

// Fatalf logs an error message and exits
func (l *Logger) Fatalf(format string, v ...any) {
	log.Fatalf("[FATAL] "+format, v...)
}

// Info logs an info message from plain values
func (l *Logger) Info(v ...any) { l.logf(LogLevelInfo, "%s", fmt.Sprint(v...)) }

// Error logs an error message from plain values
func (l *Logger) Error(v ...any) { l.logf(LogLevelError, "%s", fmt.Sprint(v...)) }
