package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/fadedpez/cccounter/internal/types"
)

// Level represents a logging level
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var levelNames = map[Level]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
}

// ParseLevel maps a LOG_LEVEL value to a Level, defaulting to INFO
func ParseLevel(s string) Level {
	for level, name := range levelNames {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			return level
		}
	}
	return INFO
}

// String returns the level name
func (l Level) String() string {
	return levelNames[l]
}

// Logger wraps log.Logger with levels and caller info
type Logger struct {
	*log.Logger
	level Level
}

// NewLogger creates a new logger writing to stdout
func NewLogger(level Level) *Logger {
	return NewLoggerTo(os.Stdout, level)
}

// NewLoggerTo creates a new logger writing to w
func NewLoggerTo(w io.Writer, level Level) *Logger {
	return &Logger{
		Logger: log.New(w, "", 0),
		level:  level,
	}
}

// SetLevel changes the minimum level that gets written
func (l *Logger) SetLevel(level Level) {
	l.level = level
}

// formatMessage formats a log message with timestamp, level, and caller info
func (l *Logger) formatMessage(level Level, msg string) string {
	_, file, line, ok := runtime.Caller(3)
	caller := "unknown"
	if ok {
		caller = fmt.Sprintf("%s:%d", filepath.Base(file), line)
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05.000")

	return fmt.Sprintf("[%s] %-5s %s: %s",
		timestamp,
		levelNames[level],
		caller,
		msg,
	)
}

func (l *Logger) logf(level Level, format string, v ...interface{}) {
	if l.level > level {
		return
	}
	l.Output(3, l.formatMessage(level, fmt.Sprintf(format, v...)))
}

// Debug logs a debug message
func (l *Logger) Debug(format string, v ...interface{}) {
	l.logf(DEBUG, format, v...)
}

// Info logs an info message
func (l *Logger) Info(format string, v ...interface{}) {
	l.logf(INFO, format, v...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, v ...interface{}) {
	l.logf(WARN, format, v...)
}

// Error logs an error message
func (l *Logger) Error(format string, v ...interface{}) {
	l.logf(ERROR, format, v...)
}

// LogError logs an error, expanding GameError context when present.
// Contract violations from the scoring core are logged at WARN since they
// come from user input; everything else is an ERROR.
func (l *Logger) LogError(err error) {
	var gameErr *types.GameError
	if !types.As(err, &gameErr) {
		l.logf(ERROR, "Unexpected error: %v", err)
		return
	}

	context := []string{
		fmt.Sprintf("Code: %s", gameErr.Code),
		fmt.Sprintf("Message: %s", gameErr.Message),
	}
	if gameErr.Err != nil {
		context = append(context, fmt.Sprintf("Cause: %v", gameErr.Err))
	}

	switch gameErr.Code {
	case types.ErrInvalidInput, types.ErrInvalidState, types.ErrInvalidArgument, types.ErrGameNotFound:
		l.logf(WARN, "Rejected request:\n\t%s", strings.Join(context, "\n\t"))
	default:
		l.logf(ERROR, "Game error occurred:\n\t%s", strings.Join(context, "\n\t"))
	}
}

// Default logger instance
var Default = NewLogger(INFO)
