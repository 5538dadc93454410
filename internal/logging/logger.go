package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARNING
	ERROR
	FATAL
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARNING:
		return "WARNING"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// Logger is a leveled logger with optional JSON output
type Logger struct {
	level      LogLevel
	out        io.Writer
	jsonFormat bool
	mu         sync.Mutex
}

// NewLogger creates a logger for the given level name. Unknown names
// default to INFO.
func NewLogger(level string) *Logger {
	return &Logger{
		level: parseLevel(level),
		out:   os.Stderr,
	}
}

func parseLevel(level string) LogLevel {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARNING":
		return WARNING
	case "ERROR":
		return ERROR
	case "FATAL":
		return FATAL
	default:
		return INFO
	}
}

// SetOutput redirects log output, primarily for tests
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = w
}

// SetJSONFormat switches between text and JSON output
func (l *Logger) SetJSONFormat(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.jsonFormat = enabled
}

func (l *Logger) shouldLog(level LogLevel) bool {
	return level >= l.level
}

func (l *Logger) log(level LogLevel, fields map[string]interface{}, format string, args ...interface{}) {
	if !l.shouldLog(level) {
		return
	}

	msg := fmt.Sprintf(format, args...)
	timestamp := time.Now().Format(time.RFC3339)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.jsonFormat {
		entry := map[string]string{
			"timestamp": timestamp,
			"level":     level.String(),
			"message":   msg,
		}
		for k, v := range fields {
			entry[k] = fmt.Sprintf("%v", v)
		}
		data, err := json.Marshal(entry)
		if err != nil {
			fmt.Fprintf(l.out, "%s [%s] %s\n", timestamp, level, msg)
			return
		}
		fmt.Fprintln(l.out, string(data))
		return
	}

	var fieldStr strings.Builder
	for k, v := range fields {
		fieldStr.WriteString(fmt.Sprintf(" %s=%v", k, v))
	}
	fmt.Fprintf(l.out, "%s [%s] %s%s\n", timestamp, level, msg, fieldStr.String())
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(DEBUG, nil, format, args...)
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(INFO, nil, format, args...)
}

// Warning logs a warning message
func (l *Logger) Warning(format string, args ...interface{}) {
	l.log(WARNING, nil, format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(ERROR, nil, format, args...)
}

// Fatal logs a fatal message and exits
func (l *Logger) Fatal(format string, args ...interface{}) {
	l.log(FATAL, nil, format, args...)
	os.Exit(1)
}

// FieldLogger attaches structured fields to every log line
type FieldLogger struct {
	logger *Logger
	fields map[string]interface{}
}

// WithFields returns a logger that includes the given fields
func (l *Logger) WithFields(fields map[string]interface{}) *FieldLogger {
	return &FieldLogger{logger: l, fields: fields}
}

// Debug logs a debug message with fields
func (fl *FieldLogger) Debug(format string, args ...interface{}) {
	fl.logger.log(DEBUG, fl.fields, format, args...)
}

// Info logs an informational message with fields
func (fl *FieldLogger) Info(format string, args ...interface{}) {
	fl.logger.log(INFO, fl.fields, format, args...)
}

// Warning logs a warning message with fields
func (fl *FieldLogger) Warning(format string, args ...interface{}) {
	fl.logger.log(WARNING, fl.fields, format, args...)
}

// Error logs an error message with fields
func (fl *FieldLogger) Error(format string, args ...interface{}) {
	fl.logger.log(ERROR, fl.fields, format, args...)
}
