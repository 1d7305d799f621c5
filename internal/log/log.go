// Package log provides a structured logging wrapper around logrus.
package log

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger wraps logrus.Logger per dependency injection
type Logger struct {
	log *logrus.Logger
}

// New creates a new logger instance. The default level is Info; set
// LOG_LEVEL=trace or LOG_LEVEL=debug for more detail.
func New() *Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		ForceColors:     true,
	})
	l.SetLevel(parseLevel(os.Getenv("LOG_LEVEL")))

	return &Logger{log: l}
}

func parseLevel(level string) logrus.Level {
	switch level {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	default:
		return logrus.InfoLevel
	}
}

// SetLevel changes the log level at runtime
func (l *Logger) SetLevel(level string) {
	l.log.SetLevel(parseLevel(level))
}

// GetLogrus returns the underlying logrus instance for advanced uses
func (l *Logger) GetLogrus() *logrus.Logger {
	return l.log
}

// Trace logs trace-level messages
func (l *Logger) Trace(format string, v ...interface{}) {
	l.log.Tracef(format, v...)
}

// Debug logs debug messages
func (l *Logger) Debug(format string, v ...interface{}) {
	l.log.Debugf(format, v...)
}

// Info logs informational messages
func (l *Logger) Info(format string, v ...interface{}) {
	l.log.Infof(format, v...)
}

// InfoWithFields logs an info message with structured fields
func (l *Logger) InfoWithFields(fields logrus.Fields, format string, v ...interface{}) {
	l.log.WithFields(fields).Infof(format, v...)
}

// Warn logs warning messages
func (l *Logger) Warn(format string, v ...interface{}) {
	l.log.Warnf(format, v...)
}

// Error logs error messages
func (l *Logger) Error(format string, v ...interface{}) {
	l.log.Errorf(format, v...)
}

// ErrorWithFields logs an error message with structured fields
func (l *Logger) ErrorWithFields(fields logrus.Fields, format string, v ...interface{}) {
	l.log.WithFields(fields).Errorf(format, v...)
}

// Fatal logs an error message and exits
func (l *Logger) Fatal(format string, v ...interface{}) {
	l.log.Fatalf(format, v...)
}

// WithFields creates an entry with structured fields
func (l *Logger) WithFields(fields logrus.Fields) *logrus.Entry {
	return l.log.WithFields(fields)
}
