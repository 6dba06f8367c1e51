/*
author: akashmaji
email: akashmaji@iisc.ac.in
file: go-redis-batch/internal/common/logger.go
*/
package common

// logger.go contains logging utilities for the batch engine and its CLI.
// It supports different log levels and formats log messages consistently
// across the application. Records are emitted through zap.

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log levels
const (
	INFO_  = "INFO"
	WARN_  = "WARN"
	ERROR_ = "ERROR"
	DEBUG_ = "DEBUG"
)

// Logger is a leveled logger with printf-style helpers.
type Logger struct {
	sugar *zap.SugaredLogger
	level zap.AtomicLevel
}

// NewLogger initializes and returns a new Logger writing to stderr at info level.
func NewLogger() *Logger {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stderr), level)
	return &Logger{
		sugar: zap.New(core).Sugar(),
		level: level,
	}
}

// NopLogger returns a Logger that discards everything. Tests use it.
func NopLogger() *Logger {
	return &Logger{
		sugar: zap.NewNop().Sugar(),
		level: zap.NewAtomicLevelAt(zapcore.FatalLevel),
	}
}

// SetLevel changes the minimum level ("debug", "info", "warn", "error").
func (l *Logger) SetLevel(level string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	l.level.SetLevel(lvl)
	return nil
}

// DebugEnabled reports whether debug records are emitted.
func (l *Logger) DebugEnabled() bool {
	return l.level.Enabled(zapcore.DebugLevel)
}

// With returns a child logger that adds the key-value pairs to every record.
func (l *Logger) With(kv ...interface{}) *Logger {
	return &Logger{sugar: l.sugar.With(kv...), level: l.level}
}

// Info logs an informational message.
func (l *Logger) Info(format string, v ...interface{}) {
	l.Printf(INFO_, format, v...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, v ...interface{}) {
	l.Printf(WARN_, format, v...)
}

// Error logs an error message.
func (l *Logger) Error(format string, v ...interface{}) {
	l.Printf(ERROR_, format, v...)
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, v ...interface{}) {
	l.Printf(DEBUG_, format, v...)
}

// Printf:
func (l *Logger) Printf(level string, format string, v ...interface{}) {
	switch level {
	case INFO_:
		l.sugar.Infof(format, v...)
	case WARN_:
		l.sugar.Warnf(format, v...)
	case ERROR_:
		l.sugar.Errorf(format, v...)
	case DEBUG_:
		l.sugar.Debugf(format, v...)
	default:
		l.sugar.Infof(format, v...)
	}
}

// Println:
func (l *Logger) Println(level string, v ...interface{}) {
	switch level {
	case INFO_:
		l.sugar.Infoln(v...)
	case WARN_:
		l.sugar.Warnln(v...)
	case ERROR_:
		l.sugar.Errorln(v...)
	case DEBUG_:
		l.sugar.Debugln(v...)
	default:
		l.sugar.Infoln(v...)
	}
}

// Sync flushes buffered records.
func (l *Logger) Sync() {
	_ = l.sugar.Sync()
}
