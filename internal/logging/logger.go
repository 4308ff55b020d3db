package logging

import (
	"os"
	"sort"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Fields map[string]interface{}

var (
	mu     sync.RWMutex
	logger = newDefault()
)

func newDefault() *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.MessageKey = "msg"
	cfg.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	l, err := cfg.Build(zap.AddCallerSkip(2))
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// SetLogger replaces the process-wide logger. Tests use it to install
// zap.NewNop or an observer core.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	mu.Lock()
	logger = l
	mu.Unlock()
}

// SetLevel rebuilds the default logger at the given level ("debug", "info",
// "warn", "error"). Unknown levels are ignored.
func SetLevel(level string) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	l, err := cfg.Build(zap.AddCallerSkip(2))
	if err != nil {
		return
	}
	SetLogger(l)
}

func current() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func toZap(fields Fields) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	// stable field order keeps log lines diffable
	sort.Strings(keys)
	out := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		out = append(out, zap.Any(k, fields[k]))
	}
	return out
}

func output(level zapcore.Level, msg string, err error, fields Fields) {
	zf := toZap(fields)
	if err != nil {
		zf = append(zf, zap.Error(err))
	}
	if ce := current().Check(level, msg); ce != nil {
		ce.Write(zf...)
	}
}

// Info logs an informational message with optional fields.
func Info(msg string, fields Fields) {
	output(zapcore.InfoLevel, msg, nil, fields)
}

// Warn logs a recoverable problem.
func Warn(msg string, fields Fields) {
	output(zapcore.WarnLevel, msg, nil, fields)
}

// Error logs an error message and includes the error text in the fields.
func Error(msg string, err error, fields Fields) {
	output(zapcore.ErrorLevel, msg, err, fields)
}

// Fatal logs a fatal error and exits the process.
func Fatal(msg string, err error, fields Fields) {
	output(zapcore.ErrorLevel, msg, err, fields)
	_ = current().Sync()
	os.Exit(1)
}

// Sync flushes buffered log entries.
func Sync() {
	_ = current().Sync()
}
