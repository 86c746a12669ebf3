// Package log provides structured logging for galua using zap.
package log

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger with galua-specific helpers.
type Logger struct {
	*zap.Logger
}

var (
	// L is the global logger instance. It stays nil until Init runs, so
	// library code guards every use with a nil check.
	L    *Logger
	once sync.Once
)

// Init initializes the global logger with the given configuration.
// Safe to call multiple times; only the first call takes effect.
func Init(debug bool) {
	once.Do(func() {
		L = New(debug)
	})
}

// New creates a new Logger instance.
func New(debug bool) *Logger {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}

	// Short "ts" key and ISO8601 timestamps in both modes
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		// Fallback to no-op if config fails
		logger = zap.NewNop()
	}

	return &Logger{Logger: logger}
}

// NewNop creates a no-op logger for testing.
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// BuiltinInstall logs when a builtin is installed into the global table.
func (l *Logger) BuiltinInstall(category, name string) {
	l.Debug("installed",
		zap.String("cat", category),
		zap.String("fn", name),
	)
}

// BuiltinCall logs a builtin invocation.
func (l *Logger) BuiltinCall(category, name, detail string) {
	l.Debug("builtin",
		zap.String("cat", category),
		zap.String("fn", name),
		zap.String("detail", detail),
	)
}

// WithCategory returns a logger with the category field preset.
func (l *Logger) WithCategory(category string) *Logger {
	return &Logger{Logger: l.Logger.With(zap.String("cat", category))}
}

// Field helpers for common patterns.

// Proto creates a field naming a prototype's source.
func Proto(source string) zap.Field {
	return zap.String("proto", source)
}

// Depth creates a call-depth field.
func Depth(d int) zap.Field {
	return zap.Int("depth", d)
}

// Op creates an opcode-name field.
func Op(name string) zap.Field {
	return zap.String("op", name)
}

// PC creates a program-counter field.
func PC(pc int) zap.Field {
	return zap.Int("pc", pc)
}

// Reg creates a register-index field.
func Reg(i int) zap.Field {
	return zap.Int("reg", i)
}
