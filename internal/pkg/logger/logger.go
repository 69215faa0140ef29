// Package logger provides structured logging for the scenario planning
// engine.
//
// Uses zap with AtomicLevel for hot-reload support. JSON format for
// production, console for development. Unlike a server-only logger, this
// package is imported by library code (eventbus, engine) that may run
// before any explicit Init — L() falls back to a sane default logger
// instead of panicking, so a subscriber panic recovered deep inside the
// event bus always has somewhere to go.
package logger

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	global      *zap.Logger
	atomicLevel zap.AtomicLevel
	mu          sync.Mutex
	initialized bool
)

// Init initializes the global logger. Safe to call once explicitly before
// any library code has triggered the L() fallback; a no-op thereafter.
// level: debug, info, warn, error
// format: json or console
func Init(level, format string) error {
	mu.Lock()
	defer mu.Unlock()
	if initialized {
		return nil
	}
	if err := build(level, format); err != nil {
		return err
	}
	initialized = true
	return nil
}

func build(level, format string) error {
	atomicLevel = zap.NewAtomicLevel()
	if err := atomicLevel.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("parse log level %q: %w", level, err)
	}

	var cfg zap.Config
	switch format {
	case "console":
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = atomicLevel

	built, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	global = built
	return nil
}

// SetLevel dynamically changes the log level (hot-reload support).
func SetLevel(level string) error {
	return atomicLevel.UnmarshalText([]byte(level))
}

// GetLevel returns the current log level.
func GetLevel() zapcore.Level {
	return atomicLevel.Level()
}

// L returns the global logger, building a warn-level production default on
// first use if Init was never called.
func L() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	if !initialized {
		_ = build("warn", "json")
		initialized = true
	}
	return global
}

// S returns the global sugared logger.
func S() *zap.SugaredLogger {
	return L().Sugar()
}

func Debug(msg string, fields ...zap.Field) { L().Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { L().Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { L().Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { L().Error(msg, fields...) }
func Fatal(msg string, fields ...zap.Field) { L().Fatal(msg, fields...) }

// With creates a child logger with additional fields.
func With(fields ...zap.Field) *zap.Logger {
	return L().With(fields...)
}

// HTTPHandler returns the AtomicLevel so an admin endpoint can expose
// runtime log-level changes (zap AtomicLevel best practice).
func HTTPHandler() *zap.AtomicLevel {
	return &atomicLevel
}

// Sync flushes any buffered log entries.
func Sync() error {
	if global == nil {
		return nil
	}
	return global.Sync()
}
