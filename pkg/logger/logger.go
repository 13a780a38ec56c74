// Package logger is a thin package-level facade over zap so call sites can
// log with key/value pairs without threading a logger through every type.
package logger

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Level       string
	Development bool
}

var (
	mu    sync.RWMutex
	sugar = zap.NewNop().Sugar()
)

// Init replaces the global logger. It is safe to call more than once.
func Init(cfg Config) error {
	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(parseLevel(cfg.Level, cfg.Development))

	l, err := zcfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}
	Set(l)
	return nil
}

// Set installs an already-built zap logger (tests use zaptest/observer).
func Set(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	sugar = l.Sugar()
}

func Sync() {
	_ = current().Sync()
}

func Debug(msg string, kv ...any) { current().Debugw(msg, kv...) }
func Info(msg string, kv ...any)  { current().Infow(msg, kv...) }
func Warn(msg string, kv ...any)  { current().Warnw(msg, kv...) }

// Error logs msg with err attached under the "error" key.
func Error(msg string, err error, kv ...any) {
	if err != nil {
		kv = append(kv, "error", err)
	}
	current().Errorw(msg, kv...)
}

func current() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

func parseLevel(level string, development bool) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	}
	if development {
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}
