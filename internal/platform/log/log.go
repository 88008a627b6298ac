// Package log provides the process-wide zap logger.
package log

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

var (
	mu         sync.RWMutex
	sugared    *zap.SugaredLogger
	baseLogger *zap.Logger
)

// Init initializes the package-level logger
func Init(debug bool) error {
	var zapLogger *zap.Logger
	var err error

	if debug {
		zapLogger, err = zap.NewDevelopment(zap.AddCallerSkip(1))
	} else {
		zapLogger, err = zap.NewProduction(zap.AddCallerSkip(1))
	}
	if err != nil {
		return fmt.Errorf("can't initialize zap logger: %w", err)
	}

	Set(zapLogger)
	return nil
}

// Set replaces the package-level logger. Tests use it with zap.NewNop or an
// observer core.
func Set(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	baseLogger = l
	sugared = l.Sugar()
}

// GetZapLogger returns the base zap logger
func GetZapLogger() *zap.Logger {
	mu.RLock()
	l := baseLogger
	mu.RUnlock()
	if l != nil {
		return l
	}

	// Fallback logger if not initialized
	fallback, err := zap.NewProduction(zap.AddCallerSkip(1))
	if err != nil {
		fallback = zap.NewNop()
	}
	Set(fallback)
	return fallback
}

func logger() *zap.SugaredLogger {
	mu.RLock()
	s := sugared
	mu.RUnlock()
	if s != nil {
		return s
	}
	return GetZapLogger().Sugar()
}

// Sync flushes any buffered log entries
func Sync() {
	_ = logger().Sync()
}

func Debugw(msg string, keysAndValues ...any) {
	logger().Debugw(msg, keysAndValues...)
}

func Infof(template string, args ...any) {
	logger().Infof(template, args...)
}

func Infow(msg string, keysAndValues ...any) {
	logger().Infow(msg, keysAndValues...)
}

func Warnw(msg string, keysAndValues ...any) {
	logger().Warnw(msg, keysAndValues...)
}

func Errorw(msg string, keysAndValues ...any) {
	logger().Errorw(msg, keysAndValues...)
}
