package log

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	level    = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	loggerMu sync.RWMutex
	logger   = newLogger()
)

func newLogger() *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Level = level
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	cfg.DisableStacktrace = true
	l, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// SetLevel updates the minimum level accepted by the global logger.
// Supported levels are "debug", "info", "warn" and "error".
func SetLevel(name string) error {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "info":
		level.SetLevel(zapcore.InfoLevel)
	case "debug":
		level.SetLevel(zapcore.DebugLevel)
	case "warn", "warning":
		level.SetLevel(zapcore.WarnLevel)
	case "error":
		level.SetLevel(zapcore.ErrorLevel)
	default:
		return fmt.Errorf("unknown log level: %s", name)
	}
	return nil
}

// Logger returns the underlying zap logger.
func Logger() *zap.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

// ReplaceLogger installs a custom zap logger, typically an observer in tests.
func ReplaceLogger(l *zap.Logger) {
	if l == nil {
		panic("log: nil logger provided")
	}
	loggerMu.Lock()
	defer loggerMu.Unlock()
	logger = l
}

// Debug logs at debug level with alternating key/value pairs.
func Debug(ctx context.Context, msg string, keysAndValues ...any) {
	sugar(ctx).Debugw(msg, keysAndValues...)
}

// Info logs at info level with alternating key/value pairs.
func Info(ctx context.Context, msg string, keysAndValues ...any) {
	sugar(ctx).Infow(msg, keysAndValues...)
}

// Warn logs at warn level with alternating key/value pairs.
func Warn(ctx context.Context, msg string, keysAndValues ...any) {
	sugar(ctx).Warnw(msg, keysAndValues...)
}

// Error logs at error level with alternating key/value pairs.
func Error(ctx context.Context, msg string, keysAndValues ...any) {
	sugar(ctx).Errorw(msg, keysAndValues...)
}

func sugar(ctx context.Context) *zap.SugaredLogger {
	l := Logger()
	if ctx != nil {
		if id := middleware.GetReqID(ctx); id != "" {
			l = l.With(zap.String("request_id", id))
		}
	}
	return l.Sugar()
}

// Sync flushes buffered entries.
func Sync() error {
	return Logger().Sync()
}
