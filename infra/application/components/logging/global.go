package logging

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

var (
	mu           sync.RWMutex
	globalLogger Logger = noopLogger{}
)

// noopLogger 在日志组件启动前兜底, 调用方无需判空
type noopLogger struct{}

func (noopLogger) Debug(context.Context, string, ...zap.Field) {}
func (noopLogger) Info(context.Context, string, ...zap.Field)  {}
func (noopLogger) Warn(context.Context, string, ...zap.Field)  {}
func (noopLogger) Error(context.Context, string, ...zap.Field) {}
func (noopLogger) Fatal(context.Context, string, ...zap.Field) {}
func (n noopLogger) With(...zap.Field) Logger                  { return n }
func (noopLogger) Sync() error                                 { return nil }

func SetGlobalLogger(l Logger) {
	if l == nil {
		return
	}
	mu.Lock()
	globalLogger = l
	mu.Unlock()
}

// ResetGlobalLogger puts the no-op logger back. Called when the component stops.
func ResetGlobalLogger() {
	mu.Lock()
	globalLogger = noopLogger{}
	mu.Unlock()
}

func L() Logger {
	mu.RLock()
	defer mu.RUnlock()
	return globalLogger
}

func Debug(ctx context.Context, msg string, fields ...zap.Field) { L().Debug(ctx, msg, fields...) }
func Info(ctx context.Context, msg string, fields ...zap.Field)  { L().Info(ctx, msg, fields...) }
func Warn(ctx context.Context, msg string, fields ...zap.Field)  { L().Warn(ctx, msg, fields...) }
func Error(ctx context.Context, msg string, fields ...zap.Field) { L().Error(ctx, msg, fields...) }
func Fatal(ctx context.Context, msg string, fields ...zap.Field) { L().Fatal(ctx, msg, fields...) }

func Debugf(ctx context.Context, format string, args ...interface{}) {
	L().Debug(ctx, fmt.Sprintf(format, args...))
}
func Infof(ctx context.Context, format string, args ...interface{}) {
	L().Info(ctx, fmt.Sprintf(format, args...))
}
func Warnf(ctx context.Context, format string, args ...interface{}) {
	L().Warn(ctx, fmt.Sprintf(format, args...))
}
func Errorf(ctx context.Context, format string, args ...interface{}) {
	L().Error(ctx, fmt.Sprintf(format, args...))
}
func Fatalf(ctx context.Context, format string, args ...interface{}) {
	L().Fatal(ctx, fmt.Sprintf(format, args...))
}

// UnderlyingZap exposes the *zap.Logger when the real component is installed.
func UnderlyingZap() *zap.Logger {
	if lc, ok := L().(*LoggerComponent); ok {
		return lc.GetZapLogger()
	}
	return nil
}
