package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/grand-thief-cash/mlbeval/infra/application/consts"
	"github.com/grand-thief-cash/mlbeval/infra/application/core"
)

// 全局函数 -> 组件方法 -> logWithContext
const callerSkip = 3

type Logger interface {
	Debug(ctx context.Context, msg string, fields ...zap.Field)
	Info(ctx context.Context, msg string, fields ...zap.Field)
	Warn(ctx context.Context, msg string, fields ...zap.Field)
	Error(ctx context.Context, msg string, fields ...zap.Field)
	Fatal(ctx context.Context, msg string, fields ...zap.Field)
	With(fields ...zap.Field) Logger
	Sync() error
}

// LoggerComponent zap 日志组件, 启动后替换全局 logger
type LoggerComponent struct {
	*core.BaseComponent
	config    *LoggingConfig
	zapLogger *zap.Logger
	closer    io.Closer
}

func NewLoggerComponent(cfg *LoggingConfig) *LoggerComponent {
	return &LoggerComponent{
		BaseComponent: core.NewBaseComponent(consts.COMPONENT_LOGGING),
		config:        cfg,
	}
}

func (lc *LoggerComponent) Start(ctx context.Context) error {
	if err := lc.BaseComponent.Start(ctx); err != nil {
		return err
	}

	writeSyncer, err := lc.buildWriteSyncer()
	if err != nil {
		return fmt.Errorf("failed to create write syncer: %w", err)
	}

	lc.zapLogger = zap.New(
		zapcore.NewCore(lc.buildEncoder(), writeSyncer, ParseLevel(lc.config.Level)),
		zap.AddCaller(),
		zap.AddCallerSkip(callerSkip),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	SetGlobalLogger(lc)

	Info(ctx, "logger component started",
		zap.String("level", lc.config.Level),
		zap.String("format", lc.config.Format),
		zap.String("output", lc.config.Output),
	)
	return nil
}

func (lc *LoggerComponent) Stop(ctx context.Context) error {
	if lc.zapLogger != nil {
		Info(ctx, "logger component stopping")
		_ = lc.zapLogger.Sync()
	}
	ResetGlobalLogger()
	if lc.closer != nil {
		_ = lc.closer.Close()
	}
	return lc.BaseComponent.Stop(ctx)
}

func (lc *LoggerComponent) HealthCheck() error {
	if err := lc.BaseComponent.HealthCheck(); err != nil {
		return err
	}
	if lc.zapLogger == nil {
		return fmt.Errorf("zap logger is not initialized")
	}
	return nil
}

func (lc *LoggerComponent) buildEncoder() zapcore.Encoder {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	if strings.EqualFold(lc.config.Format, "console") {
		return zapcore.NewConsoleEncoder(encoderConfig)
	}
	return zapcore.NewJSONEncoder(encoderConfig)
}

func (lc *LoggerComponent) buildWriteSyncer() (zapcore.WriteSyncer, error) {
	switch strings.ToLower(lc.config.Output) {
	case "stdout", "":
		return zapcore.AddSync(os.Stdout), nil
	case "stderr":
		return zapcore.AddSync(os.Stderr), nil
	case "file":
		return lc.buildFileWriteSyncer()
	default:
		return lc.openAppend(lc.config.Output)
	}
}

// buildFileWriteSyncer 文件输出: 按间隔轮转 > lumberjack 按大小轮转 > 普通追加
func (lc *LoggerComponent) buildFileWriteSyncer() (zapcore.WriteSyncer, error) {
	fc := lc.config.FileConfig
	if fc == nil {
		return nil, fmt.Errorf("file config is required when output is 'file'")
	}
	if err := os.MkdirAll(fc.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	rc := lc.config.RotateConfig
	if rc != nil && rc.Enabled && rc.RotateInterval > 0 {
		w, err := newIntervalRotatingWriter(fc.Dir, fc.Filename, rc)
		if err != nil {
			return nil, err
		}
		lc.closer = w
		return zapcore.AddSync(w), nil
	}

	logFile := filepath.Join(fc.Dir, fc.Filename+".log")
	if rc != nil && rc.Enabled {
		lumber := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    rc.MaxSizeMB,
			MaxAge:     int(rc.MaxAge.Hours() / 24),
			MaxBackups: rc.MaxBackups,
			Compress:   true,
			LocalTime:  true,
		}
		lc.closer = lumber
		return zapcore.AddSync(lumber), nil
	}
	return lc.openAppend(logFile)
}

func (lc *LoggerComponent) openAppend(path string) (zapcore.WriteSyncer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	lc.closer = f
	return zapcore.AddSync(f), nil
}

// ParseLevel maps a config level name to zap. Unknown names fall back to info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return zapcore.DebugLevel
	case "WARN", "WARNING":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	case "FATAL":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func (lc *LoggerComponent) Debug(ctx context.Context, msg string, fields ...zap.Field) {
	lc.logWithContext(ctx, zapcore.DebugLevel, msg, fields...)
}

func (lc *LoggerComponent) Info(ctx context.Context, msg string, fields ...zap.Field) {
	lc.logWithContext(ctx, zapcore.InfoLevel, msg, fields...)
}

func (lc *LoggerComponent) Warn(ctx context.Context, msg string, fields ...zap.Field) {
	lc.logWithContext(ctx, zapcore.WarnLevel, msg, fields...)
}

func (lc *LoggerComponent) Error(ctx context.Context, msg string, fields ...zap.Field) {
	lc.logWithContext(ctx, zapcore.ErrorLevel, msg, fields...)
}

// Fatal 依赖 zap 内部的 os.Exit
func (lc *LoggerComponent) Fatal(ctx context.Context, msg string, fields ...zap.Field) {
	lc.logWithContext(ctx, zapcore.FatalLevel, msg, fields...)
}

func (lc *LoggerComponent) With(fields ...zap.Field) Logger {
	if lc.zapLogger == nil {
		return lc
	}
	return &LoggerComponent{
		BaseComponent: lc.BaseComponent,
		config:        lc.config,
		zapLogger:     lc.zapLogger.With(fields...),
	}
}

func (lc *LoggerComponent) Sync() error {
	if lc.zapLogger != nil {
		return lc.zapLogger.Sync()
	}
	return nil
}

// logWithContext 注入 trace 信息: 优先 OTel span, 其次 ContextWithTraceID 写入的本地 id
func (lc *LoggerComponent) logWithContext(ctx context.Context, level zapcore.Level, msg string, fields ...zap.Field) {
	if lc.zapLogger == nil {
		return
	}
	fields = withTraceFields(ctx, fields)
	if ce := lc.zapLogger.Check(level, msg); ce != nil {
		ce.Write(fields...)
	}
}

func withTraceFields(ctx context.Context, fields []zap.Field) []zap.Field {
	if ctx == nil || hasField(fields, consts.KEY_TraceID) {
		return fields
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() && sc.TraceID().IsValid() {
		return append([]zap.Field{
			zap.String(consts.KEY_TraceID, sc.TraceID().String()),
			zap.String(consts.KEY_SpanID, sc.SpanID().String()),
			zap.String(consts.KEY_TraceFlags, sc.TraceFlags().String()),
		}, fields...)
	}
	if id := TraceIDFromContext(ctx); id != "" {
		return append([]zap.Field{zap.String(consts.KEY_TraceID, id)}, fields...)
	}
	return fields
}

func hasField(fields []zap.Field, key string) bool {
	for _, f := range fields {
		if f.Key == key {
			return true
		}
	}
	return false
}

func (lc *LoggerComponent) GetZapLogger() *zap.Logger { return lc.zapLogger }
