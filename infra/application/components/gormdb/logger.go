package gormdb

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/grand-thief-cash/mlbeval/infra/application/components/logging"
)

// gormLogger 把 gorm 日志桥接到 logging 组件, 慢查询按 warn 输出
type gormLogger struct {
	logLevel      logger.LogLevel
	slowThreshold time.Duration
}

func newGormLogger(cfg *Config) logger.Interface {
	l := &gormLogger{logLevel: logger.Warn, slowThreshold: 200 * time.Millisecond}
	if cfg == nil {
		return l
	}
	switch strings.ToLower(cfg.LogLevel) {
	case "silent":
		l.logLevel = logger.Silent
	case "error":
		l.logLevel = logger.Error
	case "warn", "warning":
		l.logLevel = logger.Warn
	case "info", "debug":
		l.logLevel = logger.Info
	}
	if cfg.SlowThreshold > 0 {
		l.slowThreshold = cfg.SlowThreshold
	}
	return l
}

func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	nl := *l
	nl.logLevel = level
	return &nl
}

func (l *gormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.logLevel >= logger.Info {
		logging.Infof(ctx, "[gorm] "+msg, data...)
	}
}

func (l *gormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.logLevel >= logger.Warn {
		logging.Warnf(ctx, "[gorm] "+msg, data...)
	}
}

func (l *gormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.logLevel >= logger.Error {
		logging.Errorf(ctx, "[gorm] "+msg, data...)
	}
}

func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.logLevel <= logger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.logLevel >= logger.Error:
		sql, rows := fc()
		logging.Error(ctx, "gorm query failed", zap.Duration("elapsed", elapsed), zap.Int64("rows", rows), zap.String("sql", sql), zap.Error(err))
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.logLevel >= logger.Warn:
		sql, rows := fc()
		logging.Warn(ctx, "gorm slow query", zap.Duration("elapsed", elapsed), zap.Duration("threshold", l.slowThreshold), zap.Int64("rows", rows), zap.String("sql", sql))
	case l.logLevel >= logger.Info:
		sql, rows := fc()
		logging.Debug(ctx, "gorm query", zap.Duration("elapsed", elapsed), zap.Int64("rows", rows), zap.String("sql", sql))
	}
}
