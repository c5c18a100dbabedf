package gormdb

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/grand-thief-cash/mlbeval/infra/application/components/logging"
	"github.com/grand-thief-cash/mlbeval/infra/application/consts"
	"github.com/grand-thief-cash/mlbeval/infra/application/core"
)

// GormComponent 管理多个命名的 gorm 连接 (postgres / mysql / sqlite)
type GormComponent struct {
	*core.BaseComponent
	cfg *Config
	mu  sync.RWMutex
	dbs map[string]*gorm.DB
	log logger.Interface
}

func NewGormComponent(cfg *Config) *GormComponent {
	return &GormComponent{
		BaseComponent: core.NewBaseComponent(consts.COMPONENT_GORM, consts.COMPONENT_LOGGING),
		cfg:           cfg,
		dbs:           make(map[string]*gorm.DB),
		log:           newGormLogger(cfg),
	}
}

func (c *GormComponent) Start(ctx context.Context) error {
	if err := c.BaseComponent.Start(ctx); err != nil {
		return err
	}
	if c.cfg == nil || !c.cfg.Enabled {
		return fmt.Errorf("gorm component disabled or nil config")
	}
	names := make([]string, 0, len(c.cfg.DataSources))
	for name := range c.cfg.DataSources {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		gdb, err := c.open(ctx, name, c.cfg.DataSources[name])
		if err != nil {
			c.closeAll(ctx)
			return err
		}
		c.mu.Lock()
		c.dbs[name] = gdb
		c.mu.Unlock()
	}
	logging.Info(ctx, "gorm component started", zap.Strings("data_sources", names))
	return nil
}

func (c *GormComponent) open(ctx context.Context, name string, ds *DataSourceConfig) (*gorm.DB, error) {
	if ds == nil {
		return nil, fmt.Errorf("datasource %s config is nil", name)
	}
	// 先迁移再建连接池, 迁移失败不留下半初始化的连接
	if ds.MigrateEnabled {
		begin := time.Now()
		version, source, err := runMigrations(ds)
		if err != nil {
			return nil, fmt.Errorf("gorm datasource %s migrations failed: %w", name, err)
		}
		logging.Info(ctx, "gorm migrations applied",
			zap.String("datasource", name),
			zap.String("source", source),
			zap.Uint("version", version),
			zap.Duration("dur", time.Since(begin)),
		)
	}

	dialector, err := openDialector(ds)
	if err != nil {
		return nil, fmt.Errorf("build dialector for %s failed: %w", name, err)
	}
	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 c.log,
		SkipDefaultTransaction: ds.SkipDefaultTransaction,
		PrepareStmt:            ds.PrepareStmt,
		TranslateError:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("open gorm %s db %s failed: %w", ds.Dialect, name, err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("get underlying sql.DB for %s failed: %w", name, err)
	}
	configurePool(sqlDB, ds)

	if ds.PingOnStart {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := sqlDB.PingContext(pingCtx); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("ping %s db %s failed: %w", ds.Dialect, name, err)
		}
	}
	logging.Info(ctx, "gorm datasource initialized", zap.String("datasource", name), zap.String("dialect", ds.Dialect))
	return gdb, nil
}

func configurePool(sqlDB *sql.DB, ds *DataSourceConfig) {
	maxOpen, maxIdle, maxLife := ds.MaxOpenConns, ds.MaxIdleConns, ds.ConnMaxLife
	if ds.Dialect == DialectSQLite {
		// sqlite 单写者; :memory: 每个连接是独立的库
		if maxOpen <= 0 {
			maxOpen = 1
		}
	}
	if maxOpen <= 0 {
		maxOpen = 50
	}
	if maxIdle <= 0 {
		maxIdle = 10
	}
	if maxIdle > maxOpen {
		maxIdle = maxOpen
	}
	if maxLife <= 0 {
		maxLife = 60 * time.Minute
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(maxLife)
	if ds.ConnMaxIdle > 0 {
		sqlDB.SetConnMaxIdleTime(ds.ConnMaxIdle)
	}
}

func (c *GormComponent) Stop(ctx context.Context) error {
	defer func() { _ = c.BaseComponent.Stop(ctx) }()
	c.closeAll(ctx)
	return nil
}

func (c *GormComponent) closeAll(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for name, gdb := range c.dbs {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
		logging.Info(ctx, "gorm datasource closed", zap.String("datasource", name))
		delete(c.dbs, name)
	}
}

func (c *GormComponent) HealthCheck() error {
	if err := c.BaseComponent.HealthCheck(); err != nil {
		return err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	for name, gdb := range c.dbs {
		sqlDB, err := gdb.DB()
		if err != nil {
			return fmt.Errorf("datasource %s get sql.DB failed: %w", name, err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err = sqlDB.PingContext(ctx)
		cancel()
		if err != nil {
			return fmt.Errorf("datasource %s ping failed: %w", name, err)
		}
	}
	return nil
}

func (c *GormComponent) GetDB(name string) (*gorm.DB, error) {
	c.mu.RLock()
	gdb, ok := c.dbs[name]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("gorm datasource %s not found", name)
	}
	return gdb, nil
}

func (c *GormComponent) GetSQLDB(name string) (*sql.DB, error) {
	gdb, err := c.GetDB(name)
	if err != nil {
		return nil, err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB for %s: %w", name, err)
	}
	return sqlDB, nil
}

// Dialect returns the configured dialect of a datasource, "" when unknown.
func (c *GormComponent) Dialect(name string) string {
	if c.cfg == nil {
		return ""
	}
	if ds, ok := c.cfg.DataSources[name]; ok && ds != nil {
		return ds.Dialect
	}
	return ""
}
