package gormdb

import (
	"fmt"
	"strings"

	"github.com/grand-thief-cash/mlbeval/infra/application/core"
)

type Factory struct{}

func NewFactory() *Factory { return &Factory{} }

// Create expects *gormdb.Config.
func (f *Factory) Create(cfg interface{}) (core.Component, error) {
	gc, ok := cfg.(*Config)
	if !ok {
		return nil, fmt.Errorf("invalid config type for gorm component (need *gormdb.Config)")
	}
	if gc == nil || !gc.Enabled {
		return nil, fmt.Errorf("gorm component disabled")
	}
	if len(gc.DataSources) == 0 {
		return nil, fmt.Errorf("gorm component has no data_sources")
	}
	for name, ds := range gc.DataSources {
		if ds == nil {
			return nil, fmt.Errorf("gorm datasource %s config is nil", name)
		}
		ds.Dialect = strings.ToLower(strings.TrimSpace(ds.Dialect))
		if ds.Dialect == "" {
			ds.Dialect = DialectPostgres
		}
		switch ds.Dialect {
		case DialectPostgres, DialectMySQL, DialectSQLite:
		default:
			return nil, fmt.Errorf("gorm datasource %s: unsupported dialect %q", name, ds.Dialect)
		}
		if ds.MigrateEnabled && strings.TrimSpace(ds.MigrateDir) == "" && embeddedMigrations() == nil {
			return nil, fmt.Errorf("gorm datasource %s migrate_enabled=true but migrate_dir empty and no embedded migrations", name)
		}
	}
	return NewGormComponent(gc), nil
}
