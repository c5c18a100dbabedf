package registry

import (
	"github.com/grand-thief-cash/mlbeval/infra/application/components/gormdb"
	"github.com/grand-thief-cash/mlbeval/infra/application/config"
	"github.com/grand-thief-cash/mlbeval/infra/application/consts"
	"github.com/grand-thief-cash/mlbeval/infra/application/core"
)

func init() {
	Register(consts.COMPONENT_GORM, func(cfg *config.AppConfig, c *core.Container) (bool, core.Component, error) {
		if cfg.Gorm == nil || !cfg.Gorm.Enabled {
			return false, nil, nil
		}
		comp, err := gormdb.NewFactory().Create(cfg.Gorm)
		if err != nil {
			return true, nil, err
		}
		return true, comp, nil
	})
}
