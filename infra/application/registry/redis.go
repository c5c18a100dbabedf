package registry

import (
	"github.com/grand-thief-cash/mlbeval/infra/application/components/redis"
	"github.com/grand-thief-cash/mlbeval/infra/application/config"
	"github.com/grand-thief-cash/mlbeval/infra/application/consts"
	"github.com/grand-thief-cash/mlbeval/infra/application/core"
)

func init() {
	Register(consts.COMPONENT_REDIS, func(cfg *config.AppConfig, c *core.Container) (bool, core.Component, error) {
		if cfg.Redis == nil || !cfg.Redis.Enabled {
			return false, nil, nil
		}
		comp, err := redis.NewFactory().Create(cfg.Redis)
		if err != nil {
			return true, nil, err
		}
		return true, comp, nil
	})
}
