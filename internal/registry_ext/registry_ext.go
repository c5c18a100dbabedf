package registry_ext

import (
	"github.com/grand-thief-cash/mlbeval/infra/application/components/gormdb"
	"github.com/grand-thief-cash/mlbeval/infra/application/config"
	appconsts "github.com/grand-thief-cash/mlbeval/infra/application/consts"
	"github.com/grand-thief-cash/mlbeval/infra/application/core"
	"github.com/grand-thief-cash/mlbeval/infra/application/registry"
	"github.com/grand-thief-cash/mlbeval/internal/cache"
	bizConfig "github.com/grand-thief-cash/mlbeval/internal/config"
	"github.com/grand-thief-cash/mlbeval/internal/consts"
	"github.com/grand-thief-cash/mlbeval/internal/controller"
	"github.com/grand-thief-cash/mlbeval/internal/dao"
	"github.com/grand-thief-cash/mlbeval/internal/migrate"
	"github.com/grand-thief-cash/mlbeval/internal/service"
)

// 业务组件都依赖 player_dao, gorm 关闭时整体不注册
func gormEnabled(cfg *config.AppConfig) bool {
	return cfg.Gorm != nil && cfg.Gorm.Enabled
}

func init() {
	// 启动迁移 (migrate_enabled 且未配置 migrate_dir) 使用二进制内的脚本
	gormdb.RegisterEmbeddedMigrations(migrate.Scripts())

	registry.RegisterAuto(func(cfg *config.AppConfig, c *core.Container) (bool, core.Component, error) {
		if !gormEnabled(cfg) {
			return false, nil, nil
		}
		return true, dao.NewPlayerDao(bizConfig.GetBizConfig().Player.DataSource), nil
	})

	// redis 关闭时不注册, service 通过 dep:player_cache? 可选依赖
	registry.RegisterAuto(func(cfg *config.AppConfig, c *core.Container) (bool, core.Component, error) {
		if !gormEnabled(cfg) || cfg.Redis == nil || !cfg.Redis.Enabled {
			return false, nil, nil
		}
		p := bizConfig.GetBizConfig().Player
		return true, cache.NewPlayerCache(p.CachePrefix, p.CacheTTL), nil
	})

	registry.RegisterAuto(func(cfg *config.AppConfig, c *core.Container) (bool, core.Component, error) {
		return gormEnabled(cfg), service.NewPlayerService(bizConfig.GetBizConfig().Player), nil
	})
	registry.RegisterAuto(func(cfg *config.AppConfig, c *core.Container) (bool, core.Component, error) {
		return gormEnabled(cfg), service.NewTradeService(), nil
	})

	registry.RegisterAuto(func(cfg *config.AppConfig, c *core.Container) (bool, core.Component, error) {
		return gormEnabled(cfg), controller.NewPlayerController(), nil
	})
	registry.RegisterAuto(func(cfg *config.AppConfig, c *core.Container) (bool, core.Component, error) {
		return gormEnabled(cfg), controller.NewTradeController(), nil
	})

	// http_server 在 controller 之后启动, 路由注册时可以解析到它们
	registry.ExtendRuntimeDependencies(appconsts.COMPONENT_HTTP_SERVER, consts.COMP_CTRL_PLAYER, consts.COMP_CTRL_TRADE)
}
