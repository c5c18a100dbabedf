package registry

import (
	"github.com/grand-thief-cash/mlbeval/infra/application/components/http_server"
	"github.com/grand-thief-cash/mlbeval/infra/application/config"
	"github.com/grand-thief-cash/mlbeval/infra/application/consts"
	"github.com/grand-thief-cash/mlbeval/infra/application/core"
)

func init() {
	Register(consts.COMPONENT_HTTP_SERVER, func(cfg *config.AppConfig, c *core.Container) (bool, core.Component, error) {
		if cfg.HTTPServer == nil || !cfg.HTTPServer.Enabled {
			return false, nil, nil
		}
		if cfg.APPInfo != nil {
			cfg.HTTPServer.ServiceName = cfg.APPInfo.APPName
		}
		comp, err := http_server.NewFactory(c).Create(cfg.HTTPServer)
		if err != nil {
			return true, nil, err
		}
		return true, comp, nil
	})
	// otelchi 需要 telemetry 先安装全局 TracerProvider; telemetry 未启用时该依赖被忽略
	ExtendRuntimeDependencies(consts.COMPONENT_HTTP_SERVER, consts.COMPONENT_TELEMETRY)
}
