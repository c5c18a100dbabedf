package config

import (
	"github.com/grand-thief-cash/mlbeval/infra/application/components/gormdb"
	"github.com/grand-thief-cash/mlbeval/infra/application/components/http_server"
	"github.com/grand-thief-cash/mlbeval/infra/application/components/logging"
	"github.com/grand-thief-cash/mlbeval/infra/application/components/prometheus"
	"github.com/grand-thief-cash/mlbeval/infra/application/components/redis"
	"github.com/grand-thief-cash/mlbeval/infra/application/components/telemetry"
)

// AppConfig 应用程序配置结构
type AppConfig struct {
	APPInfo    *APPInfo                      `yaml:"app_info" json:"app_info"`
	Logging    *logging.LoggingConfig        `yaml:"logging" json:"logging"`
	Gorm       *gormdb.Config                `yaml:"gorm" json:"gorm"`
	Redis      *redis.Config                 `yaml:"redis" json:"redis"`
	Prometheus *prometheus.Config            `yaml:"prometheus" json:"prometheus"`
	Telemetry  *telemetry.Config             `yaml:"telemetry" json:"telemetry"`
	HTTPServer *http_server.HTTPServerConfig `yaml:"http_server" json:"http_server"`
	// BizConfig 业务配置, 加载后为 SetBizConfig 传入的指针
	BizConfig any `yaml:"biz_config" json:"biz_config"`
}

type APPInfo struct {
	APPName string `yaml:"app_name" json:"app_name"`
	ENV     string `yaml:"env" json:"env"`
}
