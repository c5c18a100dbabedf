package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/grand-thief-cash/mlbeval/infra/application/components/http_server"
	"github.com/grand-thief-cash/mlbeval/infra/application/components/logging"
	"github.com/grand-thief-cash/mlbeval/infra/application/components/redis"
	"github.com/grand-thief-cash/mlbeval/infra/application/consts"
)

// Loader 配置加载器
type Loader struct {
	env        string
	configPath string
	bizConfig  any
	lookupEnv  func(string) (string, bool)
}

func NewLoader(env string, configPath string) *Loader {
	if env == "" {
		env = consts.ENV_DEVELOPMENT
	}
	if configPath == "" {
		configPath = consts.DEFAULT_CONFIG_PATH
	}
	return &Loader{env: env, configPath: configPath, lookupEnv: os.LookupEnv}
}

// SetBizConfig 注入业务配置结构指针, 需要在 LoadConfig 之前调用
func (l *Loader) SetBizConfig(b any) {
	if b == nil {
		return
	}
	if reflect.TypeOf(b).Kind() != reflect.Ptr {
		panic("SetBizConfig expects a pointer, e.g. &MyBizConfig{}")
	}
	l.bizConfig = b
}

// LoadConfig 先整体解析 AppConfig, 再把 biz_config 子树二次解码到业务指针,
// 最后合并 MLBEVAL_ 前缀的环境变量
func (l *Loader) LoadConfig() (*AppConfig, error) {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	ext := strings.ToLower(filepath.Ext(l.configPath))
	if err := unmarshal(ext, data, &cfg); err != nil {
		return nil, err
	}

	if l.bizConfig != nil {
		if cfg.BizConfig != nil {
			if err := decodeBizSection(ext, cfg.BizConfig, l.bizConfig); err != nil {
				return nil, fmt.Errorf("decode biz_config failed: %w", err)
			}
		}
		cfg.BizConfig = l.bizConfig
	}

	if cfg.APPInfo == nil {
		cfg.APPInfo = &APPInfo{}
	}
	if cfg.APPInfo.ENV == "" {
		cfg.APPInfo.ENV = l.env
	}

	l.mergeEnvVars(&cfg)
	return &cfg, nil
}

func unmarshal(ext string, data []byte, out any) error {
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config file format: %s", ext)
	}
	return nil
}

// decodeBizSection 重新序列化 biz_config 子树再解码到 target, target 中已有的默认值得以保留
func decodeBizSection(ext string, raw any, target any) error {
	var (
		b   []byte
		err error
	)
	if ext == ".json" {
		b, err = json.Marshal(raw)
	} else {
		b, err = yaml.Marshal(raw)
	}
	if err != nil {
		return fmt.Errorf("re-marshal biz_config failed: %w", err)
	}
	return unmarshal(ext, b, target)
}

// mergeEnvVars 环境变量覆盖:
//
//	MLBEVAL_HTTP_ADDRESS        http_server.address
//	MLBEVAL_LOG_LEVEL           logging.level
//	MLBEVAL_REDIS_ADDRESSES     redis.addresses (逗号分隔)
//	MLBEVAL_DB_DSN_<DATASOURCE> gorm.data_sources.<datasource>.dsn
func (l *Loader) mergeEnvVars(cfg *AppConfig) {
	if v, ok := l.lookup("HTTP_ADDRESS"); ok {
		if cfg.HTTPServer == nil {
			cfg.HTTPServer = &http_server.HTTPServerConfig{}
		}
		cfg.HTTPServer.Address = v
	}
	if v, ok := l.lookup("LOG_LEVEL"); ok {
		if cfg.Logging == nil {
			cfg.Logging = &logging.LoggingConfig{Enabled: true}
		}
		cfg.Logging.Level = v
	}
	if v, ok := l.lookup("REDIS_ADDRESSES"); ok {
		if cfg.Redis == nil {
			cfg.Redis = &redis.Config{}
		}
		cfg.Redis.Addresses = splitList(v)
	}
	if cfg.Gorm != nil {
		for name, ds := range cfg.Gorm.DataSources {
			if ds == nil {
				continue
			}
			if v, ok := l.lookup("DB_DSN_" + envKey(name)); ok {
				ds.DSN = v
			}
		}
	}
}

func (l *Loader) lookup(key string) (string, bool) {
	v, ok := l.lookupEnv(consts.ENV_PREFIX + key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func envKey(name string) string {
	return strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(name))
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
