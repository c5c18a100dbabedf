package config

import (
	"errors"
	"fmt"

	"github.com/grand-thief-cash/mlbeval/infra/application/consts"
)

// Validator 配置验证器
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// bizValidator 业务配置可选实现, 用于填充默认值并校验
type bizValidator interface {
	Validate() error
}

func (v *Validator) ValidateAppConfig(cfg *AppConfig) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}
	var errs []error
	if cfg.APPInfo == nil || cfg.APPInfo.APPName == "" {
		errs = append(errs, errors.New("app_info.app_name is required"))
	}
	if cfg.Logging == nil || !cfg.Logging.Enabled {
		errs = append(errs, errors.New("logging must be enabled"))
	}
	if cfg.HTTPServer != nil && cfg.HTTPServer.Enabled && (cfg.Gorm == nil || !cfg.Gorm.Enabled) {
		errs = append(errs, errors.New("http_server requires gorm to be enabled"))
	}
	if bv, ok := cfg.BizConfig.(bizValidator); ok {
		if err := bv.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("biz_config: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (v *Validator) validateConfigFilePath(env string, path string) error {
	if path == "" {
		return fmt.Errorf("config file path cannot be empty")
	}
	if len(path) > 255 {
		return fmt.Errorf("config file path is too long")
	}
	if !fileExists(path) {
		return fmt.Errorf("config file does not exist: %s", path)
	}
	return v.validateEnv(env)
}

func (v *Validator) validateEnv(env string) error {
	switch env {
	case consts.ENV_DEVELOPMENT, consts.ENV_TEST, consts.ENV_PRODUCTION:
		return nil
	default:
		return fmt.Errorf("running environment is not valid: %s", env)
	}
}
