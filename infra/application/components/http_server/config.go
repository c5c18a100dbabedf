package http_server

import "time"

// HTTPServerConfig defines server settings.
type HTTPServerConfig struct {
	Enabled         bool          `yaml:"enabled" json:"enabled"`
	Address         string        `yaml:"address" json:"address"`                   // e.g. ":8080"
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout"`         // 读取整个请求 (header + body) 的上限
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout"`       // 写完响应的上限
	IdleTimeout     time.Duration `yaml:"idle_timeout" json:"idle_timeout"`         // keep-alive 空闲连接保持时间
	GracefulTimeout time.Duration `yaml:"graceful_timeout" json:"graceful_timeout"` // 关闭时等待在途请求的上限
	RequestTimeout  time.Duration `yaml:"request_timeout" json:"request_timeout"`   // 单个 handler 的 context 超时

	EnableHealth bool        `yaml:"enable_health" json:"enable_health"`
	CORS         *CORSConfig `yaml:"cors" json:"cors"`

	// ServiceName 由 APPInfo.APPName 注入, 不从 yaml 读取
	ServiceName string `yaml:"-" json:"-"`
}

type CORSConfig struct {
	Enabled          bool     `yaml:"enabled" json:"enabled"`
	AllowedOrigins   []string `yaml:"allowed_origins" json:"allowed_origins"`
	AllowedMethods   []string `yaml:"allowed_methods" json:"allowed_methods"`
	AllowedHeaders   []string `yaml:"allowed_headers" json:"allowed_headers"`
	ExposedHeaders   []string `yaml:"exposed_headers" json:"exposed_headers"`
	AllowCredentials bool     `yaml:"allow_credentials" json:"allow_credentials"`
	MaxAge           int      `yaml:"max_age" json:"max_age"` // seconds
}

func (c *HTTPServerConfig) applyDefaults() {
	if c.Address == "" {
		c.Address = ":8080"
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 15 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 15 * time.Second
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60 * time.Second
	}
	if c.GracefulTimeout == 0 {
		c.GracefulTimeout = 10 * time.Second
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 60 * time.Second
	}
	if c.CORS != nil && c.CORS.Enabled {
		if len(c.CORS.AllowedOrigins) == 0 {
			c.CORS.AllowedOrigins = []string{"*"}
		}
		if len(c.CORS.AllowedMethods) == 0 {
			c.CORS.AllowedMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
		}
		if len(c.CORS.AllowedHeaders) == 0 {
			c.CORS.AllowedHeaders = []string{"Accept", "Content-Type", "Authorization", "traceparent", "tracestate"}
		}
		if c.CORS.MaxAge == 0 {
			c.CORS.MaxAge = 300
		}
	}
}
