package consts

const (
	ENV_PRODUCTION  = "production"
	ENV_DEVELOPMENT = "development"
	ENV_TEST        = "test"

	DEFAULT_CONFIG_PATH = "config/config.yaml"

	// ENV_PREFIX 环境变量覆盖配置时使用的前缀, 例如 MLBEVAL_HTTP_ADDRESS
	ENV_PREFIX = "MLBEVAL_"

	KEY_TraceID    = "trace_id"
	KEY_SpanID     = "span_id"
	KEY_TraceFlags = "trace_flags"
)
