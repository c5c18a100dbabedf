package telemetry

import (
	"errors"
	"fmt"

	"github.com/grand-thief-cash/mlbeval/infra/application/core"
)

type Factory struct{}

func NewFactory() *Factory { return &Factory{} }

func (f *Factory) Create(cfg *Config) (core.Component, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("telemetry component disabled")
	}
	cfg.applyDefaults()
	if cfg.ServiceName == "" {
		return nil, errors.New("telemetry service_name must be set")
	}
	switch cfg.Exporter {
	case ExporterStdout:
	case ExporterOTLP:
		if cfg.OTLP == nil || cfg.OTLP.Endpoint == "" {
			return nil, errors.New("otlp exporter selected but otlp.endpoint empty")
		}
	default:
		return nil, fmt.Errorf("unsupported exporter: %s", cfg.Exporter)
	}
	return NewTelemetryComponent(cfg), nil
}
