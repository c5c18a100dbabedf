package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/grand-thief-cash/mlbeval/infra/application/components/logging"
	"github.com/grand-thief-cash/mlbeval/infra/application/consts"
	"github.com/grand-thief-cash/mlbeval/infra/application/core"
)

// TelemetryComponent 安装全局 TracerProvider / MeterProvider / propagator
type TelemetryComponent struct {
	*core.BaseComponent
	cfg       *Config
	tp        *sdktrace.TracerProvider
	mp        *sdkmetric.MeterProvider
	out       io.WriteCloser
	shutdowns []func(context.Context) error
}

func NewTelemetryComponent(cfg *Config) *TelemetryComponent {
	return &TelemetryComponent{
		BaseComponent: core.NewBaseComponent(consts.COMPONENT_TELEMETRY, consts.COMPONENT_LOGGING),
		cfg:           cfg,
	}
}

func (tc *TelemetryComponent) Start(ctx context.Context) error {
	if err := tc.BaseComponent.Start(ctx); err != nil {
		return err
	}

	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithProcess(),
		resource.WithHost(),
		resource.WithAttributes(semconv.ServiceName(tc.cfg.ServiceName)),
	)
	if err != nil {
		return fmt.Errorf("resource init: %w", err)
	}

	spanExp, metricExp, err := tc.newExporters(ctx)
	if err != nil {
		tc.shutdown(ctx)
		return err
	}

	tc.tp = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(spanExp),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(tc.cfg.SampleRatio))),
		sdktrace.WithResource(res),
	)
	tc.mp = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExp, sdkmetric.WithInterval(tc.cfg.MetricInterval))),
	)
	// 先关 provider 再关输出文件
	tc.shutdowns = append(tc.shutdowns, tc.mp.Shutdown, tc.tp.Shutdown)

	otel.SetTracerProvider(tc.tp)
	otel.SetMeterProvider(tc.mp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logging.Info(ctx, "telemetry component started",
		zap.String("exporter", string(tc.cfg.Exporter)),
		zap.Float64("sample_ratio", tc.cfg.SampleRatio),
		zap.String("service_name", tc.cfg.ServiceName),
	)
	return nil
}

func (tc *TelemetryComponent) newExporters(ctx context.Context) (sdktrace.SpanExporter, sdkmetric.Exporter, error) {
	switch tc.cfg.Exporter {
	case ExporterStdout:
		w, err := tc.stdoutWriter()
		if err != nil {
			return nil, nil, err
		}
		traceOpts := []stdouttrace.Option{stdouttrace.WithWriter(w)}
		if tc.cfg.StdoutPretty {
			traceOpts = append(traceOpts, stdouttrace.WithPrettyPrint())
		}
		spanExp, err := stdouttrace.New(traceOpts...)
		if err != nil {
			return nil, nil, fmt.Errorf("trace exporter init: %w", err)
		}
		metricExp, err := stdoutmetric.New(stdoutmetric.WithWriter(w))
		if err != nil {
			return nil, nil, fmt.Errorf("metric exporter init: %w", err)
		}
		return spanExp, metricExp, nil
	case ExporterOTLP:
		o := tc.cfg.OTLP
		traceOpts := []otlptracegrpc.Option{
			otlptracegrpc.WithEndpoint(o.Endpoint),
			otlptracegrpc.WithTimeout(o.Timeout),
			otlptracegrpc.WithHeaders(o.Headers),
			otlptracegrpc.WithDialOption(grpc.WithUserAgent(tc.cfg.ServiceName)),
		}
		metricOpts := []otlpmetricgrpc.Option{
			otlpmetricgrpc.WithEndpoint(o.Endpoint),
			otlpmetricgrpc.WithTimeout(o.Timeout),
			otlpmetricgrpc.WithHeaders(o.Headers),
			otlpmetricgrpc.WithDialOption(grpc.WithUserAgent(tc.cfg.ServiceName)),
		}
		if o.Insecure {
			traceOpts = append(traceOpts, otlptracegrpc.WithInsecure())
			metricOpts = append(metricOpts, otlpmetricgrpc.WithInsecure())
		}
		spanExp, err := otlptracegrpc.New(ctx, traceOpts...)
		if err != nil {
			return nil, nil, fmt.Errorf("trace exporter init: %w", err)
		}
		metricExp, err := otlpmetricgrpc.New(ctx, metricOpts...)
		if err != nil {
			_ = spanExp.Shutdown(ctx)
			return nil, nil, fmt.Errorf("metric exporter init: %w", err)
		}
		return spanExp, metricExp, nil
	default:
		return nil, nil, fmt.Errorf("unsupported exporter: %s", tc.cfg.Exporter)
	}
}

func (tc *TelemetryComponent) stdoutWriter() (io.Writer, error) {
	if tc.cfg.StdoutFile == "" {
		return os.Stdout, nil
	}
	if err := os.MkdirAll(filepath.Dir(tc.cfg.StdoutFile), 0755); err != nil {
		return nil, fmt.Errorf("create telemetry dir: %w", err)
	}
	f, err := os.OpenFile(tc.cfg.StdoutFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open telemetry stdout file: %w", err)
	}
	tc.out = f
	return f, nil
}

func (tc *TelemetryComponent) shutdown(ctx context.Context) error {
	var errs []error
	for _, fn := range tc.shutdowns {
		sctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := fn(sctx); err != nil {
			errs = append(errs, err)
		}
		cancel()
	}
	tc.shutdowns = nil
	if tc.out != nil {
		errs = append(errs, tc.out.Close())
		tc.out = nil
	}
	return errors.Join(errs...)
}

func (tc *TelemetryComponent) Stop(ctx context.Context) error {
	if !tc.IsActive() {
		return nil
	}
	err := tc.shutdown(ctx)
	if err != nil {
		logging.Warn(ctx, "telemetry shutdown error", zap.Error(err))
	} else {
		logging.Info(ctx, "telemetry stopped gracefully")
	}
	return errors.Join(err, tc.BaseComponent.Stop(ctx))
}

func (tc *TelemetryComponent) HealthCheck() error {
	if err := tc.BaseComponent.HealthCheck(); err != nil {
		return err
	}
	if tc.tp == nil || tc.mp == nil {
		return errors.New("telemetry providers not initialized")
	}
	return nil
}

func (tc *TelemetryComponent) Tracer(name string) trace.Tracer {
	if tc.tp == nil {
		return otel.Tracer(name)
	}
	return tc.tp.Tracer(name)
}
