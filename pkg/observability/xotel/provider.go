package xotel

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.40.0"
	"go.opentelemetry.io/otel/trace"
)

// 测试替换点
var (
	newOTLPExporter = func(ctx context.Context, opts ...otlptracehttp.Option) (sdktrace.SpanExporter, error) {
		return otlptracehttp.New(ctx, opts...)
	}
	newPrometheusReader = func(opts ...otelprom.Option) (sdkmetric.Reader, error) {
		return otelprom.New(opts...)
	}
)

// Option Provider 可选参数
type Option func(*options)

type options struct {
	syncExporters []sdktrace.SpanExporter
}

// WithSyncExporter 追加一个同步导出的 span exporter（调试或测试用）
func WithSyncExporter(exp sdktrace.SpanExporter) Option {
	return func(o *options) {
		if exp != nil {
			o.syncExporters = append(o.syncExporters, exp)
		}
	}
}

// Provider 持有 TracerProvider / MeterProvider 及其 Prometheus Registry
type Provider struct {
	tracerProvider  *sdktrace.TracerProvider
	meterProvider   *sdkmetric.MeterProvider
	registry        *prometheus.Registry
	propagator      propagation.TextMapPropagator
	shutdownTimeout time.Duration

	shutdownOnce sync.Once
	shutdownErr  error
}

// New 根据配置创建 Provider，调用方负责 Shutdown
func New(ctx context.Context, cfg Config, opts ...Option) (*Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := &options{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	res, err := newResource(cfg)
	if err != nil {
		return nil, err
	}

	tpOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.sampleRatio()))),
	}
	var exporter sdktrace.SpanExporter
	if cfg.OTLPEndpoint != "" {
		exporterOpts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.OTLPEndpoint)}
		if cfg.OTLPInsecure {
			exporterOpts = append(exporterOpts, otlptracehttp.WithInsecure())
		}
		if exporter, err = newOTLPExporter(ctx, exporterOpts...); err != nil {
			return nil, fmt.Errorf("%w: otlp: %w", ErrCreateExporter, err)
		}
	}
	for _, exp := range o.syncExporters {
		tpOpts = append(tpOpts, sdktrace.WithSyncer(exp))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	promReader, err := newPrometheusReader(otelprom.WithRegisterer(registry))
	if err != nil {
		// 设计决策: WithBatcher 一经调用就会启动后台 goroutine，因此推迟到
		// Prometheus reader 创建成功之后；在此之前 exporter 无人托管，失败时就地关闭。
		if exporter != nil {
			err = errors.Join(err, exporter.Shutdown(ctx))
		}
		return nil, fmt.Errorf("%w: prometheus: %w", ErrCreateExporter, err)
	}
	if exporter != nil {
		tpOpts = append(tpOpts, sdktrace.WithBatcher(exporter))
	}

	return &Provider{
		tracerProvider: sdktrace.NewTracerProvider(tpOpts...),
		meterProvider: sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(promReader),
		),
		registry: registry,
		propagator: propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
		shutdownTimeout: cfg.shutdownTimeout(),
	}, nil
}

func newResource(cfg Config) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{semconv.ServiceName(cfg.ServiceName)}
	if cfg.ServiceVersion != "" {
		attrs = append(attrs, semconv.ServiceVersion(cfg.ServiceVersion))
	}
	if cfg.Environment != "" {
		attrs = append(attrs, semconv.DeploymentEnvironmentName(cfg.Environment))
	}
	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(semconv.SchemaURL, attrs...))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCreateResource, err)
	}
	return res, nil
}

// TracerProvider 返回 TracerProvider
func (p *Provider) TracerProvider() trace.TracerProvider { return p.tracerProvider }

// MeterProvider 返回 MeterProvider
func (p *Provider) MeterProvider() metric.MeterProvider { return p.meterProvider }

// Propagator 返回 W3C traceparent + baggage 传播器
func (p *Provider) Propagator() propagation.TextMapPropagator { return p.propagator }

// MetricsHandler 返回 Prometheus 抓取端点
func (p *Provider) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// SetGlobal 安装为 otel 全局 provider 与传播器
func (p *Provider) SetGlobal() {
	otel.SetTracerProvider(p.tracerProvider)
	otel.SetMeterProvider(p.meterProvider)
	otel.SetTextMapPropagator(p.propagator)
}

// Shutdown 刷新并关闭两个 provider，重复调用返回首次结果
func (p *Provider) Shutdown(ctx context.Context) error {
	p.shutdownOnce.Do(func() {
		if ctx == nil {
			ctx = context.Background()
		}
		ctx, cancel := context.WithTimeout(ctx, p.shutdownTimeout)
		defer cancel()

		var errs []error
		if err := p.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("xotel: shutdown tracer provider: %w", err))
		}
		if err := p.meterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("xotel: shutdown meter provider: %w", err))
		}
		p.shutdownErr = errors.Join(errs...)
	})
	return p.shutdownErr
}
