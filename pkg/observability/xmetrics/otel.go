package xmetrics

import (
	"context"
	"fmt"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	defaultInstrumentationName = "github.com/omeyang/xtracekit/xmetrics"
	unknownRoute               = "unknown"

	MetricRequestTotal    = "http.server.request.total"
	MetricRequestDuration = "http.server.request.duration"

	AttrMethod      = "http.request.method"
	AttrRoute       = "http.route"
	AttrStatusCode  = "http.response.status_code"
	AttrStatusClass = "http.status_class"
	AttrPanic       = "panic"
)

type otelConfig struct {
	instrumentationName string
	meterProvider       metric.MeterProvider
}

// Option OTel Recorder 配置选项
type Option func(*otelConfig)

// WithInstrumentationName 设置 instrumentation 名称，空值被忽略
func WithInstrumentationName(name string) Option {
	return func(cfg *otelConfig) {
		if name != "" {
			cfg.instrumentationName = name
		}
	}
}

// WithMeterProvider 设置 MeterProvider，nil 使用全局 provider
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(cfg *otelConfig) {
		if provider != nil {
			cfg.meterProvider = provider
		}
	}
}

type otelRecorder struct {
	total    metric.Int64Counter
	duration metric.Float64Histogram
}

// NewOTelRecorder 创建基于 OpenTelemetry 的 Recorder
func NewOTelRecorder(opts ...Option) (Recorder, error) {
	cfg := &otelConfig{
		instrumentationName: defaultInstrumentationName,
		meterProvider:       otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	meter := cfg.meterProvider.Meter(cfg.instrumentationName)

	total, err := meter.Int64Counter(
		MetricRequestTotal,
		metric.WithDescription("total HTTP requests"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCreateInstrument, err)
	}

	duration, err := meter.Float64Histogram(
		MetricRequestDuration,
		metric.WithDescription("HTTP request duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCreateInstrument, err)
	}

	return &otelRecorder{total: total, duration: duration}, nil
}

// Record 使用不可取消的 context 记录，请求超时或客户端断开时仍能计入
func (r *otelRecorder) Record(ctx context.Context, info RequestInfo) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithoutCancel(ctx)

	set := metric.WithAttributeSet(attribute.NewSet(requestAttrs(info)...))
	r.total.Add(ctx, 1, set)
	r.duration.Record(ctx, info.Duration.Seconds(), set)
}

func requestAttrs(info RequestInfo) []attribute.KeyValue {
	route := info.Route
	if route == "" {
		route = unknownRoute
	}
	attrs := []attribute.KeyValue{
		attribute.String(AttrMethod, info.Method),
		attribute.String(AttrRoute, route),
		attribute.Int(AttrStatusCode, info.StatusCode),
		attribute.String(AttrStatusClass, StatusClass(info.StatusCode)),
	}
	if info.Panicked {
		attrs = append(attrs, attribute.Bool(AttrPanic, true))
	}
	return attrs
}

// StatusClass 返回状态码类别，如 "2xx"；不在 100~599 时返回 "unknown"
func StatusClass(code int) string {
	if code < 100 || code > 599 {
		return "unknown"
	}
	return strconv.Itoa(code/100) + "xx"
}
