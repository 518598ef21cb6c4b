package xtrace

import (
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/omeyang/xtracekit/pkg/observability/xlog"
	"github.com/omeyang/xtracekit/pkg/observability/xmetrics"
	"github.com/omeyang/xtracekit/pkg/observability/xsampling"
)

// 默认配置
const (
	DefaultStaticPrefix        = "/public/"
	DefaultBypassFile          = "/robots.txt"
	DefaultInstrumentationName = "github.com/omeyang/xtracekit/xtrace"
)

// Option 中间件与 Transport 的配置选项
type Option func(*config)

type config struct {
	tracerProvider       trace.TracerProvider
	propagator           propagation.TextMapPropagator
	staticPrefix         string
	bypassFile           string
	skipper              func(*http.Request) bool
	sampler              xsampling.Sampler
	recorder             xmetrics.Recorder
	logger               xlog.Logger
	instrumentationName  string
	legacyConditionalEnd bool
}

// DefaultPropagator W3C traceparent + baggage
func DefaultPropagator() propagation.TextMapPropagator {
	return propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{})
}

func applyOptions(opts []Option) *config {
	cfg := &config{
		propagator:          DefaultPropagator(),
		staticPrefix:        DefaultStaticPrefix,
		bypassFile:          DefaultBypassFile,
		sampler:             xsampling.Always(),
		recorder:            xmetrics.NoopRecorder{},
		instrumentationName: DefaultInstrumentationName,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	if cfg.tracerProvider == nil {
		cfg.tracerProvider = otel.GetTracerProvider()
	}
	return cfg
}

// log 未配置 logger 时使用 xlog.Default()，SetDefault 后的替换立即生效
func (c *config) log() xlog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return xlog.Default()
}

// WithTracerProvider 设置 TracerProvider，默认使用 otel 全局 provider
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *config) {
		if tp != nil {
			c.tracerProvider = tp
		}
	}
}

// WithPropagator 设置上下文传播器，默认 DefaultPropagator()
func WithPropagator(p propagation.TextMapPropagator) Option {
	return func(c *config) {
		if p != nil {
			c.propagator = p
		}
	}
}

// WithStaticPrefix 设置不追踪的静态资源路径前缀，空字符串关闭前缀透传
func WithStaticPrefix(prefix string) Option {
	return func(c *config) { c.staticPrefix = prefix }
}

// WithBypassFile 设置不追踪的单个文件路径，带不带前导 "/" 均可；空字符串关闭
func WithBypassFile(path string) Option {
	return func(c *config) { c.bypassFile = path }
}

// WithSkipper 设置额外的透传判断，返回 true 的请求不产生 span
func WithSkipper(fn func(*http.Request) bool) Option {
	return func(c *config) { c.skipper = fn }
}

// WithSampler 设置采样器，未采样的请求不产生 span 也不记录指标
//
// 采样器收到的 context 携带上游 span context 与当前请求，可配合 PathKey / TraceIDKey 使用。
func WithSampler(s xsampling.Sampler) Option {
	return func(c *config) {
		if s != nil {
			c.sampler = s
		}
	}
}

// WithRecorder 设置请求指标记录器，默认不记录
func WithRecorder(r xmetrics.Recorder) Option {
	return func(c *config) {
		if r != nil {
			c.recorder = r
		}
	}
}

// WithLogger 设置日志记录器，默认 xlog.Default()
func WithLogger(l xlog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithInstrumentationName 设置 tracer 的 instrumentation 名称，空值被忽略
func WithInstrumentationName(name string) Option {
	return func(c *config) {
		if name != "" {
			c.instrumentationName = name
		}
	}
}

// WithLegacyConditionalEnd 开启后仅在设置了路由操作名时结束 span。
//
// 未命名请求的 span 将永远不会导出，仅用于与旧版行为做对比。
func WithLegacyConditionalEnd(enabled bool) Option {
	return func(c *config) { c.legacyConditionalEnd = enabled }
}
