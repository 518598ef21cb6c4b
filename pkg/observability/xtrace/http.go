package xtrace

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/baggage"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.40.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/omeyang/xtracekit/pkg/context/xctx"
	"github.com/omeyang/xtracekit/pkg/observability/xlog"
	"github.com/omeyang/xtracekit/pkg/observability/xmetrics"
)

// HTTP Header 名称
const (
	HeaderRequestID   = "X-Request-ID"
	HeaderTraceparent = "traceparent"
)

// span 属性名
const (
	AttrStatusCode    = "HTTP response status code"
	AttrRequestURI    = "HTTP request URI"
	AttrRequestMethod = "HTTP request method"
)

// maxRequestIDLen 上游 X-Request-ID 超过该长度时重新生成
const maxRequestIDLen = 128

// RequestTracing 返回请求追踪中间件
func RequestTracing(opts ...Option) func(http.Handler) http.Handler {
	cfg := applyOptions(opts)
	tracer := cfg.tracerProvider.Tracer(cfg.instrumentationName)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.bypass(r) {
				cfg.log().Debug(r.Context(), "xtrace: bypass", xlog.Path(urlPath(r)))
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			wireCtx := cfg.propagator.Extract(ctx, propagation.HeaderCarrier(r.Header))

			if !cfg.sampler.ShouldSample(withRequest(wireCtx, r)) {
				cfg.log().Debug(ctx, "xtrace: request not sampled", xlog.Method(r.Method), xlog.Path(urlPath(r)))
				next.ServeHTTP(w, r)
				return
			}

			// 设计决策: 上游 trace 只作为 link 而不作为 parent，span 总是新 trace 的根。
			// 外部调用方无法借 traceparent 把请求挂进自己的 trace，也无法左右本服务的采样决策。
			startOpts := []trace.SpanStartOption{trace.WithSpanKind(trace.SpanKindServer)}
			if link := trace.LinkFromContext(wireCtx); link.SpanContext.IsValid() {
				startOpts = append(startOpts, trace.WithLinks(link))
			} else if r.Header.Get(HeaderTraceparent) != "" {
				cfg.log().Debug(ctx, "xtrace: ignoring malformed traceparent", xlog.Path(urlPath(r)))
			}
			if bag := baggage.FromContext(wireCtx); bag.Len() > 0 {
				ctx = baggage.ContextWithBaggage(ctx, bag)
			}

			ctx, span := tracer.Start(ctx, spanName(r.Method, urlPath(r)), startOpts...)
			ctx = syncXctx(ctx, span.SpanContext())
			ctx = ensureRequestID(ctx, r.Header.Get(HeaderRequestID))
			ctx, _ = xctx.WithRouteSlot(ctx) //nolint:errcheck // ctx 非 nil

			sw := newStatusWriter(w)
			start := time.Now()
			completed := false

			// 设计决策: 在 defer 中 recover 并结束 span 后再原样 re-panic。
			// 中间件不吞掉 panic，上层的 recover 中间件或 net/http 仍按原行为处理；
			// completed 标记区分正常返回与 panic(nil)，避免把正常返回误判为 panic。
			defer func() {
				var p any
				if !completed {
					p = recover()
				}
				cfg.finish(ctx, span, r, sw, time.Since(start), p)
				if p != nil {
					panic(p)
				}
			}()

			next.ServeHTTP(sw, r.WithContext(ctx))
			completed = true
		})
	}
}

// bypass 静态资源、bypass 文件与 skipper 命中的请求不追踪
func (c *config) bypass(r *http.Request) bool {
	path := urlPath(r)
	if c.staticPrefix != "" && strings.HasPrefix(path, c.staticPrefix) {
		return true
	}
	if c.bypassFile != "" && strings.TrimPrefix(path, "/") == strings.TrimPrefix(c.bypassFile, "/") {
		return true
	}
	return c.skipper != nil && c.skipper(r)
}

// finish 在 handler 返回或 panic 后补全并结束 span
func (c *config) finish(ctx context.Context, span trace.Span, r *http.Request, sw *statusWriter, elapsed time.Duration, p any) {
	status := sw.Status()
	if p != nil {
		status = http.StatusInternalServerError
	}

	route, named := xctx.RouteOperationName(ctx)
	if named {
		span.SetName(spanName(r.Method, route))
	}

	attrs := []attribute.KeyValue{
		attribute.Int(AttrStatusCode, status),
		attribute.String(AttrRequestURI, requestURI(r)),
		attribute.String(AttrRequestMethod, r.Method),
	}
	if named {
		attrs = append(attrs, semconv.HTTPRoute(route))
	}
	span.SetAttributes(attrs...)

	if p != nil {
		span.RecordError(fmt.Errorf("%w: %v", ErrHandlerPanic, p), trace.WithStackTrace(true))
		c.log().Warn(ctx, "xtrace: http handler panicked",
			xlog.Panic(p), xlog.Method(r.Method), xlog.Path(urlPath(r)))
	}
	if status >= http.StatusBadRequest {
		span.SetStatus(codes.Error, fmt.Sprintf("error with HTTP status code %d", status))
	}

	if !c.legacyConditionalEnd || named {
		span.End()
	}

	c.recorder.Record(ctx, xmetrics.RequestInfo{
		Method:     r.Method,
		Route:      route,
		StatusCode: status,
		Duration:   elapsed,
		Panicked:   p != nil,
	})
}

func spanName(method, target string) string {
	return "HTTP " + method + " " + target
}

func urlPath(r *http.Request) string {
	if r.URL == nil {
		return ""
	}
	return r.URL.Path
}

// requestURI 服务端请求使用原始 RequestURI，测试或客户端构造的请求回退到 URL
func requestURI(r *http.Request) string {
	if r.RequestURI != "" {
		return r.RequestURI
	}
	if r.URL != nil {
		return r.URL.RequestURI()
	}
	return ""
}

// syncXctx 将新 span 的标识同步到 xctx，供 xlog 注入日志
func syncXctx(ctx context.Context, sc trace.SpanContext) context.Context {
	if !sc.IsValid() {
		return ctx
	}
	out, err := xctx.WithTrace(ctx, xctx.Trace{
		TraceID:    sc.TraceID().String(),
		SpanID:     sc.SpanID().String(),
		TraceFlags: sc.TraceFlags().String(),
	})
	if err != nil {
		return ctx
	}
	return out
}

// ensureRequestID 复用上游 X-Request-ID，缺失或过长时生成新的
func ensureRequestID(ctx context.Context, upstream string) context.Context {
	id := strings.TrimSpace(upstream)
	if id == "" || len(id) > maxRequestIDLen {
		id = xctx.GenerateRequestID()
	}
	out, err := xctx.WithRequestID(ctx, id)
	if err != nil {
		return ctx
	}
	return out
}
