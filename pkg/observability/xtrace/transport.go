package xtrace

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/propagation"

	"github.com/omeyang/xtracekit/pkg/context/xctx"
)

// NewTransport 包装 base，出站请求自动注入追踪上下文与 X-Request-ID
//
// base 为 nil 时使用 http.DefaultTransport；opts 中仅 WithPropagator 生效。
func NewTransport(base http.RoundTripper, opts ...Option) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &transport{base: base, propagator: applyOptions(opts).propagator}
}

type transport struct {
	base       http.RoundTripper
	propagator propagation.TextMapPropagator
}

// RoundTrip 不修改调用方的请求，注入发生在副本上
func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	inject(clone.Context(), clone, t.propagator)
	return t.base.RoundTrip(clone)
}

// InjectToRequest 使用 DefaultPropagator 将 ctx 中的追踪上下文注入请求 Header
//
// 已存在的 X-Request-ID 不会被覆盖。
func InjectToRequest(ctx context.Context, req *http.Request) {
	inject(ctx, req, DefaultPropagator())
}

func inject(ctx context.Context, req *http.Request, p propagation.TextMapPropagator) {
	if req == nil {
		return
	}
	if req.Header == nil {
		req.Header = make(http.Header)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	p.Inject(ctx, propagation.HeaderCarrier(req.Header))

	if id := xctx.RequestID(ctx); id != "" && req.Header.Get(HeaderRequestID) == "" {
		req.Header.Set(HeaderRequestID, id)
	}
}
