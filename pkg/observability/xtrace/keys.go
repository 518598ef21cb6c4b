package xtrace

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/trace"

	"github.com/omeyang/xtracekit/pkg/observability/xsampling"
)

type requestKey struct{}

// withRequest 让采样 KeyFunc 能访问当前请求
func withRequest(ctx context.Context, r *http.Request) context.Context {
	return context.WithValue(ctx, requestKey{}, r)
}

// RequestFrom 返回采样 context 中的请求，仅在 Sampler 内有效
func RequestFrom(ctx context.Context) (*http.Request, bool) {
	if ctx == nil {
		return nil, false
	}
	r, ok := ctx.Value(requestKey{}).(*http.Request)
	return r, ok && r != nil
}

// PathKey 以请求路径为采样 key，同一路径的采样决策一致
func PathKey(ctx context.Context) string {
	r, ok := RequestFrom(ctx)
	if !ok {
		return ""
	}
	return urlPath(r)
}

// TraceIDKey 以上游 trace id 为采样 key，同一条链路在各服务中的决策一致
func TraceIDKey(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

var (
	_ xsampling.KeyFunc = PathKey
	_ xsampling.KeyFunc = TraceIDKey
)
