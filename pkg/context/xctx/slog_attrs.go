package xctx

import (
	"context"
	"log/slog"
)

// AppendTraceAttrs 将 context 中的追踪信息追加到现有切片。
// 只追加非空字段，调用方传入预分配切片可避免热路径分配。
func AppendTraceAttrs(attrs []slog.Attr, ctx context.Context) []slog.Attr {
	if ctx == nil {
		return attrs
	}

	if v := TraceID(ctx); v != "" {
		attrs = append(attrs, slog.String(KeyTraceID, v))
	}
	if v := SpanID(ctx); v != "" {
		attrs = append(attrs, slog.String(KeySpanID, v))
	}
	if v := RequestID(ctx); v != "" {
		attrs = append(attrs, slog.String(KeyRequestID, v))
	}
	if v := TraceFlags(ctx); v != "" {
		attrs = append(attrs, slog.String(KeyTraceFlags, v))
	}

	return attrs
}

// TraceAttrs 从 context 提取追踪信息，都为空时返回 nil。
func TraceAttrs(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	attrs := AppendTraceAttrs(make([]slog.Attr, 0, traceFieldCount), ctx)
	if len(attrs) == 0 {
		return nil
	}
	return attrs
}

// AppendRouteAttrs 已设置路由操作名时追加 route 属性。
func AppendRouteAttrs(attrs []slog.Attr, ctx context.Context) []slog.Attr {
	if name, ok := RouteOperationName(ctx); ok {
		attrs = append(attrs, slog.String(KeyRoute, name))
	}
	return attrs
}
