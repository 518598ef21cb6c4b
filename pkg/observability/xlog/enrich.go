package xlog

import (
	"context"
	"log/slog"

	"github.com/omeyang/xtracekit/pkg/context/xctx"
)

// EnrichHandler 从 context 提取追踪字段与路由操作名并注入日志记录
//
// 注入字段：trace_id, span_id, request_id, trace_flags, route。
// context 缺少某些字段时跳过，不影响日志记录。
// 调用 WithGroup 后注入字段会归入该 group。
type EnrichHandler struct {
	base slog.Handler
}

// NewEnrichHandler 创建 EnrichHandler，base 为 nil 时返回 ErrNilHandler
func NewEnrichHandler(base slog.Handler) (*EnrichHandler, error) {
	if base == nil {
		return nil, ErrNilHandler
	}
	return &EnrichHandler{base: base}, nil
}

func (h *EnrichHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

// maxEnrichAttrs trace 4 + route 1
const maxEnrichAttrs = 5

// Handle 按 slog 契约先 Clone 再追加属性
func (h *EnrichHandler) Handle(ctx context.Context, r slog.Record) error {
	var buf [maxEnrichAttrs]slog.Attr
	attrs := buf[:0]
	attrs = xctx.AppendTraceAttrs(attrs, ctx)
	attrs = xctx.AppendRouteAttrs(attrs, ctx)

	if len(attrs) > 0 {
		r = r.Clone()
		r.AddAttrs(attrs...)
	}
	return h.base.Handle(ctx, r)
}

func (h *EnrichHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &EnrichHandler{base: h.base.WithAttrs(attrs)}
}

func (h *EnrichHandler) WithGroup(name string) slog.Handler {
	return &EnrichHandler{base: h.base.WithGroup(name)}
}
