package xctx

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// =============================================================================
// Trace 日志属性 Key 常量
// =============================================================================

// Trace Key 常量，遵循 OpenTelemetry 语义约定（下划线分隔）
const (
	KeyTraceID    = "trace_id"
	KeySpanID     = "span_id"
	KeyRequestID  = "request_id"
	KeyTraceFlags = "trace_flags"

	// traceFieldCount 追踪字段数量（用于 slog 属性预分配）
	traceFieldCount = 4
)

const (
	keyTraceID    = contextKey("xctx:trace_id")
	keySpanID     = contextKey("xctx:span_id")
	keyRequestID  = contextKey("xctx:request_id")
	keyTraceFlags = contextKey("xctx:trace_flags")
)

// =============================================================================
// 单字段存取
// =============================================================================

// WithTraceID 将 trace ID 注入 context
//
// 如果 ctx 为 nil，返回 ErrNilContext。
func WithTraceID(ctx context.Context, traceID string) (context.Context, error) {
	return withString(ctx, keyTraceID, traceID)
}

// TraceID 从 context 提取 trace ID，不存在返回空字符串
func TraceID(ctx context.Context) string {
	return stringValue(ctx, keyTraceID)
}

// WithSpanID 将 span ID 注入 context
func WithSpanID(ctx context.Context, spanID string) (context.Context, error) {
	return withString(ctx, keySpanID, spanID)
}

// SpanID 从 context 提取 span ID，不存在返回空字符串
func SpanID(ctx context.Context) string {
	return stringValue(ctx, keySpanID)
}

// WithRequestID 将 request ID 注入 context
func WithRequestID(ctx context.Context, requestID string) (context.Context, error) {
	return withString(ctx, keyRequestID, requestID)
}

// RequestID 从 context 提取 request ID，不存在返回空字符串
func RequestID(ctx context.Context) string {
	return stringValue(ctx, keyRequestID)
}

// WithTraceFlags 将 trace flags 注入 context
//
// 格式: 2位十六进制字符串（如 "01" 表示已采样，"00" 表示未采样）。
func WithTraceFlags(ctx context.Context, flags string) (context.Context, error) {
	return withString(ctx, keyTraceFlags, flags)
}

// TraceFlags 从 context 提取 trace flags，不存在返回空字符串
func TraceFlags(ctx context.Context) string {
	return stringValue(ctx, keyTraceFlags)
}

// RequireTraceID 从 context 获取 trace ID，不存在则返回 ErrMissingTraceID。
func RequireTraceID(ctx context.Context) (string, error) {
	return requireString(ctx, TraceID, ErrMissingTraceID)
}

// RequireSpanID 从 context 获取 span ID，不存在则返回 ErrMissingSpanID。
func RequireSpanID(ctx context.Context) (string, error) {
	return requireString(ctx, SpanID, ErrMissingSpanID)
}

// RequireRequestID 从 context 获取 request ID，不存在则返回 ErrMissingRequestID。
func RequireRequestID(ctx context.Context) (string, error) {
	return requireString(ctx, RequestID, ErrMissingRequestID)
}

// =============================================================================
// RequestID 生成
// =============================================================================

// GenerateRequestID 生成 RequestID
//
// 格式: 32位小写十六进制字符串（去掉连字符的 UUIDv4），与 TraceID 长度一致。
func GenerateRequestID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// EnsureRequestID 确保 context 中存在 RequestID。
//
// 已有则原样返回（不验证/不纠正），否则生成新的并注入。
func EnsureRequestID(ctx context.Context) (context.Context, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if RequestID(ctx) != "" {
		return ctx, nil
	}
	return WithRequestID(ctx, GenerateRequestID())
}

// =============================================================================
// Trace 结构体（批量模式）
// =============================================================================

// Trace 追踪信息结构体
type Trace struct {
	TraceID    string
	SpanID     string
	RequestID  string
	TraceFlags string
}

// GetTrace 从 context 批量获取所有追踪信息，字段可能为空字符串。
func GetTrace(ctx context.Context) Trace {
	return Trace{
		TraceID:    TraceID(ctx),
		SpanID:     SpanID(ctx),
		RequestID:  RequestID(ctx),
		TraceFlags: TraceFlags(ctx),
	}
}

// IsComplete TraceID、SpanID、RequestID 都非空时返回 true。
// TraceFlags 是可选的采样决策字段，不参与检查。
func (t Trace) IsComplete() bool {
	return t.TraceID != "" && t.SpanID != "" && t.RequestID != ""
}

// WithTrace 将 Trace 中的非空字段批量注入 context。
//
// 空字符串字段会被跳过，父 context 中已有的值得以保留。
func WithTrace(ctx context.Context, tr Trace) (context.Context, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	fields := [...]struct {
		key   contextKey
		value string
	}{
		{keyTraceID, tr.TraceID},
		{keySpanID, tr.SpanID},
		{keyRequestID, tr.RequestID},
		{keyTraceFlags, tr.TraceFlags},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		ctx = context.WithValue(ctx, f.key, f.value)
	}
	return ctx, nil
}

// =============================================================================
// 内部辅助函数
// =============================================================================

func withString(ctx context.Context, key contextKey, value string) (context.Context, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	return context.WithValue(ctx, key, value), nil
}

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

func requireString(ctx context.Context, get func(context.Context) string, missing error) (string, error) {
	if ctx == nil {
		return "", ErrNilContext
	}
	v := get(ctx)
	if v == "" {
		return "", missing
	}
	return v, nil
}
