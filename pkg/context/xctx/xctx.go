package xctx

import "errors"

// =============================================================================
// Context Key 类型定义
// =============================================================================

// contextKey 包私有的 context key 类型。
// Go 的 context 比较包含类型信息，其他包即使使用相同字符串也不会冲突。
type contextKey string

// =============================================================================
// 错误定义
// =============================================================================

var (
	// ErrNilContext 表示传入的 context 为 nil。
	ErrNilContext = errors.New("xctx: nil context")

	// ErrMissingTraceID trace_id 缺失
	ErrMissingTraceID = errors.New("xctx: missing trace_id")

	// ErrMissingSpanID span_id 缺失
	ErrMissingSpanID = errors.New("xctx: missing span_id")

	// ErrMissingRequestID request_id 缺失
	ErrMissingRequestID = errors.New("xctx: missing request_id")

	// ErrMissingRouteOperationName 路由操作名缺失
	ErrMissingRouteOperationName = errors.New("xctx: missing route operation name")

	// ErrEmptyRouteOperationName 路由操作名为空字符串
	ErrEmptyRouteOperationName = errors.New("xctx: empty route operation name")
)
