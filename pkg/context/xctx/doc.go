// Package xctx 提供请求级 context 字段的存取能力。
//
// 追踪信息（Trace）- 分布式追踪：
//   - trace_id     : 追踪标识（W3C 规范，128-bit）
//   - span_id      : 跨度标识（W3C 规范，64-bit）
//   - request_id   : 请求标识
//   - trace_flags  : 追踪标志（W3C 规范，采样决策）
//
// 路由信息（Route）- 请求匹配到的逻辑路由：
//   - route        : 路由操作名（如 "/api/org/:id/preferences"），区别于原始请求路径
//
// # 命名约定
//
//	WithXxx(ctx, value)    - 注入：派生新 context，原 context 不变
//	Xxx(ctx)               - 读取：缺失时返回零值（路由名额外返回 found）
//	RequireXxx(ctx)        - 强制读取：值必须存在，缺失时返回错误
//	EnsureXxx(ctx)         - 确保存在：若已存在则返回，否则自动生成
//
// 所有 context key 都是包私有类型，不会与其他中间件使用的 key 冲突。
//
// # 路由槽位
//
// net/http 中间件链里，外层中间件看不到内层 r.WithContext 派生出的 context。
// WithRouteSlot 在外层预先放置一个可写槽位，内层调用 WithRouteOperationName 时
// 除了派生新 context，还会把路由名写入槽位（首次写入生效），外层在 next 返回后
// 即可通过 RouteOperationName 读到该值。
package xctx
