// Package xtrace 为入站 HTTP 请求创建分布式追踪 span。
//
// # 请求追踪
//
// RequestTracing 返回标准 net/http 中间件。每个请求（静态资源除外）产生且只产生一个
// server span：
//
//   - 静态资源前缀（默认 /public/）与 /robots.txt 直接透传，不产生 span
//   - 上游 traceparent 通过 propagator 解析，新 span 以 link 关联上游，而非作为其子 span
//   - span 初始名为 "HTTP <method> <path>"，下游设置路由操作名后改为 "HTTP <method> <route>"
//   - 响应结束后写入状态码、请求 URI、请求方法属性；状态码 >= 400 标记为错误
//   - handler panic 时按 500 记录并结束 span，然后继续向上 panic
//
// # 路由操作名
//
// 路由操作名是请求的低基数名称（如 "/api/org/:id/preferences"），由路由层在 handler
// 内设置：
//
//	mux := http.NewServeMux()
//	xtrace.HandleRoute(mux, "GET /api/org/{id}/preferences", "", prefsHandler)
//	handler := xtrace.RequestTracing(xtrace.WithTracerProvider(tp))(mux)
//
// 中间件在调用下游前向 context 放置路由名槽位（xctx.WithRouteSlot），
// 下游通过 WithRouteOperationName 写入的名称在 handler 返回后对中间件可见。
//
// # 跨服务传播
//
// NewTransport 包装 http.RoundTripper，出站请求自动注入 traceparent 与 X-Request-ID。
package xtrace
