// Package observability 包含 HTTP 请求追踪及其可观测性支撑子包。
//
// 子包列表：
//   - xtrace: HTTP 请求追踪中间件、路由操作名、出站传播
//   - xotel: TracerProvider / MeterProvider 组装，OTLP 与 Prometheus 导出
//   - xmetrics: 请求指标记录
//   - xsampling: 请求采样策略
//   - xlog: 结构化日志，自动注入追踪与路由字段
//   - xrotate: 日志文件轮转
package observability
