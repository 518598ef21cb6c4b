// Package xmetrics 记录 HTTP 请求级指标。
//
// xtrace.RequestTracing 在每个被追踪的请求结束后调用 Recorder.Record，
// 默认实现基于 OpenTelemetry Metric API，导出由 MeterProvider 决定
// （xotel 默认挂载 Prometheus exporter）。
//
// 指标：
//   - http.server.request.total：请求计数（Int64Counter）
//   - http.server.request.duration：请求耗时，单位秒（Float64Histogram）
//
// 属性：http.request.method, http.route, http.response.status_code, http.status_class。
package xmetrics
