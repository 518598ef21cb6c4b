// Package xotel 组装 OpenTelemetry 的 TracerProvider 与 MeterProvider。
//
// 追踪：配置了 OTLPEndpoint 时通过 OTLP/HTTP 批量导出，采样器为
// ParentBased(TraceIDRatioBased)。
// 指标：Prometheus exporter 注册在私有 Registry 上，经 Provider.MetricsHandler 暴露，
// 不污染 prometheus 默认 Registry。
package xotel
