package xmetrics

import (
	"context"
	"time"
)

// RequestInfo 一次已完成请求的观测数据
type RequestInfo struct {
	// Method HTTP 方法
	Method string
	// Route 路由操作名；未设置时为空，记录为 "unknown"，避免原始路径导致基数爆炸
	Route string
	// StatusCode 响应状态码
	StatusCode int
	// Duration 请求耗时
	Duration time.Duration
	// Panicked handler 是否 panic
	Panicked bool
}

// Recorder 请求指标记录器，实现必须并发安全
type Recorder interface {
	Record(ctx context.Context, info RequestInfo)
}

// NoopRecorder 不记录任何指标
type NoopRecorder struct{}

func (NoopRecorder) Record(context.Context, RequestInfo) {}

var _ Recorder = NoopRecorder{}
