package xotel

import "errors"

var (
	// ErrEmptyServiceName 未配置服务名
	ErrEmptyServiceName = errors.New("xotel: service name is required")

	// ErrInvalidSampleRatio 采样比率不在 [0, 1]
	ErrInvalidSampleRatio = errors.New("xotel: sample ratio must be in [0.0, 1.0]")

	// ErrInvalidShutdownTimeout 关闭超时为负
	ErrInvalidShutdownTimeout = errors.New("xotel: shutdown timeout must not be negative")

	// ErrCreateResource 构建 resource 失败
	ErrCreateResource = errors.New("xotel: create resource failed")

	// ErrCreateExporter 构建 exporter 失败
	ErrCreateExporter = errors.New("xotel: create exporter failed")
)
