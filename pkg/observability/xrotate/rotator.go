package xrotate

import "io"

var _ io.WriteCloser = (Rotator)(nil)

// Rotator 日志轮转器接口，所有实现都必须是并发安全的。
//
// Close 后调用 Write 或 Rotate 返回 [ErrClosed]。
type Rotator interface {
	// Write 写入日志数据，触发轮转条件时自动轮转
	Write(p []byte) (n int, err error)

	// Close 关闭轮转器，重复调用返回 [ErrClosed]
	Close() error

	// Rotate 手动触发轮转
	Rotate() error
}
