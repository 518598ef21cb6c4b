package xlog

import "errors"

var (
	// ErrNilHandler NewEnrichHandler 的 base handler 为 nil
	ErrNilHandler = errors.New("xlog: base handler is nil")

	// ErrUnknownLevel 无法识别的日志级别字符串
	ErrUnknownLevel = errors.New("xlog: unknown level")

	// ErrUnknownFormat 无法识别的输出格式（仅支持 text/json）
	ErrUnknownFormat = errors.New("xlog: unknown format")

	// ErrNilOutput SetOutput 传入了 nil
	ErrNilOutput = errors.New("xlog: output is nil")
)
