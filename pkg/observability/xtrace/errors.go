package xtrace

import "errors"

// ErrHandlerPanic 下游 handler panic，作为 span 的异常事件记录
var ErrHandlerPanic = errors.New("xtrace: http handler panicked")
