package xlog

import (
	"log/slog"
	"time"
)

// =============================================================================
// 常用属性 Key
// =============================================================================

const (
	KeyError     = "error"
	KeyStack     = "stack"
	KeyService   = "service"
	KeyComponent = "component"
	KeyDuration  = "duration"
	KeyMethod    = "http.method"
	KeyPath      = "http.path"
	KeyStatus    = "http.status_code"
	KeyPanic     = "panic"
)

// Err 错误属性，err 为 nil 时值为 "<nil>"
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "<nil>")
	}
	return slog.String(KeyError, err.Error())
}

// Component 组件名属性
func Component(name string) slog.Attr {
	return slog.String(KeyComponent, name)
}

// Duration 耗时属性
func Duration(d time.Duration) slog.Attr {
	return slog.Duration(KeyDuration, d)
}

// Method HTTP 方法属性
func Method(m string) slog.Attr {
	return slog.String(KeyMethod, m)
}

// Path 请求路径属性
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// Status HTTP 状态码属性
func Status(code int) slog.Attr {
	return slog.Int(KeyStatus, code)
}

// Panic panic 值属性
func Panic(v any) slog.Attr {
	return slog.Any(KeyPanic, v)
}
