package xlog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"

	"github.com/omeyang/xtracekit/pkg/observability/xrotate"
)

// ReplaceAttrFunc 属性替换函数，用于字段重命名、脱敏等日志治理场景。
// 返回空 Key 的 Attr 会移除该属性。
type ReplaceAttrFunc func(groups []string, a slog.Attr) slog.Attr

// Builder 日志配置构建器
type Builder struct {
	output       io.Writer
	levelVar     *slog.LevelVar
	format       string
	addSource    bool
	enableEnrich bool
	service      string
	replaceAttr  ReplaceAttrFunc
	rotator      xrotate.Rotator
	onError      func(error)
	err          error
}

// New 创建配置构建器
//
// 默认：stderr，Info 级别，text 格式，启用 context 字段注入。
func New() *Builder {
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelInfo)

	return &Builder{
		output:       os.Stderr,
		levelVar:     levelVar,
		format:       "text",
		enableEnrich: true,
	}
}

// SetOutput 设置日志输出目标
func (b *Builder) SetOutput(w io.Writer) *Builder {
	if w == nil {
		b.err = ErrNilOutput
		return b
	}
	b.output = w
	return b
}

// SetLevel 设置日志级别
func (b *Builder) SetLevel(level Level) *Builder {
	b.levelVar.Set(slog.Level(level))
	return b
}

// SetLevelString 通过字符串设置日志级别
func (b *Builder) SetLevelString(s string) *Builder {
	level, err := ParseLevel(s)
	if err != nil {
		b.err = err
		return b
	}
	return b.SetLevel(level)
}

// SetFormat 设置输出格式：text 或 json，空值使用 text
func (b *Builder) SetFormat(format string) *Builder {
	normalized := strings.ToLower(strings.TrimSpace(format))
	switch normalized {
	case "":
		b.format = "text"
	case "text", "json":
		b.format = normalized
	default:
		b.err = fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return b
}

// SetAddSource 是否记录源码位置
func (b *Builder) SetAddSource(enable bool) *Builder {
	b.addSource = enable
	return b
}

// SetEnrich 是否从 context 注入 trace / route 字段，默认启用
func (b *Builder) SetEnrich(enable bool) *Builder {
	b.enableEnrich = enable
	return b
}

// SetService 设置服务名，作为固定属性 service 出现在每条日志中
func (b *Builder) SetService(name string) *Builder {
	b.service = strings.TrimSpace(name)
	return b
}

// SetRotation 输出到按大小轮转的文件，cleanup 会关闭该文件
func (b *Builder) SetRotation(filename string, opts ...xrotate.Option) *Builder {
	rotator, err := xrotate.NewLumberjack(filename, opts...)
	if err != nil {
		b.err = err
		return b
	}
	b.rotator = rotator
	b.output = rotator
	return b
}

// SetOnError 设置内部错误回调
//
// Handler.Handle 失败（磁盘满、writer 异常）时同步调用，回调应保持轻量。
// 回调内部再次触发的日志错误不会递归回调。
func (b *Builder) SetOnError(fn func(error)) *Builder {
	b.onError = fn
	return b
}

// SetReplaceAttr 设置属性替换函数
//
//	logger, _, _ := xlog.New().
//		SetReplaceAttr(func(_ []string, a slog.Attr) slog.Attr {
//			if a.Key == "authorization" {
//				return slog.String(a.Key, "***")
//			}
//			return a
//		}).
//		Build()
func (b *Builder) SetReplaceAttr(fn ReplaceAttrFunc) *Builder {
	b.replaceAttr = fn
	return b
}

// Build 构建 Logger 实例
//
// 返回的 cleanup 用于释放资源（如关闭轮转文件），未配置轮转时为空操作。
func (b *Builder) Build() (LoggerWithLevel, func() error, error) {
	if b.err != nil {
		if b.rotator != nil {
			_ = b.rotator.Close() //nolint:errcheck // 配置错误优先返回
		}
		return nil, nil, b.err
	}

	opts := &slog.HandlerOptions{
		Level:     b.levelVar,
		AddSource: b.addSource,
	}
	if b.replaceAttr != nil {
		opts.ReplaceAttr = b.replaceAttr
	}

	var handler slog.Handler
	if b.format == "json" {
		handler = slog.NewJSONHandler(b.output, opts)
	} else {
		handler = slog.NewTextHandler(b.output, opts)
	}

	if b.service != "" {
		handler = handler.WithAttrs([]slog.Attr{slog.String(KeyService, b.service)})
	}

	if b.enableEnrich {
		enriched, err := NewEnrichHandler(handler)
		if err != nil {
			return nil, nil, err
		}
		handler = enriched
	}

	logger := &xlogger{
		handler:        handler,
		levelVar:       b.levelVar,
		onError:        b.onError,
		errorCount:     new(atomic.Uint64),
		addSource:      b.addSource,
		inErrorHandler: new(atomic.Bool),
	}

	cleanup := func() error { return nil }
	if b.rotator != nil {
		rotator := b.rotator
		cleanup = rotator.Close
	}

	return logger, cleanup, nil
}
