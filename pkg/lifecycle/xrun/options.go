package xrun

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/omeyang/xtracekit/pkg/observability/xlog"
)

// Option Group 选项
type Option func(*groupOptions)

type groupOptions struct {
	logger          xlog.Logger
	name            string
	signals         []os.Signal
	noSignalHandler bool

	// notify 默认 signal.Notify，测试中替换以避免发送真实信号
	notify func(c chan<- os.Signal, sig ...os.Signal)
	stop   func(c chan<- os.Signal)
}

func defaultOptions() *groupOptions {
	return &groupOptions{
		name:   "xrun",
		notify: signal.Notify,
		stop:   signal.Stop,
	}
}

func (o *groupOptions) log() xlog.Logger {
	if o.logger != nil {
		return o.logger
	}
	return xlog.Default()
}

// DefaultSignals SIGINT 与 SIGTERM，每次返回新切片
func DefaultSignals() []os.Signal {
	return []os.Signal{syscall.SIGINT, syscall.SIGTERM}
}

// WithLogger 设置生命周期日志的 logger，默认 xlog.Default()
func WithLogger(logger xlog.Logger) Option {
	return func(o *groupOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithName 日志中的 group 名称
func WithName(name string) Option {
	return func(o *groupOptions) {
		if name != "" {
			o.name = name
		}
	}
}

// WithSignals 覆盖监听的信号，空列表等同 DefaultSignals
func WithSignals(signals ...os.Signal) Option {
	copied := append([]os.Signal(nil), signals...)
	return func(o *groupOptions) {
		o.signals = copied
	}
}

// WithoutSignalHandler 不监听信号，由调用方通过 ctx 控制退出
func WithoutSignalHandler() Option {
	return func(o *groupOptions) {
		o.noSignalHandler = true
	}
}
