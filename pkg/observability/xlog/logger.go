package xlog

import (
	"context"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"
)

var (
	_ Logger          = (*xlogger)(nil)
	_ LoggerWithLevel = (*xlogger)(nil)
)

const (
	initialStackSize = 4096
	maxStackSize     = 64 * 1024
)

type xlogger struct {
	handler        slog.Handler
	levelVar       *slog.LevelVar
	onError        func(error)
	errorCount     *atomic.Uint64 // 派生 logger 共享
	addSource      bool
	inErrorHandler *atomic.Bool // 派生 logger 共享，防止 onError 递归
}

// logWithSkip extraSkip 为调用方与 logWithSkip 之间的额外栈帧数
//
//go:noinline
func (l *xlogger) logWithSkip(ctx context.Context, level slog.Level, msg string, attrs []slog.Attr, extraSkip int) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !l.handler.Enabled(ctx, level) {
		return
	}

	var pc uintptr
	if l.addSource {
		var pcs [1]uintptr
		// Callers(0) → logWithSkip(1) → 直接调用方(2)
		runtime.Callers(3+extraSkip, pcs[:])
		pc = pcs[0]
	}

	r := slog.NewRecord(time.Now(), level, msg, pc)
	r.AddAttrs(attrs...)

	if err := l.handler.Handle(ctx, r); err != nil {
		l.handleError(err)
	}
}

//go:noinline
func (l *xlogger) log(ctx context.Context, level slog.Level, msg string, attrs []slog.Attr) {
	l.logWithSkip(ctx, level, msg, attrs, 1)
}

// handleError 计数所有内部错误；onError 回调为 best-effort，并发期间可能被跳过
func (l *xlogger) handleError(err error) {
	l.errorCount.Add(1)
	if l.onError == nil {
		return
	}
	if l.inErrorHandler.CompareAndSwap(false, true) {
		defer l.inErrorHandler.Store(false)
		l.safeOnError(err)
	}
}

func (l *xlogger) safeOnError(err error) {
	defer func() {
		if r := recover(); r != nil {
			l.errorCount.Add(1)
		}
	}()
	l.onError(err)
}

func (l *xlogger) Debug(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelDebug, msg, attrs)
}

func (l *xlogger) Info(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelInfo, msg, attrs)
}

func (l *xlogger) Warn(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelWarn, msg, attrs)
}

func (l *xlogger) Error(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelError, msg, attrs)
}

//go:noinline
func (l *xlogger) Stack(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.stackWithSkip(ctx, msg, attrs, 0)
}

//go:noinline
func (l *xlogger) stackWithSkip(ctx context.Context, msg string, attrs []slog.Attr, extraSkip int) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !l.handler.Enabled(ctx, slog.LevelError) {
		return
	}

	buf := make([]byte, initialStackSize)
	n := runtime.Stack(buf, false)
	for n == len(buf) && len(buf) < maxStackSize {
		buf = make([]byte, min(len(buf)*2, maxStackSize))
		n = runtime.Stack(buf, false)
	}

	var pc uintptr
	if l.addSource {
		var pcs [1]uintptr
		runtime.Callers(3+extraSkip, pcs[:])
		pc = pcs[0]
	}

	r := slog.NewRecord(time.Now(), slog.LevelError, msg, pc)
	r.AddAttrs(attrs...)
	r.AddAttrs(slog.String(KeyStack, string(buf[:n])))

	if err := l.handler.Handle(ctx, r); err != nil {
		l.handleError(err)
	}
}

func (l *xlogger) derive(h slog.Handler) *xlogger {
	return &xlogger{
		handler:        h,
		levelVar:       l.levelVar,
		onError:        l.onError,
		errorCount:     l.errorCount,
		addSource:      l.addSource,
		inErrorHandler: l.inErrorHandler,
	}
}

func (l *xlogger) With(attrs ...slog.Attr) Logger {
	if len(attrs) == 0 {
		return l
	}
	return l.derive(l.handler.WithAttrs(attrs))
}

func (l *xlogger) WithGroup(name string) Logger {
	if name == "" {
		return l
	}
	return l.derive(l.handler.WithGroup(name))
}

func (l *xlogger) SetLevel(level Level) {
	l.levelVar.Set(slog.Level(level))
}

func (l *xlogger) GetLevel() Level {
	return Level(l.levelVar.Level())
}

func (l *xlogger) Enabled(ctx context.Context, level Level) bool {
	if ctx == nil {
		ctx = context.Background()
	}
	return l.handler.Enabled(ctx, slog.Level(level))
}
