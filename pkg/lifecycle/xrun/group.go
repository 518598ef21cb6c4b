package xrun

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/omeyang/xtracekit/pkg/observability/xlog"
)

// Group 一组共享取消的任务
//
// Go 可并发调用，Wait 只调用一次。
type Group struct {
	eg       *errgroup.Group
	ctx      context.Context
	causeCtx context.Context
	cancel   context.CancelCauseFunc
	opts     *groupOptions
}

// NewGroup 创建 Group，返回的 ctx 在任一任务出错或 Cancel 时取消
func NewGroup(ctx context.Context, opts ...Option) (*Group, context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	causeCtx, cancel := context.WithCancelCause(ctx)
	eg, egCtx := errgroup.WithContext(causeCtx)
	return &Group{eg: eg, ctx: egCtx, causeCtx: causeCtx, cancel: cancel, opts: o}, egCtx
}

// Go 启动名为 name 的任务
func (g *Group) Go(name string, fn func(ctx context.Context) error) {
	g.eg.Go(func() error {
		if fn == nil {
			return ErrNilFunc
		}
		attrs := []slog.Attr{slog.String("group", g.opts.name), slog.String("service", name)}
		g.opts.log().Debug(g.ctx, "service starting", attrs...)

		err := fn(g.ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			g.opts.log().Warn(g.ctx, "service exited with error", append(attrs, xlog.Err(err))...)
		} else {
			g.opts.log().Debug(g.ctx, "service stopped", attrs...)
		}
		return err
	})
}

// Cancel 以 cause 为原因取消全部任务，Wait 会返回该原因
func (g *Group) Cancel(cause error) {
	g.cancel(cause)
}

// Wait 等待全部任务返回
//
// Group 被取消时过滤 context.Canceled，返回显式的取消原因（若有）。
// 任务自身返回的 context.Canceled 原样返回。
func (g *Group) Wait() error {
	defer g.cancel(nil)

	err := g.eg.Wait()
	if g.causeCtx.Err() == nil {
		return err
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if cause := context.Cause(g.causeCtx); cause != nil && !errors.Is(cause, context.Canceled) {
		return cause
	}
	return nil
}

// =============================================================================
// 便捷入口
// =============================================================================

// Run 监听默认信号并运行 services，见 RunWithOptions
func Run(ctx context.Context, services ...func(ctx context.Context) error) error {
	return RunWithOptions(ctx, nil, services...)
}

// RunWithOptions 运行 services 直到全部返回
//
// 未禁用信号处理时，收到信号后取消全部任务并返回 *SignalError。
func RunWithOptions(ctx context.Context, opts []Option, services ...func(ctx context.Context) error) error {
	g, _ := NewGroup(ctx, opts...)
	if !g.opts.noSignalHandler {
		g.Go("signal", g.waitSignal)
	}
	for i, svc := range services {
		g.Go("service-"+strconv.Itoa(i), svc)
	}
	return g.Wait()
}

func (g *Group) waitSignal(ctx context.Context) error {
	signals := g.opts.signals
	if len(signals) == 0 {
		signals = DefaultSignals()
	}
	ch := make(chan os.Signal, 1)
	g.opts.notify(ch, signals...)
	defer g.opts.stop(ch)

	select {
	case sig := <-ch:
		g.opts.log().Info(ctx, "received signal",
			slog.String("group", g.opts.name),
			slog.String("signal", sig.String()),
		)
		g.cancel(&SignalError{Signal: sig})
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// =============================================================================
// HTTP 服务
// =============================================================================

// HTTPServerInterface *http.Server 满足此接口
type HTTPServerInterface interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPServer 把 server 包装为任务：ctx 取消时在 shutdownTimeout 内优雅关闭
//
// shutdownTimeout 非正时等待在途请求全部完成。
// 外部直接关闭 server（ctx 未取消）时任务返回 nil。
func HTTPServer(server HTTPServerInterface, shutdownTimeout time.Duration) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if server == nil {
			return ErrNilServer
		}
		shutdownErr := make(chan error, 1)
		listenDone := make(chan struct{})

		go func() {
			select {
			case <-ctx.Done():
				// 设计决策: ctx 已取消，直接传给 Shutdown 会立即返回而不等待在途请求，
				// 因此剥离取消信号，只保留 shutdownTimeout 作为上限。
				sctx := context.WithoutCancel(ctx)
				if shutdownTimeout > 0 {
					var cancel context.CancelFunc
					sctx, cancel = context.WithTimeout(sctx, shutdownTimeout)
					defer cancel()
				}
				shutdownErr <- server.Shutdown(sctx)
			case <-listenDone:
			}
		}()

		err := server.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			close(listenDone)
			return err
		}
		select {
		case err := <-shutdownErr:
			return err
		case <-ctx.Done():
			return <-shutdownErr
		default:
			close(listenDone)
			return nil
		}
	}
}
