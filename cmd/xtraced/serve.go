package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/omeyang/xtracekit/pkg/config/xconf"
	"github.com/omeyang/xtracekit/pkg/lifecycle/xrun"
	"github.com/omeyang/xtracekit/pkg/observability/xlog"
	"github.com/omeyang/xtracekit/pkg/observability/xmetrics"
	"github.com/omeyang/xtracekit/pkg/observability/xotel"
	"github.com/omeyang/xtracekit/pkg/observability/xtrace"
)

const readHeaderTimeout = 5 * time.Second

// serve 运行演示服务直到收到信号或 ctx 取消
func serve(ctx context.Context, path string, logOut io.Writer, runOpts ...xrun.Option) (err error) {
	conf, cfg, err := loadConfig(path)
	if err != nil {
		return err
	}

	logger, cleanup, err := buildLogger(cfg.Log, cfg.OTel.ServiceName, logOut)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, cleanup()) }()

	provider, err := xotel.New(ctx, cfg.OTel)
	if err != nil {
		return err
	}
	provider.SetGlobal()
	defer func() { err = errors.Join(err, provider.Shutdown(context.WithoutCancel(ctx))) }()

	recorder, err := xmetrics.NewOTelRecorder(xmetrics.WithMeterProvider(provider.MeterProvider()))
	if err != nil {
		return err
	}
	traceOpts, err := cfg.Trace.Options()
	if err != nil {
		return fmt.Errorf("trace: %w", err)
	}
	traceOpts = append(traceOpts,
		xtrace.WithTracerProvider(provider.TracerProvider()),
		xtrace.WithPropagator(provider.Propagator()),
		xtrace.WithRecorder(recorder),
	)

	handler, err := newHandler(handlerDeps{
		logger:       logger,
		metrics:      provider.MetricsHandler(),
		traceOptions: traceOpts,
	})
	if err != nil {
		return err
	}
	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	services := []func(context.Context) error{xrun.HTTPServer(server, cfg.Server.ShutdownTimeout)}
	if conf.Path() != "" {
		var watcher *xconf.Watcher
		if watcher, err = xconf.Watch(conf, reloadLogLevel(ctx, logger)); err != nil {
			return err
		}
		services = append(services, watcher.Run)
	}

	logger.Info(ctx, "xtraced listening",
		slog.String("addr", cfg.Server.Addr),
		slog.String("config", conf.Path()),
	)
	opts := append([]xrun.Option{xrun.WithLogger(logger), xrun.WithName("xtraced")}, runOpts...)
	err = xrun.RunWithOptions(ctx, opts, services...)
	if errors.Is(err, xrun.ErrSignal) {
		logger.Info(ctx, "xtraced stopped", xlog.Err(err))
		return nil
	}
	return err
}

// reloadLogLevel 配置文件变更后只热更新日志级别，其余段需重启生效
func reloadLogLevel(ctx context.Context, logger xlog.LoggerWithLevel) xconf.WatchCallback {
	return func(conf xconf.Config, err error) {
		if err != nil {
			logger.Warn(ctx, "config reload failed", xlog.Err(err))
			return
		}
		level, err := xlog.ParseLevel(conf.Client().String("log.level"))
		if err != nil {
			logger.Warn(ctx, "config reload: invalid log level", xlog.Err(err))
			return
		}
		if level != logger.GetLevel() {
			logger.SetLevel(level)
			logger.Info(ctx, "log level changed", slog.String("level", level.String()))
		}
	}
}
