package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/omeyang/xtracekit/pkg/config/xconf"
	"github.com/omeyang/xtracekit/pkg/context/xenv"
	"github.com/omeyang/xtracekit/pkg/observability/xlog"
	"github.com/omeyang/xtracekit/pkg/observability/xotel"
	"github.com/omeyang/xtracekit/pkg/observability/xrotate"
	"github.com/omeyang/xtracekit/pkg/observability/xtrace"
)

// envPrefix 环境变量覆盖前缀，如 XTRACED_SERVER__ADDR
const envPrefix = "XTRACED_"

type logConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`

	// File 非空时写入按大小轮转的文件
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
}

type serverConfig struct {
	Addr            string        `koanf:"addr"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type serviceConfig struct {
	Log    logConfig     `koanf:"log"`
	Trace  xtrace.Config `koanf:"trace"`
	OTel   xotel.Config  `koanf:"otel"`
	Server serverConfig  `koanf:"server"`
}

func defaults() map[string]any {
	return map[string]any{
		"log.level":               "info",
		"log.format":              "json",
		"trace.static_prefix":     xtrace.DefaultStaticPrefix,
		"trace.bypass_file":       xtrace.DefaultBypassFile,
		"otel.service_name":       "xtraced",
		"otel.service_version":    Version,
		"server.addr":             ":8080",
		"server.shutdown_timeout": "10s",
	}
}

// loadConfig path 为空时只使用默认值与环境变量
func loadConfig(path string) (xconf.Config, *serviceConfig, error) {
	opts := []xconf.Option{xconf.WithDefaults(defaults()), xconf.WithEnvPrefix(envPrefix)}

	var (
		conf xconf.Config
		err  error
	)
	if path == "" {
		conf, err = xconf.NewFromBytes(nil, xconf.FormatYAML, opts...)
	} else {
		conf, err = xconf.New(path, opts...)
	}
	if err != nil {
		return nil, nil, err
	}

	cfg, err := decodeConfig(conf)
	if err != nil {
		return nil, nil, err
	}
	return conf, cfg, nil
}

func decodeConfig(conf xconf.Config) (*serviceConfig, error) {
	cfg := &serviceConfig{}
	if err := conf.Unmarshal("", cfg); err != nil {
		return nil, err
	}
	if _, err := xlog.ParseLevel(cfg.Log.Level); err != nil {
		return nil, fmt.Errorf("log.level: %w", err)
	}
	if cfg.OTel.Environment == "" {
		dt, err := xenv.Detect()
		switch {
		case err == nil:
			cfg.OTel.Environment = dt.Environment()
		case !errors.Is(err, xenv.ErrMissingEnv):
			return nil, err
		}
	}
	if err := cfg.OTel.Validate(); err != nil {
		return nil, fmt.Errorf("otel: %w", err)
	}
	return cfg, nil
}

// buildLogger 未配置文件时写入 out，返回的 cleanup 负责关闭轮转文件
func buildLogger(cfg logConfig, service string, out io.Writer) (xlog.LoggerWithLevel, func() error, error) {
	b := xlog.New().
		SetOutput(out).
		SetLevelString(cfg.Level).
		SetFormat(cfg.Format).
		SetService(service)
	if cfg.File != "" {
		var ropts []xrotate.Option
		if cfg.MaxSizeMB > 0 {
			ropts = append(ropts, xrotate.WithMaxSize(cfg.MaxSizeMB))
		}
		if cfg.MaxBackups > 0 {
			ropts = append(ropts, xrotate.WithMaxBackups(cfg.MaxBackups))
		}
		if cfg.MaxAgeDays > 0 {
			ropts = append(ropts, xrotate.WithMaxAge(cfg.MaxAgeDays))
		}
		b = b.SetRotation(cfg.File, ropts...)
	}
	return b.Build()
}
