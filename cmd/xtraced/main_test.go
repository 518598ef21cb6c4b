package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/goleak"

	"github.com/omeyang/xtracekit/pkg/config/xconf"
	"github.com/omeyang/xtracekit/pkg/context/xenv"
	"github.com/omeyang/xtracekit/pkg/lifecycle/xrun"
	"github.com/omeyang/xtracekit/pkg/observability/xlog"
	"github.com/omeyang/xtracekit/pkg/observability/xotel"
	"github.com/omeyang/xtracekit/pkg/observability/xtrace"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// log.file 经 xrotate 使用 lumberjack，其 millRun goroutine 在 Close 后仍驻留
		goleak.IgnoreTopFunction("gopkg.in/natefinch/lumberjack%2ev2.(*Logger).millRun"),
	)
}

// syncBuffer 供 logger 与测试并发读写
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "xtraced.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

// =============================================================================
// CLI
// =============================================================================

func TestRun_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"xtraced", "version"}, &stdout, &stderr)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), Version)
	assert.Contains(t, stdout.String(), GitCommit)
}

func TestRun_ServeBadConfig(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"xtraced", "serve", "--config", "missing.toml"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "unsupported config format")
}

func TestRun_UnknownFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 1, run(context.Background(), []string{"xtraced", "serve", "--bogus"}, &stdout, &stderr))
}

// =============================================================================
// 配置
// =============================================================================

func TestLoadConfig_Defaults(t *testing.T) {
	conf, cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Empty(t, conf.Path())
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, xtrace.DefaultStaticPrefix, cfg.Trace.StaticPrefix)
	assert.Equal(t, xtrace.DefaultBypassFile, cfg.Trace.BypassFile)
	assert.Equal(t, "xtraced", cfg.OTel.ServiceName)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
  format: text
trace:
  static_prefix: /assets/
  sample_rate: 0.5
  sample_by_path: true
otel:
  service_name: prefs
  sample_ratio: 0.25
server:
  addr: ":9090"
`)
	t.Setenv("XTRACED_SERVER__ADDR", ":7070")
	t.Setenv("XTRACED_OTEL__ENVIRONMENT", "staging")

	_, cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/assets/", cfg.Trace.StaticPrefix)
	assert.Equal(t, xtrace.DefaultBypassFile, cfg.Trace.BypassFile)
	assert.True(t, cfg.Trace.SampleByPath)
	assert.Equal(t, "prefs", cfg.OTel.ServiceName)
	assert.Equal(t, "staging", cfg.OTel.Environment)
	assert.InDelta(t, 0.25, cfg.OTel.SampleRatio, 1e-9)
	assert.Equal(t, ":7070", cfg.Server.Addr)

	opts, err := cfg.Trace.Options()
	require.NoError(t, err)
	assert.NotEmpty(t, opts)
}

func TestLoadConfig_Invalid(t *testing.T) {
	_, _, err := loadConfig(writeConfig(t, "log:\n  level: loud\n"))
	assert.ErrorIs(t, err, xlog.ErrUnknownLevel)

	_, _, err = loadConfig(writeConfig(t, "otel:\n  sample_ratio: 2\n"))
	assert.ErrorIs(t, err, xotel.ErrInvalidSampleRatio)

	_, _, err = loadConfig(writeConfig(t, "otel:\n  service_name: \"\"\n"))
	assert.ErrorIs(t, err, xotel.ErrEmptyServiceName)
}

func TestLoadConfig_DeploymentType(t *testing.T) {
	t.Setenv(xenv.EnvDeploymentType, "SaaS")
	_, cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "saas", cfg.OTel.Environment)

	t.Setenv("XTRACED_OTEL__ENVIRONMENT", "prod")
	_, cfg, err = loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "prod", cfg.OTel.Environment, "explicit config wins")

	t.Setenv("XTRACED_OTEL__ENVIRONMENT", "")
	t.Setenv(xenv.EnvDeploymentType, "hybrid")
	_, _, err = loadConfig("")
	assert.ErrorIs(t, err, xenv.ErrInvalidDeploymentType)
}

func TestBuildLogger(t *testing.T) {
	var out syncBuffer
	logger, cleanup, err := buildLogger(logConfig{Level: "warn", Format: "json"}, "xtraced", &out)
	require.NoError(t, err)
	defer func() { require.NoError(t, cleanup()) }()

	logger.Info(context.Background(), "hidden")
	logger.Warn(context.Background(), "shown")
	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), `"service":"xtraced"`)

	_, _, err = buildLogger(logConfig{Level: "info", Format: "xml"}, "", &out)
	assert.ErrorIs(t, err, xlog.ErrUnknownFormat)
}

func TestBuildLogger_File(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "xtraced.log")
	logger, cleanup, err := buildLogger(logConfig{
		Level: "info", Format: "text", File: file, MaxSizeMB: 1, MaxBackups: 2, MaxAgeDays: 3,
	}, "xtraced", os.Stderr)
	require.NoError(t, err)

	logger.Info(context.Background(), "to file")
	require.NoError(t, cleanup())

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}

func TestReloadLogLevel(t *testing.T) {
	var out syncBuffer
	logger, _, err := buildLogger(logConfig{Level: "info", Format: "text"}, "", &out)
	require.NoError(t, err)
	cb := reloadLogLevel(context.Background(), logger)

	conf, err := xconf.NewFromBytes([]byte("log:\n  level: debug\n"), xconf.FormatYAML)
	require.NoError(t, err)
	cb(conf, nil)
	assert.Equal(t, xlog.LevelDebug, logger.GetLevel())
	assert.Contains(t, out.String(), "log level changed")

	bad, err := xconf.NewFromBytes([]byte("log:\n  level: loud\n"), xconf.FormatYAML)
	require.NoError(t, err)
	cb(bad, nil)
	assert.Equal(t, xlog.LevelDebug, logger.GetLevel())

	cb(conf, errors.New("parse failed"))
	assert.Contains(t, out.String(), "config reload failed")
}

// =============================================================================
// 路由
// =============================================================================

func newTestHandler(t *testing.T) (http.Handler, *tracetest.InMemoryExporter) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	h, err := newHandler(handlerDeps{
		metrics: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("metrics"))
		}),
		traceOptions: []xtrace.Option{xtrace.WithTracerProvider(tp)},
	})
	require.NoError(t, err)
	return h, exporter
}

func TestHandler_Routes(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		target   string
		role     string
		status   int
		span     string
		bodyPart string
	}{
		{"偏好拒绝", http.MethodGet, "/api/org/preferences/", "viewer", http.StatusForbidden, "HTTP GET /api/org/preferences/", "insufficient role"},
		{"偏好允许", http.MethodPost, "/api/org/preferences/", "admin", http.StatusOK, "HTTP POST /api/org/preferences/", "light"},
		{"按 id", http.MethodGet, "/api/org/42/preferences", "", http.StatusOK, "HTTP GET /api/org/:id/preferences", `"org":"42"`},
		{"指标", http.MethodGet, "/metrics", "", http.StatusOK, "HTTP GET /metrics", "metrics"},
		{"未注册", http.MethodGet, "/api/unknown", "", http.StatusNotFound, "HTTP GET /api/unknown", ""},
		{"静态文件", http.MethodGet, "/public/hello.txt", "", http.StatusOK, "", "static asset"},
		{"robots", http.MethodGet, "/robots.txt", "", http.StatusOK, "", "Disallow"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, exporter := newTestHandler(t)
			req := httptest.NewRequest(tt.method, tt.target, nil)
			if tt.role != "" {
				req.Header.Set(HeaderOrgRole, tt.role)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.bodyPart)

			spans := exporter.GetSpans()
			if tt.span == "" {
				assert.Empty(t, spans)
				return
			}
			require.Len(t, spans, 1)
			assert.Equal(t, tt.span, spans[0].Name)
		})
	}
}

func TestHandler_ForbiddenLinksUpstream(t *testing.T) {
	h, exporter := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/api/org/preferences/", nil)
	req.Header.Set(xtrace.HeaderTraceparent, "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	req.Header.Set(xtrace.HeaderRequestID, "req-403")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "req-403", w.Header().Get(xtrace.HeaderRequestID))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	require.Len(t, spans[0].Links, 1)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", spans[0].Links[0].SpanContext.TraceID().String())
	assert.True(t, strings.Contains(spans[0].Status.Description, "403"))
}

// =============================================================================
// serve
// =============================================================================

func TestServe_StopsOnCancel(t *testing.T) {
	prevTP, prevMP, prevProp := otel.GetTracerProvider(), otel.GetMeterProvider(), otel.GetTextMapPropagator()
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetMeterProvider(prevMP)
		otel.SetTextMapPropagator(prevProp)
	})

	path := writeConfig(t, `
log:
  level: debug
server:
  addr: "127.0.0.1:0"
  shutdown_timeout: 1s
`)
	var logs syncBuffer
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, path, &logs, xrun.WithoutSignalHandler()) }()

	require.Eventually(t, func() bool {
		return strings.Contains(logs.String(), "xtraced listening")
	}, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop")
	}
}
