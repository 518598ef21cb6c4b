package xlog_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/omeyang/xtracekit/pkg/context/xctx"
	"github.com/omeyang/xtracekit/pkg/observability/xlog"
)

func testCleanup(t *testing.T, cleanup func() error) {
	t.Helper()
	t.Cleanup(func() {
		if err := cleanup(); err != nil {
			t.Errorf("cleanup error: %v", err)
		}
	})
}

// =============================================================================
// Logger
// =============================================================================

func TestLogger_BasicLogging(t *testing.T) {
	var buf bytes.Buffer
	logger, cleanup, err := xlog.New().
		SetOutput(&buf).
		SetLevel(xlog.LevelDebug).
		Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	testCleanup(t, cleanup)

	ctx := context.Background()
	logger.Debug(ctx, "debug message")
	logger.Info(ctx, "info message")
	logger.Warn(ctx, "warn message")
	logger.Error(ctx, "error message")

	output := buf.String()
	for _, want := range []string{"debug message", "info message", "warn message", "error message"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q\noutput: %s", want, output)
		}
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, cleanup, err := xlog.New().
		SetOutput(&buf).
		SetLevelString(" WARN ").
		Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	testCleanup(t, cleanup)

	ctx := context.Background()
	logger.Info(ctx, "hidden")
	logger.Warn(ctx, "shown")
	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("info should be filtered at warn level: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("warn should be logged: %s", buf.String())
	}

	logger.SetLevel(xlog.LevelDebug)
	if got := logger.GetLevel(); got != xlog.LevelDebug {
		t.Errorf("GetLevel() = %v, want DEBUG", got)
	}
	if !logger.Enabled(ctx, xlog.LevelDebug) {
		t.Error("debug should be enabled after SetLevel")
	}

	child := logger.With(slog.String("k", "v"))
	child.Debug(ctx, "child debug")
	if !strings.Contains(buf.String(), "child debug") {
		t.Errorf("derived logger should share level: %s", buf.String())
	}
}

func TestLogger_WithGroup(t *testing.T) {
	var buf bytes.Buffer
	logger, cleanup, err := xlog.New().
		SetOutput(&buf).
		SetFormat("JSON").
		Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	testCleanup(t, cleanup)

	logger.WithGroup("request").Info(context.Background(), "grouped", xlog.Method("GET"))

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, buf.String())
	}
	group, ok := m["request"].(map[string]any)
	if !ok {
		t.Fatalf("missing group in %v", m)
	}
	if group[xlog.KeyMethod] != "GET" {
		t.Errorf("group attr = %v, want GET", group[xlog.KeyMethod])
	}
}

func TestLogger_Stack(t *testing.T) {
	var buf bytes.Buffer
	logger, cleanup, err := xlog.New().SetOutput(&buf).Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	testCleanup(t, cleanup)

	logger.Stack(context.Background(), "boom", xlog.Panic("bad"))
	output := buf.String()
	if !strings.Contains(output, "stack=") || !strings.Contains(output, "goroutine") {
		t.Errorf("stack output missing goroutine trace: %s", output)
	}
}

func TestLogger_NilContext(t *testing.T) {
	var buf bytes.Buffer
	logger, cleanup, err := xlog.New().SetOutput(&buf).Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	testCleanup(t, cleanup)

	//nolint:staticcheck // 验证 nil ctx 不 panic
	logger.Info(nil, "nil ctx")
	if !strings.Contains(buf.String(), "nil ctx") {
		t.Errorf("nil ctx should still log: %s", buf.String())
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestLogger_OnError(t *testing.T) {
	var got []error
	logger, cleanup, err := xlog.New().
		SetOutput(failingWriter{}).
		SetOnError(func(err error) { got = append(got, err) }).
		Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	testCleanup(t, cleanup)

	logger.Info(context.Background(), "lost")
	if len(got) != 1 {
		t.Fatalf("onError called %d times, want 1", len(got))
	}
}

func TestLogger_OnErrorPanicIsolated(t *testing.T) {
	logger, cleanup, err := xlog.New().
		SetOutput(failingWriter{}).
		SetOnError(func(error) { panic("callback") }).
		Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	testCleanup(t, cleanup)

	logger.Error(context.Background(), "must not panic")
}

// =============================================================================
// Builder
// =============================================================================

func TestBuilder_Errors(t *testing.T) {
	tests := []struct {
		name    string
		builder *xlog.Builder
		want    error
	}{
		{"未知级别", xlog.New().SetLevelString("verbose"), xlog.ErrUnknownLevel},
		{"未知格式", xlog.New().SetFormat("xml"), xlog.ErrUnknownFormat},
		{"nil 输出", xlog.New().SetOutput(nil), xlog.ErrNilOutput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := tt.builder.Build()
			if !errors.Is(err, tt.want) {
				t.Errorf("Build() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestBuilder_ServiceAndReplaceAttr(t *testing.T) {
	var buf bytes.Buffer
	logger, cleanup, err := xlog.New().
		SetOutput(&buf).
		SetService("xtraced").
		SetReplaceAttr(func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == "authorization" {
				return slog.String(a.Key, "***")
			}
			return a
		}).
		Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	testCleanup(t, cleanup)

	logger.Info(context.Background(), "req", slog.String("authorization", "Bearer secret"))
	output := buf.String()
	if !strings.Contains(output, "service=xtraced") {
		t.Errorf("missing service attr: %s", output)
	}
	if strings.Contains(output, "secret") {
		t.Errorf("authorization should be redacted: %s", output)
	}
}

func TestBuilder_Rotation(t *testing.T) {
	file := filepath.Join(t.TempDir(), "xtraced.log")
	logger, cleanup, err := xlog.New().
		SetRotation(file).
		Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	logger.Info(context.Background(), "to file")
	if err := cleanup(); err != nil {
		t.Fatalf("cleanup error: %v", err)
	}
}

func TestBuilder_RotationInvalid(t *testing.T) {
	_, _, err := xlog.New().SetRotation("").Build()
	if err == nil {
		t.Fatal("empty rotation filename should fail")
	}
}

// =============================================================================
// context 字段注入
// =============================================================================

func TestLogger_EnrichFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger, cleanup, err := xlog.New().SetOutput(&buf).SetFormat("json").Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	testCleanup(t, cleanup)

	ctx, _ := xctx.WithTraceID(context.Background(), "4bf92f3577b34da6a3ce929d0e0e4736")
	ctx, _ = xctx.WithRouteOperationName(ctx, "/api/org/:id/preferences")
	logger.Info(ctx, "served")

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if m[xctx.KeyTraceID] != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("trace_id = %v", m[xctx.KeyTraceID])
	}
	if m[xctx.KeyRoute] != "/api/org/:id/preferences" {
		t.Errorf("route = %v", m[xctx.KeyRoute])
	}
}

func TestLogger_EnrichDisabled(t *testing.T) {
	var buf bytes.Buffer
	logger, cleanup, err := xlog.New().SetOutput(&buf).SetEnrich(false).Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	testCleanup(t, cleanup)

	ctx, _ := xctx.WithTraceID(context.Background(), "t-1")
	logger.Info(ctx, "plain")
	if strings.Contains(buf.String(), "trace_id") {
		t.Errorf("enrich disabled but trace_id present: %s", buf.String())
	}
}
