package xlog_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/omeyang/xtracekit/pkg/context/xctx"
	"github.com/omeyang/xtracekit/pkg/observability/xlog"
)

func TestEnrichHandler(t *testing.T) {
	tests := []struct {
		name       string
		setupCtx   func(context.Context) context.Context
		wantValues []string
		notWant    []string
	}{
		{
			name: "trace",
			setupCtx: func(ctx context.Context) context.Context {
				ctx, _ = xctx.WithTraceID(ctx, "trace-123")
				ctx, _ = xctx.WithSpanID(ctx, "span-456")
				return ctx
			},
			wantValues: []string{`"trace_id":"trace-123"`, `"span_id":"span-456"`},
			notWant:    []string{`"route"`},
		},
		{
			name: "route_slot",
			setupCtx: func(ctx context.Context) context.Context {
				ctx, _ = xctx.WithRouteSlot(ctx)
				// 下游写入槽位后，入口 ctx 即可读到路由名
				_, _ = xctx.WithRouteOperationName(ctx, "/api/dashboards/uid/:uid")
				return ctx
			},
			wantValues: []string{`"route":"/api/dashboards/uid/:uid"`},
		},
		{
			name:       "empty",
			setupCtx:   func(ctx context.Context) context.Context { return ctx },
			wantValues: []string{"test message"},
			notWant:    []string{"trace_id", "route"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			handler, err := xlog.NewEnrichHandler(slog.NewJSONHandler(&buf, nil))
			if err != nil {
				t.Fatalf("NewEnrichHandler() error: %v", err)
			}
			slog.New(handler).InfoContext(tt.setupCtx(context.Background()), "test message")

			output := buf.String()
			for _, want := range tt.wantValues {
				if !strings.Contains(output, want) {
					t.Errorf("output missing %q\noutput: %s", want, output)
				}
			}
			for _, nw := range tt.notWant {
				if strings.Contains(output, nw) {
					t.Errorf("output should not contain %q\noutput: %s", nw, output)
				}
			}
		})
	}
}

func TestNewEnrichHandler_Nil(t *testing.T) {
	_, err := xlog.NewEnrichHandler(nil)
	if !errors.Is(err, xlog.ErrNilHandler) {
		t.Errorf("err = %v, want ErrNilHandler", err)
	}
}

func TestEnrichHandler_WithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	handler, err := xlog.NewEnrichHandler(slog.NewJSONHandler(&buf, nil))
	if err != nil {
		t.Fatalf("NewEnrichHandler() error: %v", err)
	}

	h := handler.WithAttrs([]slog.Attr{slog.String("svc", "a")}).WithGroup("g")
	if _, ok := h.(*xlog.EnrichHandler); !ok {
		t.Fatalf("derived handler type = %T, want *EnrichHandler", h)
	}

	ctx, _ := xctx.WithRequestID(context.Background(), "req-1")
	slog.New(h).InfoContext(ctx, "m")
	if !strings.Contains(buf.String(), `"g":{"request_id":"req-1"}`) {
		t.Errorf("enrich attrs should be inside group: %s", buf.String())
	}
}
