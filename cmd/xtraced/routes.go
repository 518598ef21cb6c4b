package main

import (
	"embed"
	"encoding/json"
	"io/fs"
	"net/http"

	"github.com/omeyang/xtracekit/pkg/context/xctx"
	"github.com/omeyang/xtracekit/pkg/observability/xlog"
	"github.com/omeyang/xtracekit/pkg/observability/xtrace"
)

// HeaderOrgRole 演示用的角色头，只有 admin 能读取组织偏好
const HeaderOrgRole = "X-Org-Role"

//go:embed public
var publicFiles embed.FS

type handlerDeps struct {
	logger       xlog.Logger
	metrics      http.Handler
	traceOptions []xtrace.Option
}

// newHandler 注册演示路由并包上请求追踪中间件
func newHandler(deps handlerDeps) (http.Handler, error) {
	public, err := fs.Sub(publicFiles, "public")
	if err != nil {
		return nil, err
	}
	logger := deps.logger
	if logger == nil {
		logger = xlog.Default()
	}

	mux := http.NewServeMux()
	xtrace.HandleRouteFunc(mux, "/api/org/preferences/{$}", "", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(HeaderOrgRole) != "admin" {
			logger.Info(r.Context(), "org preferences denied", xlog.Method(r.Method), xlog.Path(r.URL.Path))
			writeJSON(w, r, http.StatusForbidden, map[string]string{"error": "insufficient role"})
			return
		}
		writeJSON(w, r, http.StatusOK, map[string]string{"theme": "light"})
	})
	xtrace.HandleRouteFunc(mux, "GET /api/org/{id}/preferences", "", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, map[string]string{"org": r.PathValue("id"), "theme": "light"})
	})
	if deps.metrics != nil {
		mux.Handle("GET /metrics", deps.metrics)
	}
	mux.Handle("/public/", http.StripPrefix("/public/", http.FileServerFS(public)))
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("User-agent: *\nDisallow: /api/\n"))
	})

	opts := append([]xtrace.Option{xtrace.WithLogger(logger)}, deps.traceOptions...)
	return xtrace.RequestTracing(opts...)(mux), nil
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	if id := xctx.RequestID(r.Context()); id != "" {
		w.Header().Set(xtrace.HeaderRequestID, id)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
