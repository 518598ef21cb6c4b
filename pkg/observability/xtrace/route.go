package xtrace

import (
	"context"
	"net/http"
	"strings"

	"github.com/omeyang/xtracekit/pkg/context/xctx"
)

// WithRouteOperationName 返回携带路由操作名的派生 context
//
// 与 xctx.WithRouteOperationName 不同，本函数不返回错误：
// nil ctx 视为 context.Background()，空 name 原样返回 ctx。
// 位于 RequestTracing 之下时，名称同时写入请求的路由名槽位，中间件据此重命名 span。
func WithRouteOperationName(ctx context.Context, name string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	out, err := xctx.WithRouteOperationName(ctx, name)
	if err != nil {
		return ctx
	}
	return out
}

// RouteOperationNameFrom 读取路由操作名，未设置时 found 为 false
func RouteOperationNameFrom(ctx context.Context) (name string, found bool) {
	return xctx.RouteOperationName(ctx)
}

// RouteOperationName 返回为请求设置固定路由操作名的中间件
func RouteOperationName(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithRouteOperationName(r.Context(), name)))
		})
	}
}

// HandleRoute 在 mux 上注册 handler，并以 operationName 命名该路由
//
// operationName 为空时由 pattern 推导："GET /api/org/{id}/preferences" 得到
// "/api/org/:id/preferences"。
func HandleRoute(mux *http.ServeMux, pattern, operationName string, handler http.Handler) {
	if operationName == "" {
		operationName = OperationNameFromPattern(pattern)
	}
	mux.Handle(pattern, RouteOperationName(operationName)(handler))
}

// HandleRouteFunc 同 HandleRoute，接受 handler 函数
func HandleRouteFunc(mux *http.ServeMux, pattern, operationName string, fn func(http.ResponseWriter, *http.Request)) {
	HandleRoute(mux, pattern, operationName, http.HandlerFunc(fn))
}

// OperationNameFromPattern 将 ServeMux pattern 转为路由操作名
//
// 去掉方法与主机部分，{name} 转为 :name，{name...} 转为 *name，{$} 去掉。
func OperationNameFromPattern(pattern string) string {
	p := strings.TrimSpace(pattern)
	if i := strings.IndexAny(p, " \t"); i >= 0 {
		p = strings.TrimSpace(p[i+1:])
	}
	if i := strings.IndexByte(p, '/'); i > 0 {
		p = p[i:]
	}

	var b strings.Builder
	b.Grow(len(p))
	for len(p) > 0 {
		open := strings.IndexByte(p, '{')
		if open < 0 {
			b.WriteString(p)
			break
		}
		closing := strings.IndexByte(p[open:], '}')
		if closing < 0 {
			b.WriteString(p)
			break
		}
		b.WriteString(p[:open])

		wildcard := p[open+1 : open+closing]
		switch {
		case wildcard == "$":
		case strings.HasSuffix(wildcard, "..."):
			b.WriteString("*" + strings.TrimSuffix(wildcard, "..."))
		default:
			b.WriteString(":" + wildcard)
		}
		p = p[open+closing+1:]
	}
	return b.String()
}
