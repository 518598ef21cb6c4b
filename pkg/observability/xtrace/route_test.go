package xtrace_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xtracekit/pkg/observability/xtrace"
)

func TestRouteOperationNameFrom_Fresh(t *testing.T) {
	name, found := xtrace.RouteOperationNameFrom(context.Background())
	assert.False(t, found)
	assert.Empty(t, name)
}

func TestWithRouteOperationName(t *testing.T) {
	parent := context.Background()
	ctx := xtrace.WithRouteOperationName(parent, "/api/org/preferences/")

	name, found := xtrace.RouteOperationNameFrom(ctx)
	assert.True(t, found)
	assert.Equal(t, "/api/org/preferences/", name)

	_, found = xtrace.RouteOperationNameFrom(parent)
	assert.False(t, found, "parent context must stay unchanged")
}

func TestWithRouteOperationName_NeverFails(t *testing.T) {
	//nolint:staticcheck // nil ctx 被规范化
	ctx := xtrace.WithRouteOperationName(nil, "/api/x")
	require.NotNil(t, ctx)
	name, found := xtrace.RouteOperationNameFrom(ctx)
	assert.True(t, found)
	assert.Equal(t, "/api/x", name)

	base := context.Background()
	assert.Equal(t, base, xtrace.WithRouteOperationName(base, ""))
}

func TestHandleRoute(t *testing.T) {
	mux := http.NewServeMux()

	var got string
	capture := func(_ http.ResponseWriter, r *http.Request) {
		got, _ = xtrace.RouteOperationNameFrom(r.Context())
	}
	xtrace.HandleRouteFunc(mux, "GET /api/org/{id}/preferences", "", capture)
	xtrace.HandleRouteFunc(mux, "GET /api/search", "search", capture)

	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/org/7/preferences", nil))
	assert.Equal(t, "/api/org/:id/preferences", got)

	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/search", nil))
	assert.Equal(t, "search", got)
}

func TestOperationNameFromPattern(t *testing.T) {
	tests := map[string]string{
		"/api/search":                     "/api/search",
		"GET /api/org/{id}/preferences":   "/api/org/:id/preferences",
		"POST example.com/api/{uid}":      "/api/:uid",
		"/public/{path...}":               "/public/*path",
		"GET /api/{$}":                    "/api/",
		"/api/{org}/teams/{team}/members": "/api/:org/teams/:team/members",
		"/api/{broken":                    "/api/{broken",
	}
	for pattern, want := range tests {
		assert.Equal(t, want, xtrace.OperationNameFromPattern(pattern), "pattern=%q", pattern)
	}
}
