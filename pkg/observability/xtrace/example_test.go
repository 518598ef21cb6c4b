package xtrace_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/omeyang/xtracekit/pkg/observability/xtrace"
)

func ExampleRequestTracing() {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	mux := http.NewServeMux()
	xtrace.HandleRouteFunc(mux, "GET /api/org/{id}/preferences", "", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	handler := xtrace.RequestTracing(xtrace.WithTracerProvider(tp))(mux)

	req := httptest.NewRequest(http.MethodGet, "/api/org/1/preferences", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	span := exporter.GetSpans()[0]
	fmt.Println(span.Name)
	fmt.Println(span.Status.Description)
	fmt.Println(span.Links[0].SpanContext.TraceID())
	// Output:
	// HTTP GET /api/org/:id/preferences
	// error with HTTP status code 403
	// 4bf92f3577b34da6a3ce929d0e0e4736
}

func ExampleWithRouteOperationName() {
	ctx := xtrace.WithRouteOperationName(context.Background(), "/api/dashboards/uid/:uid")
	name, found := xtrace.RouteOperationNameFrom(ctx)
	fmt.Println(name, found)

	_, found = xtrace.RouteOperationNameFrom(context.Background())
	fmt.Println(found)
	// Output:
	// /api/dashboards/uid/:uid true
	// false
}
