package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// captureSpans installs an in-memory exporter for the duration of the
// test and returns it.
func captureSpans(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		_ = provider.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})
	return exporter
}

func spanAttr(span tracetest.SpanStub, key attribute.Key) (attribute.Value, bool) {
	for _, attr := range span.Attributes {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTracingCreatesServerSpan(t *testing.T) {
	exporter := captureSpans(t)

	handler := Tracing(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/registrations/status", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	span := spans[0]
	require.Equal(t, "GET /api/v1/registrations/status", span.Name)

	method, ok := spanAttr(span, "http.method")
	require.True(t, ok)
	require.Equal(t, "GET", method.AsString())

	url, ok := spanAttr(span, "http.url")
	require.True(t, ok)
	require.Contains(t, url.AsString(), "/api/v1/registrations/status")

	status, ok := spanAttr(span, "http.status_code")
	require.True(t, ok)
	require.EqualValues(t, http.StatusOK, status.AsInt64())
}

func TestTracingMarksErrorStatus(t *testing.T) {
	exporter := captureSpans(t)

	handler := Tracing(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such thing", http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events/nope", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)

	span := spans[0]
	require.Equal(t, codes.Error, span.Status.Code)

	status, ok := spanAttr(span, "http.status_code")
	require.True(t, ok)
	require.EqualValues(t, http.StatusNotFound, status.AsInt64())
}

func TestStatusRecorderDefaults(t *testing.T) {
	rec := &statusRecorder{ResponseWriter: httptest.NewRecorder()}

	// Nothing written yet: report 200.
	require.Equal(t, http.StatusOK, rec.statusCode())

	// A bare Write implies 200.
	_, err := rec.Write([]byte("hello"))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.statusCode())
	require.Equal(t, 5, rec.bytes)
}

func TestStatusRecorderKeepsFirstStatus(t *testing.T) {
	rec := &statusRecorder{ResponseWriter: httptest.NewRecorder()}

	rec.WriteHeader(http.StatusTeapot)
	rec.WriteHeader(http.StatusOK)

	require.Equal(t, http.StatusTeapot, rec.statusCode())
}
