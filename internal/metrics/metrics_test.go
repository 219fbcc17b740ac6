package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInitPinsBuildInfo(t *testing.T) {
	Init("v1.0.0", "abc123", "2026-01-30")

	if got := testutil.ToFloat64(AppInfo.WithLabelValues("v1.0.0", "abc123", "2026-01-30")); got != 1 {
		t.Errorf("app_info gauge = %v, want 1", got)
	}
}

func TestEngineCounters(t *testing.T) {
	cases := []struct {
		name string
		read func() float64
		bump func()
	}{
		{
			name: "registrations by outcome",
			read: func() float64 { return testutil.ToFloat64(RegistrationsTotal.WithLabelValues("waitlisted")) },
			bump: func() { RegistrationsTotal.WithLabelValues("waitlisted").Inc() },
		},
		{
			name: "unregistrations",
			read: func() float64 { return testutil.ToFloat64(UnregistrationsTotal) },
			bump: func() { UnregistrationsTotal.Inc() },
		},
		{
			name: "promotions",
			read: func() float64 { return testutil.ToFloat64(PromotionsTotal) },
			bump: func() { PromotionsTotal.Inc() },
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			before := tc.read()
			tc.bump()
			if got := tc.read(); got != before+1 {
				t.Errorf("counter went %v -> %v, want +1", before, got)
			}
		})
	}
}

func TestHTTPMiddlewareRecordsRequest(t *testing.T) {
	wrapped := HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OK"))
	}))

	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/anything", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if testutil.CollectAndCount(RequestsTotal) == 0 {
		t.Error("request counter recorded nothing")
	}
	if testutil.CollectAndCount(RequestLatency) == 0 {
		t.Error("latency histogram recorded nothing")
	}
}

func TestHTTPMiddlewarePreservesStatus(t *testing.T) {
	for _, status := range []int{
		http.StatusOK,
		http.StatusCreated,
		http.StatusNotFound,
		http.StatusConflict,
		http.StatusInternalServerError,
	} {
		wrapped := HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		rec := httptest.NewRecorder()
		wrapped.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

		if rec.Code != status {
			t.Errorf("status = %d, want %d", rec.Code, status)
		}
	}
}

func TestHTTPMiddlewareLabelsByRoute(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/events/{id}/capacity", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	wrapped := HTTPMiddleware(mux)
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/events/ev1/capacity", nil))

	// The matched pattern, not the raw path, labels the counter so
	// event IDs do not explode cardinality.
	got := testutil.ToFloat64(RequestsTotal.WithLabelValues(http.MethodGet, "GET /api/v1/events/{id}/capacity", "200"))
	if got == 0 {
		t.Error("request not counted under the matched mux pattern")
	}
}

func TestPoolStatsCollectorNilPool(t *testing.T) {
	collector := NewPoolStatsCollector(nil)

	// A nil pool yields descriptors but no samples.
	if got := testutil.CollectAndCount(collector); got != 0 {
		t.Errorf("samples from nil pool = %d, want 0", got)
	}
}

func TestStatusWriterDefaultsTo200(t *testing.T) {
	sw := &statusWriter{ResponseWriter: httptest.NewRecorder()}

	if _, err := sw.Write([]byte("body")); err != nil {
		t.Fatal(err)
	}
	if sw.status != http.StatusOK {
		t.Errorf("status = %d, want 200", sw.status)
	}
}
