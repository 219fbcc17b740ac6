package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
)

// secureGet runs one GET through SecurityHeaders and returns the
// response headers. overTLS attaches a fake TLS state to the request.
func secureGet(t *testing.T, requireHTTPS, overTLS bool) http.Header {
	t.Helper()

	target := "/api/v1/events/ev1"
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if overTLS {
		req = httptest.NewRequest(http.MethodGet, "https://guestlist.dev"+target, nil)
		req.TLS = &tls.ConnectionState{}
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	rec := httptest.NewRecorder()
	SecurityHeaders(requireHTTPS)(next).ServeHTTP(rec, req)
	return rec.Header()
}

func TestSecurityHeaders(t *testing.T) {
	headers := secureGet(t, false, false)

	want := map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"Referrer-Policy":         "no-referrer",
		"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
	}
	for header, expected := range want {
		if got := headers.Get(header); got != expected {
			t.Errorf("header %s = %q, want %q", header, got, expected)
		}
	}
}

func TestSecurityHeadersHSTS(t *testing.T) {
	tests := []struct {
		name         string
		requireHTTPS bool
		overTLS      bool
		want         string
	}{
		{"required over TLS", true, true, "max-age=31536000; includeSubDomains"},
		{"required on plain connection", true, false, ""},
		{"disabled over TLS", false, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := secureGet(t, tt.requireHTTPS, tt.overTLS).Get("Strict-Transport-Security")
			if got != tt.want {
				t.Errorf("Strict-Transport-Security = %q, want %q", got, tt.want)
			}
		})
	}
}
