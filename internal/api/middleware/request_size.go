package middleware

import "net/http"

// MaxBodySize caps request bodies on the registration API. Payloads are
// small JSON documents; anything near this limit is malformed or
// hostile.
const MaxBodySize int64 = 1 << 20

// RequestSize wraps request bodies with http.MaxBytesReader so reads
// past maxBytes fail with *http.MaxBytesError. Handlers surface that as
// a 413 problem response when decoding.
func RequestSize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
