package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type requestIDKey struct{}

// CorrelationID tags each request with an ID that follows it through
// logs, traces, and the X-Request-ID response header. IDs minted by an
// upstream proxy are kept.
func CorrelationID(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-ID")
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", id)

			ctx := context.WithValue(r.Context(), requestIDKey{}, id)
			scoped := logger.With().Str("request_id", id).Logger()
			next.ServeHTTP(w, r.WithContext(scoped.WithContext(ctx)))
		})
	}
}

// GetRequestID returns the correlation ID stored by CorrelationID, or
// the empty string outside a request.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
