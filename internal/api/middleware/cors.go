package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/guestlist/server/internal/config"
)

// What allowed cross-origin clients are granted.
const (
	corsMethods = "GET, POST, DELETE, OPTIONS"
	corsHeaders = "Content-Type, Accept, X-Request-ID"
	corsExpose  = "X-Request-ID"
	corsMaxAge  = "86400"
)

// CORS admits cross-origin browser clients. Outside production every
// origin passes; in production only whitelisted origins do, and each
// rejection is logged.
func CORS(cfg config.CORSConfig, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				// Same-origin requests carry no Origin header.
				next.ServeHTTP(w, r)
				return
			}

			switch {
			case cfg.AllowAllOrigins, originAllowed(origin, cfg.AllowedOrigins):
				grant(w.Header(), origin)
			default:
				logger.Warn().
					Str("origin", origin).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Msg("cross-origin request rejected")
			}

			// Preflights stop here whether or not the origin passed.
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func grant(h http.Header, origin string) {
	h.Set("Access-Control-Allow-Origin", origin)
	h.Set("Access-Control-Allow-Methods", corsMethods)
	h.Set("Access-Control-Allow-Headers", corsHeaders)
	h.Set("Access-Control-Expose-Headers", corsExpose)
	h.Set("Access-Control-Max-Age", corsMaxAge)
}

// originAllowed does a case-insensitive exact match on the whitelist.
func originAllowed(origin string, allowed []string) bool {
	origin = strings.ToLower(strings.TrimSpace(origin))
	for _, candidate := range allowed {
		if strings.ToLower(strings.TrimSpace(candidate)) == origin {
			return true
		}
	}
	return false
}
