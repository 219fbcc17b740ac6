// Package api assembles the HTTP surface: routes, middleware chain, and
// operational endpoints.
package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/guestlist/server/internal/api/handlers"
	"github.com/guestlist/server/internal/api/middleware"
	"github.com/guestlist/server/internal/config"
	"github.com/guestlist/server/internal/domain/registration"
	"github.com/guestlist/server/internal/metrics"
)

// NewRouter wires the domain services over the given store and returns
// the fully middleware-wrapped handler. The pinger is the same storage
// value the store came from; readiness probes go through it.
func NewRouter(cfg config.Config, logger zerolog.Logger, store registration.Store, pinger handlers.Pinger, version, gitCommit, buildDate string) http.Handler {
	userService := registration.NewUserService(store.Users(), logger)
	eventService := registration.NewEventService(store.Events(), logger)
	engine := registration.NewEngine(store, logger)
	queries := registration.NewQueries(store)

	usersHandler := handlers.NewUsersHandler(userService, queries, cfg.Environment)
	eventsHandler := handlers.NewEventsHandler(eventService, queries, cfg.Environment)
	registrationsHandler := handlers.NewRegistrationsHandler(engine, queries, cfg.Environment)
	health := handlers.NewHealthChecker(pinger, cfg.Storage.Driver, version, gitCommit)

	mux := http.NewServeMux()

	mux.Handle("GET /healthz", handlers.Healthz())
	mux.Handle("GET /readyz", health.Readyz())
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	mux.Handle("GET /version", VersionHandler(version, gitCommit, buildDate))
	mux.Handle("GET /api/v1/openapi.json", OpenAPIHandler(cfg.Server.BaseURL))

	mux.Handle("POST /api/v1/users", http.HandlerFunc(usersHandler.Create))
	mux.Handle("GET /api/v1/users/{id}", http.HandlerFunc(usersHandler.Get))
	mux.Handle("GET /api/v1/users/{id}/events", http.HandlerFunc(usersHandler.RegisteredEvents))

	mux.Handle("POST /api/v1/events", http.HandlerFunc(eventsHandler.Create))
	mux.Handle("GET /api/v1/events/{id}", http.HandlerFunc(eventsHandler.Get))
	mux.Handle("GET /api/v1/events/{id}/capacity", http.HandlerFunc(eventsHandler.Capacity))

	mux.Handle("POST /api/v1/registrations", http.HandlerFunc(registrationsHandler.Create))
	mux.Handle("DELETE /api/v1/registrations", http.HandlerFunc(registrationsHandler.Delete))
	mux.Handle("GET /api/v1/registrations/status", http.HandlerFunc(registrationsHandler.Status))

	// Innermost first: the body cap applies right before handlers read,
	// metrics sees the matched pattern, logging and tracing wrap it,
	// correlation installs the request logger they use, rate limiting
	// rejects before any of that spends work, CORS answers preflight
	// before the limiter can eat it, and security headers land on every
	// response including preflights.
	var handler http.Handler = mux
	handler = middleware.RequestSize(middleware.MaxBodySize)(handler)
	handler = metrics.HTTPMiddleware(handler)
	handler = middleware.RequestLogging(logger)(handler)
	handler = middleware.Tracing(handler)
	handler = middleware.CorrelationID(logger)(handler)
	handler = middleware.RateLimit(cfg.RateLimit)(handler)
	handler = middleware.CORS(cfg.CORS, logger)(handler)
	handler = middleware.SecurityHeaders(cfg.Environment == "production")(handler)
	return handler
}
