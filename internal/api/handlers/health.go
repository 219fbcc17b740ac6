package handlers

import (
	"context"
	"net/http"
	"time"
)

// Probes get a bounded slice of the request deadline so a wedged
// backend cannot hold a readiness check open indefinitely.
const (
	readyzTimeout = 5 * time.Second
	pingTimeout   = 2 * time.Second
)

// Pinger is the slice of the storage layer that health checks need.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ReadinessReport is the /readyz response body.
type ReadinessReport struct {
	Status    string                 `json:"status"`
	Version   string                 `json:"version"`
	GitCommit string                 `json:"git_commit"`
	Checks    map[string]CheckResult `json:"checks"`
	Timestamp string                 `json:"timestamp"`
}

// CheckResult is the outcome of probing a single dependency.
type CheckResult struct {
	Status    string         `json:"status"`
	Message   string         `json:"message,omitempty"`
	LatencyMs int64          `json:"latency_ms,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// HealthChecker answers readiness probes for the server.
type HealthChecker struct {
	storage Pinger
	driver  string
	version string
	commit  string
}

func NewHealthChecker(storage Pinger, driver, version, commit string) *HealthChecker {
	return &HealthChecker{storage: storage, driver: driver, version: version, commit: commit}
}

// Readyz reports whether the server can take traffic, which for this
// service means storage answers a ping in time.
func (h *HealthChecker) Readyz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Context().Err() != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "shutting_down"})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), readyzTimeout)
		defer cancel()

		storage := h.checkStorage(ctx)

		report := ReadinessReport{
			Status:    "healthy",
			Version:   h.version,
			GitCommit: h.commit,
			Checks:    map[string]CheckResult{"storage": storage},
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}
		code := http.StatusOK
		if storage.Status != "pass" {
			report.Status = "unhealthy"
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, report)
	}
}

func (h *HealthChecker) checkStorage(ctx context.Context) CheckResult {
	if h.storage == nil {
		return CheckResult{Status: "fail", Message: "Storage not configured"}
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	start := time.Now()
	err := h.storage.Ping(ctx)
	elapsed := time.Since(start).Milliseconds()

	if err != nil {
		msg := "Storage ping failed"
		if ctx.Err() == context.DeadlineExceeded {
			msg = "Storage ping timed out"
		}
		return CheckResult{
			Status:    "fail",
			Message:   msg,
			LatencyMs: elapsed,
			Details:   map[string]any{"driver": h.driver, "error": err.Error()},
		}
	}

	return CheckResult{
		Status:    "pass",
		Message:   "Storage reachable",
		LatencyMs: elapsed,
		Details:   map[string]any{"driver": h.driver},
	}
}

// Healthz reports process liveness. It never consults dependencies, so
// a dead database does not get the process restarted.
func Healthz() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}
