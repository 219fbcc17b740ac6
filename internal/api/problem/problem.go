// Package problem writes RFC 7807 application/problem+json responses.
package problem

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

const contentType = "application/problem+json"

// Problem type URIs for the registration error taxonomy.
const (
	TypeValidation   = "https://guestlist.dev/problems/validation-error"
	TypeDuplicate    = "https://guestlist.dev/problems/duplicate"
	TypeNotFound     = "https://guestlist.dev/problems/not-found"
	TypeCapacity     = "https://guestlist.dev/problems/capacity"
	TypeRegistration = "https://guestlist.dev/problems/registration-error"
	TypeServerError  = "https://guestlist.dev/problems/server-error"
)

// Details is an RFC 7807 response body.
type Details struct {
	Type     string         `json:"type"`
	Title    string         `json:"title"`
	Status   int            `json:"status"`
	Detail   string         `json:"detail,omitempty"`
	Instance string         `json:"instance,omitempty"`
	Errors   map[string]any `json:"errors,omitempty"`
}

type Option func(*Details)

func WithDetail(detail string) Option {
	return func(p *Details) { p.Detail = detail }
}

func WithErrors(errs map[string]any) Option {
	return func(p *Details) { p.Errors = errs }
}

// Write renders a problem response and logs it. When no option sets the
// detail, it falls back to err's text in development and test and to the
// generic status text everywhere else, so internals never leak.
func Write(w http.ResponseWriter, r *http.Request, status int, typ, title string, err error, env string, opts ...Option) {
	p := Details{Type: typ, Title: title, Status: status}
	for _, opt := range opts {
		opt(&p)
	}

	if p.Instance == "" && r != nil {
		p.Instance = r.URL.Path
	}
	if p.Detail == "" && err != nil {
		p.Detail = detailFor(err, status, env)
	}

	logProblem(r, status, typ, title, err)
	Render(w, p)
}

func detailFor(err error, status int, env string) string {
	if env == "development" || env == "test" {
		return err.Error()
	}
	return http.StatusText(status)
}

// Server faults log at error level, everything else at warn.
func logProblem(r *http.Request, status int, typ, title string, err error) {
	if err == nil || r == nil {
		return
	}

	logger := zerolog.Ctx(r.Context())
	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Err(err).
		Int("status", status).
		Str("type", typ).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg(title)
}

// Render writes a fully built Details. A body that cannot be marshalled
// degrades to a bare about:blank problem.
func Render(w http.ResponseWriter, p Details) {
	w.Header().Set("Content-Type", contentType)

	payload, err := json.Marshal(p)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"type":"about:blank","title":"Internal Server Error","status":500}`))
		return
	}

	w.WriteHeader(p.Status)
	_, _ = w.Write(payload)
}
