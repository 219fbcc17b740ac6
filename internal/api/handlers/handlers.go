// Package handlers contains the HTTP handlers for the registration API.
// Handlers decode and validate transport concerns, delegate to the
// domain services, and translate the error taxonomy into RFC 7807
// problem responses.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/guestlist/server/internal/api/problem"
	"github.com/guestlist/server/internal/domain/registration"
)

// validate enforces transport-level bounds on request bodies. Domain
// rules (empty identifiers, non-positive capacity) stay in the domain
// constructors so their messages are the canonical ones.
var validate = validator.New()

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// decodeBody decodes a JSON request body into dst, rendering decode
// failures as validation problems. Bodies truncated by the request size
// middleware surface as *http.MaxBytesError and answer 413.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any, env string) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}

	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		problem.Write(w, r, http.StatusRequestEntityTooLarge, problem.TypeValidation, "Request body too large", err, env,
			problem.WithDetail(fmt.Sprintf("Request body must not exceed %d bytes", maxBytes.Limit)))
		return false
	}

	problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, env)
	return false
}

func pathParam(r *http.Request, key string) string {
	if r == nil {
		return ""
	}
	return r.PathValue(key)
}

// writeDomainError maps the registration error taxonomy onto problem
// responses. Each kind has one stable status; taxonomy messages are
// business-facing and stay visible in every environment, while anything
// outside the taxonomy is treated as a server fault whose detail is
// suppressed outside development.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error, env string) {
	var (
		validationErr   *registration.ValidationError
		duplicateErr    *registration.DuplicateError
		notFoundErr     *registration.NotFoundError
		capacityErr     *registration.CapacityError
		registrationErr *registration.RegistrationError
	)

	switch {
	case errors.As(err, &validationErr):
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, env,
			problem.WithDetail(validationErr.Message),
			problem.WithErrors(map[string]any{validationErr.Field: validationErr.Message}))
	case errors.As(err, &duplicateErr):
		problem.Write(w, r, http.StatusConflict, problem.TypeDuplicate, "Already exists", err, env,
			problem.WithDetail(duplicateErr.Message))
	case errors.As(err, &notFoundErr):
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Not found", err, env,
			problem.WithDetail(notFoundErr.Message))
	case errors.As(err, &capacityErr):
		problem.Write(w, r, http.StatusConflict, problem.TypeCapacity, "Event full", err, env,
			problem.WithDetail(capacityErr.Error()))
	case errors.As(err, &registrationErr):
		problem.Write(w, r, http.StatusBadRequest, problem.TypeRegistration, "Registration failed", err, env)
	default:
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, env)
	}
}

type validationFieldError struct {
	Field   string
	Message string
}

func (e validationFieldError) Error() string {
	return e.Field + ": " + e.Message
}

// checkBounds runs the transport bounds on a decoded request and
// renders the first violation as a validation problem.
func checkBounds(w http.ResponseWriter, r *http.Request, req any, env string) bool {
	err := validate.Struct(req)
	if err == nil {
		return true
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		verr := validationFieldError{Field: fe.Field(), Message: "exceeds allowed bounds"}
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", verr, env,
			problem.WithDetail(verr.Error()),
			problem.WithErrors(map[string]any{fe.Field(): "exceeds allowed bounds"}))
		return false
	}

	problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, env)
	return false
}
