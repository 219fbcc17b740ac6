package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/guestlist/server/internal/api/problem"
	"github.com/guestlist/server/internal/domain/registration"
)

type RegistrationsHandler struct {
	Engine  *registration.Engine
	Queries *registration.Queries
	Env     string
}

func NewRegistrationsHandler(engine *registration.Engine, queries *registration.Queries, env string) *RegistrationsHandler {
	return &RegistrationsHandler{Engine: engine, Queries: queries, Env: env}
}

type registerRequest struct {
	UserID  string `json:"userId" validate:"max=100"`
	EventID string `json:"eventId" validate:"max=100"`
}

type registrationPayload struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	EventID   string    `json:"eventId"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type waitlistEntryPayload struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	EventID   string    `json:"eventId"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"createdAt"`
}

type registerResponse struct {
	Success       bool                  `json:"success"`
	Message       string                `json:"message"`
	Registration  *registrationPayload  `json:"registration,omitempty"`
	WaitlistEntry *waitlistEntryPayload `json:"waitlistEntry,omitempty"`
}

type unregisterResponse struct {
	Success  bool                 `json:"success"`
	Message  string               `json:"message"`
	Promoted *registrationPayload `json:"promoted,omitempty"`
}

type registrationStatusResponse struct {
	UserID     string `json:"userId"`
	EventID    string `json:"eventId"`
	Registered bool   `json:"registered"`
	Waitlisted bool   `json:"waitlisted"`
}

func newRegistrationPayload(reg *registration.Registration) *registrationPayload {
	if reg == nil {
		return nil
	}
	return &registrationPayload{
		ID:        reg.ID,
		UserID:    reg.UserID,
		EventID:   reg.EventID,
		Status:    string(reg.Status),
		CreatedAt: reg.CreatedAt,
	}
}

func newWaitlistEntryPayload(entry *registration.WaitlistEntry) *waitlistEntryPayload {
	if entry == nil {
		return nil
	}
	return &waitlistEntryPayload{
		ID:        entry.ID,
		UserID:    entry.UserID,
		EventID:   entry.EventID,
		Position:  entry.Position,
		CreatedAt: entry.CreatedAt,
	}
}

// Create claims a slot on an event for a user. A user on a full event
// with a waitlist is queued; on a full event without one the request is
// answered with a capacity problem.
func (h *RegistrationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Engine == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", nil, h.Env)
		return
	}

	var req registerRequest
	if !decodeBody(w, r, &req, h.Env) {
		return
	}
	if !checkBounds(w, r, &req, h.Env) {
		return
	}

	result, err := h.Engine.Register(r.Context(), req.UserID, req.EventID)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	if result.Outcome == registration.OutcomeDenied {
		writeDomainError(w, r, result.Denial, h.Env)
		return
	}

	writeJSON(w, http.StatusCreated, registerResponse{
		Success:       true,
		Message:       result.Message,
		Registration:  newRegistrationPayload(result.Registration),
		WaitlistEntry: newWaitlistEntryPayload(result.WaitlistEntry),
	})
}

// Delete releases a user's active registration, promoting the head of
// the waitlist into the freed slot when there is one.
func (h *RegistrationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Engine == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", nil, h.Env)
		return
	}

	userID, eventID, ok := pairParams(w, r, h.Env)
	if !ok {
		return
	}

	result, err := h.Engine.Unregister(r.Context(), userID, eventID)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, unregisterResponse{
		Success:  true,
		Message:  result.Message,
		Promoted: newRegistrationPayload(result.Promoted),
	})
}

// Status reports which queue, if any, holds the pair.
func (h *RegistrationsHandler) Status(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Queries == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", nil, h.Env)
		return
	}

	userID, eventID, ok := pairParams(w, r, h.Env)
	if !ok {
		return
	}

	registered, err := h.Queries.IsRegistered(r.Context(), userID, eventID)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}
	waitlisted, err := h.Queries.IsWaitlisted(r.Context(), userID, eventID)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, registrationStatusResponse{
		UserID:     userID,
		EventID:    eventID,
		Registered: registered,
		Waitlisted: waitlisted,
	})
}

// pairParams reads the userId and eventId query parameters, rejecting
// requests where either is missing.
func pairParams(w http.ResponseWriter, r *http.Request, env string) (string, string, bool) {
	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	eventID := strings.TrimSpace(r.URL.Query().Get("eventId"))
	if userID == "" {
		verr := validationFieldError{Field: "userId", Message: "missing"}
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", verr, env,
			problem.WithDetail(verr.Error()))
		return "", "", false
	}
	if eventID == "" {
		verr := validationFieldError{Field: "eventId", Message: "missing"}
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", verr, env,
			problem.WithDetail(verr.Error()))
		return "", "", false
	}
	return userID, eventID, true
}
