package handlers

import (
	"net/http"
	"time"

	"github.com/guestlist/server/internal/api/problem"
	"github.com/guestlist/server/internal/domain/registration"
)

type UsersHandler struct {
	Users   *registration.UserService
	Queries *registration.Queries
	Env     string
}

func NewUsersHandler(users *registration.UserService, queries *registration.Queries, env string) *UsersHandler {
	return &UsersHandler{Users: users, Queries: queries, Env: env}
}

type createUserRequest struct {
	UserID string `json:"userId" validate:"max=100"`
	Name   string `json:"name" validate:"max=200"`
}

type userResponse struct {
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type userEventsResponse struct {
	UserID string          `json:"userId"`
	Events []eventResponse `json:"events"`
}

func newUserResponse(user *registration.User) userResponse {
	return userResponse{UserID: user.ID, Name: user.Name, CreatedAt: user.CreatedAt}
}

func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Users == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", nil, h.Env)
		return
	}

	var req createUserRequest
	if !decodeBody(w, r, &req, h.Env) {
		return
	}
	if !checkBounds(w, r, &req, h.Env) {
		return
	}

	user, err := h.Users.CreateUser(r.Context(), req.UserID, req.Name)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusCreated, newUserResponse(user))
}

func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Users == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", nil, h.Env)
		return
	}

	user, err := h.Users.GetUser(r.Context(), pathParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, newUserResponse(user))
}

// RegisteredEvents lists the events the user holds an active
// registration for, in registration order. Waitlisted events are not
// included.
func (h *UsersHandler) RegisteredEvents(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Queries == nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", nil, h.Env)
		return
	}

	userID := pathParam(r, "id")
	events, err := h.Queries.RegisteredEvents(r.Context(), userID)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	payload := userEventsResponse{UserID: userID, Events: make([]eventResponse, 0, len(events))}
	for _, event := range events {
		payload.Events = append(payload.Events, newEventResponse(event))
	}
	writeJSON(w, http.StatusOK, payload)
}
