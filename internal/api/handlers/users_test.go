package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/guestlist/server/internal/api/problem"
)

func TestUsersHandlerCreate(t *testing.T) {
	f := newFixture()
	h := NewUsersHandler(f.users, f.queries, "test")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", strings.NewReader(`{"userId":"u1","name":"Alice"}`))
	res := httptest.NewRecorder()

	h.Create(res, req)

	require.Equal(t, http.StatusCreated, res.Code)

	var payload userResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&payload))
	require.Equal(t, "u1", payload.UserID)
	require.Equal(t, "Alice", payload.Name)
	require.False(t, payload.CreatedAt.IsZero())
}

func TestUsersHandlerCreateEmptyID(t *testing.T) {
	f := newFixture()
	h := NewUsersHandler(f.users, f.queries, "test")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", strings.NewReader(`{"userId":"","name":"Alice"}`))
	res := httptest.NewRecorder()

	h.Create(res, req)

	require.Equal(t, http.StatusBadRequest, res.Code)
	require.Equal(t, "application/problem+json", res.Header().Get("Content-Type"))

	var p problem.Details
	require.NoError(t, json.NewDecoder(res.Body).Decode(&p))
	require.Equal(t, problem.TypeValidation, p.Type)
	require.Equal(t, "UserId cannot be empty", p.Detail)
}

func TestUsersHandlerCreateDuplicate(t *testing.T) {
	f := newFixture()
	f.seedUser(t, "u1", "Alice")
	h := NewUsersHandler(f.users, f.queries, "test")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", strings.NewReader(`{"userId":"u1","name":"Alice again"}`))
	res := httptest.NewRecorder()

	h.Create(res, req)

	require.Equal(t, http.StatusConflict, res.Code)

	var p problem.Details
	require.NoError(t, json.NewDecoder(res.Body).Decode(&p))
	require.Equal(t, problem.TypeDuplicate, p.Type)
	require.Equal(t, "User with ID u1 already exists", p.Detail)
}

func TestUsersHandlerCreateMalformedJSON(t *testing.T) {
	f := newFixture()
	h := NewUsersHandler(f.users, f.queries, "test")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", strings.NewReader(`{"userId":`))
	res := httptest.NewRecorder()

	h.Create(res, req)

	require.Equal(t, http.StatusBadRequest, res.Code)
}

func TestUsersHandlerCreateOverlongID(t *testing.T) {
	f := newFixture()
	h := NewUsersHandler(f.users, f.queries, "test")

	body := `{"userId":"` + strings.Repeat("x", 101) + `","name":"Alice"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", strings.NewReader(body))
	res := httptest.NewRecorder()

	h.Create(res, req)

	require.Equal(t, http.StatusBadRequest, res.Code)

	var p problem.Details
	require.NoError(t, json.NewDecoder(res.Body).Decode(&p))
	require.Equal(t, problem.TypeValidation, p.Type)
	require.Contains(t, p.Errors, "UserID")
}

func TestUsersHandlerGet(t *testing.T) {
	f := newFixture()
	f.seedUser(t, "u1", "Alice")
	h := NewUsersHandler(f.users, f.queries, "test")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/u1", nil)
	req.SetPathValue("id", "u1")
	res := httptest.NewRecorder()

	h.Get(res, req)

	require.Equal(t, http.StatusOK, res.Code)

	var payload userResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&payload))
	require.Equal(t, "Alice", payload.Name)
}

func TestUsersHandlerGetMissing(t *testing.T) {
	f := newFixture()
	h := NewUsersHandler(f.users, f.queries, "test")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/ghost", nil)
	req.SetPathValue("id", "ghost")
	res := httptest.NewRecorder()

	h.Get(res, req)

	require.Equal(t, http.StatusNotFound, res.Code)

	var p problem.Details
	require.NoError(t, json.NewDecoder(res.Body).Decode(&p))
	require.Equal(t, "User ghost not found", p.Detail)
}

func TestUsersHandlerRegisteredEvents(t *testing.T) {
	f := newFixture()
	f.seedUser(t, "u1", "Alice")
	f.seedUser(t, "u2", "Bob")
	f.seedEvent(t, "ev1", "GopherCon", 10, false)
	f.seedEvent(t, "ev2", "FOSDEM", 10, false)
	f.seedEvent(t, "ev3", "Tiny Meetup", 1, true)

	f.mustRegister(t, "u1", "ev1")
	f.mustRegister(t, "u1", "ev2")
	f.mustRegister(t, "u2", "ev3")
	// u1 lands on ev3's waitlist, which must not show up below.
	f.mustRegister(t, "u1", "ev3")

	h := NewUsersHandler(f.users, f.queries, "test")
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/u1/events", nil)
	req.SetPathValue("id", "u1")
	res := httptest.NewRecorder()

	h.RegisteredEvents(res, req)

	require.Equal(t, http.StatusOK, res.Code)

	var payload userEventsResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&payload))
	require.Equal(t, "u1", payload.UserID)
	require.Len(t, payload.Events, 2)
	require.Equal(t, "ev1", payload.Events[0].EventID)
	require.Equal(t, "ev2", payload.Events[1].EventID)
}

func TestUsersHandlerRegisteredEventsEmpty(t *testing.T) {
	f := newFixture()
	f.seedUser(t, "u1", "Alice")

	h := NewUsersHandler(f.users, f.queries, "test")
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/u1/events", nil)
	req.SetPathValue("id", "u1")
	res := httptest.NewRecorder()

	h.RegisteredEvents(res, req)

	require.Equal(t, http.StatusOK, res.Code)

	var payload userEventsResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&payload))
	require.Empty(t, payload.Events)
}

func TestUsersHandlerRegisteredEventsMissingUser(t *testing.T) {
	f := newFixture()
	h := NewUsersHandler(f.users, f.queries, "test")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/ghost/events", nil)
	req.SetPathValue("id", "ghost")
	res := httptest.NewRecorder()

	h.RegisteredEvents(res, req)

	require.Equal(t, http.StatusNotFound, res.Code)
}
