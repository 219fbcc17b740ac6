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

func registerBody(userID, eventID string) *strings.Reader {
	return strings.NewReader(`{"userId":"` + userID + `","eventId":"` + eventID + `"}`)
}

func TestRegistrationsHandlerCreate(t *testing.T) {
	f := newFixture()
	f.seedUser(t, "u1", "Alice")
	f.seedEvent(t, "ev1", "GopherCon", 10, false)

	h := NewRegistrationsHandler(f.engine, f.queries, "test")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/registrations", registerBody("u1", "ev1"))
	res := httptest.NewRecorder()

	h.Create(res, req)

	require.Equal(t, http.StatusCreated, res.Code)

	var payload registerResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&payload))
	require.True(t, payload.Success)
	require.Equal(t, "Successfully registered for event", payload.Message)
	require.NotNil(t, payload.Registration)
	require.Equal(t, "ACTIVE", payload.Registration.Status)
	require.Equal(t, "u1", payload.Registration.UserID)
	require.Nil(t, payload.WaitlistEntry)
}

func TestRegistrationsHandlerCreateWaitlisted(t *testing.T) {
	f := newFixture()
	f.seedUser(t, "u1", "Alice")
	f.seedUser(t, "u2", "Bob")
	f.seedEvent(t, "ev1", "Tiny Meetup", 1, true)
	f.mustRegister(t, "u1", "ev1")

	h := NewRegistrationsHandler(f.engine, f.queries, "test")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/registrations", registerBody("u2", "ev1"))
	res := httptest.NewRecorder()

	h.Create(res, req)

	require.Equal(t, http.StatusCreated, res.Code)

	var payload registerResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&payload))
	require.True(t, payload.Success)
	require.Equal(t, "Event is full. Added to waitlist at position 1", payload.Message)
	require.Nil(t, payload.Registration)
	require.NotNil(t, payload.WaitlistEntry)
	require.Equal(t, 1, payload.WaitlistEntry.Position)
}

func TestRegistrationsHandlerCreateDenied(t *testing.T) {
	f := newFixture()
	f.seedUser(t, "u1", "Alice")
	f.seedUser(t, "u2", "Bob")
	f.seedEvent(t, "ev1", "Tiny Meetup", 1, false)
	f.mustRegister(t, "u1", "ev1")

	h := NewRegistrationsHandler(f.engine, f.queries, "test")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/registrations", registerBody("u2", "ev1"))
	res := httptest.NewRecorder()

	h.Create(res, req)

	require.Equal(t, http.StatusConflict, res.Code)
	require.Equal(t, "application/problem+json", res.Header().Get("Content-Type"))

	var p problem.Details
	require.NoError(t, json.NewDecoder(res.Body).Decode(&p))
	require.Equal(t, problem.TypeCapacity, p.Type)
	require.Equal(t, "Event ev1 is full and has no waitlist", p.Detail)
}

func TestRegistrationsHandlerCreateDuplicate(t *testing.T) {
	f := newFixture()
	f.seedUser(t, "u1", "Alice")
	f.seedEvent(t, "ev1", "GopherCon", 10, false)
	f.mustRegister(t, "u1", "ev1")

	h := NewRegistrationsHandler(f.engine, f.queries, "test")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/registrations", registerBody("u1", "ev1"))
	res := httptest.NewRecorder()

	h.Create(res, req)

	require.Equal(t, http.StatusConflict, res.Code)

	var p problem.Details
	require.NoError(t, json.NewDecoder(res.Body).Decode(&p))
	require.Equal(t, problem.TypeDuplicate, p.Type)
	require.Equal(t, "User u1 is already registered for event ev1", p.Detail)
}

func TestRegistrationsHandlerCreateDuplicateWaitlisted(t *testing.T) {
	f := newFixture()
	f.seedUser(t, "u1", "Alice")
	f.seedUser(t, "u2", "Bob")
	f.seedEvent(t, "ev1", "Tiny Meetup", 1, true)
	f.mustRegister(t, "u1", "ev1")
	f.mustRegister(t, "u2", "ev1")

	h := NewRegistrationsHandler(f.engine, f.queries, "test")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/registrations", registerBody("u2", "ev1"))
	res := httptest.NewRecorder()

	h.Create(res, req)

	require.Equal(t, http.StatusConflict, res.Code)

	var p problem.Details
	require.NoError(t, json.NewDecoder(res.Body).Decode(&p))
	require.Equal(t, "User u2 is already on the waitlist for event ev1", p.Detail)
}

func TestRegistrationsHandlerCreateUnknownUser(t *testing.T) {
	f := newFixture()
	f.seedEvent(t, "ev1", "GopherCon", 10, false)

	h := NewRegistrationsHandler(f.engine, f.queries, "test")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/registrations", registerBody("ghost", "ev1"))
	res := httptest.NewRecorder()

	h.Create(res, req)

	require.Equal(t, http.StatusNotFound, res.Code)

	var p problem.Details
	require.NoError(t, json.NewDecoder(res.Body).Decode(&p))
	require.Equal(t, "User ghost not found", p.Detail)
}

func TestRegistrationsHandlerDelete(t *testing.T) {
	f := newFixture()
	f.seedUser(t, "u1", "Alice")
	f.seedEvent(t, "ev1", "GopherCon", 10, false)
	f.mustRegister(t, "u1", "ev1")

	h := NewRegistrationsHandler(f.engine, f.queries, "test")
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/registrations?userId=u1&eventId=ev1", nil)
	res := httptest.NewRecorder()

	h.Delete(res, req)

	require.Equal(t, http.StatusOK, res.Code)

	var payload unregisterResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&payload))
	require.True(t, payload.Success)
	require.Equal(t, "Successfully unregistered from event", payload.Message)
	require.Nil(t, payload.Promoted)
}

func TestRegistrationsHandlerDeletePromotes(t *testing.T) {
	f := newFixture()
	f.seedUser(t, "u1", "Alice")
	f.seedUser(t, "u2", "Bob")
	f.seedEvent(t, "ev1", "Tiny Meetup", 1, true)
	f.mustRegister(t, "u1", "ev1")
	f.mustRegister(t, "u2", "ev1")

	h := NewRegistrationsHandler(f.engine, f.queries, "test")
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/registrations?userId=u1&eventId=ev1", nil)
	res := httptest.NewRecorder()

	h.Delete(res, req)

	require.Equal(t, http.StatusOK, res.Code)

	var payload unregisterResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&payload))
	require.NotNil(t, payload.Promoted)
	require.Equal(t, "u2", payload.Promoted.UserID)
	require.Equal(t, "ACTIVE", payload.Promoted.Status)
}

func TestRegistrationsHandlerDeleteNotRegistered(t *testing.T) {
	f := newFixture()
	f.seedUser(t, "u1", "Alice")
	f.seedEvent(t, "ev1", "GopherCon", 10, false)

	h := NewRegistrationsHandler(f.engine, f.queries, "test")
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/registrations?userId=u1&eventId=ev1", nil)
	res := httptest.NewRecorder()

	h.Delete(res, req)

	require.Equal(t, http.StatusNotFound, res.Code)

	var p problem.Details
	require.NoError(t, json.NewDecoder(res.Body).Decode(&p))
	require.Equal(t, "User u1 is not registered for event ev1", p.Detail)
}

func TestRegistrationsHandlerDeleteWaitlistedOnly(t *testing.T) {
	f := newFixture()
	f.seedUser(t, "u1", "Alice")
	f.seedUser(t, "u2", "Bob")
	f.seedEvent(t, "ev1", "Tiny Meetup", 1, true)
	f.mustRegister(t, "u1", "ev1")
	f.mustRegister(t, "u2", "ev1")

	h := NewRegistrationsHandler(f.engine, f.queries, "test")
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/registrations?userId=u2&eventId=ev1", nil)
	res := httptest.NewRecorder()

	h.Delete(res, req)

	// Holding only a waitlist slot does not count as registered.
	require.Equal(t, http.StatusNotFound, res.Code)
}

func TestRegistrationsHandlerDeleteMissingParams(t *testing.T) {
	f := newFixture()
	h := NewRegistrationsHandler(f.engine, f.queries, "test")

	for _, target := range []string{
		"/api/v1/registrations",
		"/api/v1/registrations?userId=u1",
		"/api/v1/registrations?eventId=ev1",
	} {
		req := httptest.NewRequest(http.MethodDelete, target, nil)
		res := httptest.NewRecorder()

		h.Delete(res, req)

		require.Equal(t, http.StatusBadRequest, res.Code, "target %s", target)
	}
}

func TestRegistrationsHandlerStatus(t *testing.T) {
	f := newFixture()
	f.seedUser(t, "u1", "Alice")
	f.seedUser(t, "u2", "Bob")
	f.seedUser(t, "u3", "Carol")
	f.seedEvent(t, "ev1", "Tiny Meetup", 1, true)
	f.mustRegister(t, "u1", "ev1")
	f.mustRegister(t, "u2", "ev1")

	h := NewRegistrationsHandler(f.engine, f.queries, "test")

	cases := []struct {
		userID     string
		registered bool
		waitlisted bool
	}{
		{"u1", true, false},
		{"u2", false, true},
		{"u3", false, false},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/registrations/status?userId="+tc.userID+"&eventId=ev1", nil)
		res := httptest.NewRecorder()

		h.Status(res, req)

		require.Equal(t, http.StatusOK, res.Code)

		var payload registrationStatusResponse
		require.NoError(t, json.NewDecoder(res.Body).Decode(&payload))
		require.Equal(t, tc.userID, payload.UserID)
		require.Equal(t, "ev1", payload.EventID)
		require.Equal(t, tc.registered, payload.Registered, "user %s registered", tc.userID)
		require.Equal(t, tc.waitlisted, payload.Waitlisted, "user %s waitlisted", tc.userID)
	}
}

func TestRegistrationsHandlerStatusMissingParams(t *testing.T) {
	f := newFixture()
	h := NewRegistrationsHandler(f.engine, f.queries, "test")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/registrations/status?userId=u1", nil)
	res := httptest.NewRecorder()

	h.Status(res, req)

	require.Equal(t, http.StatusBadRequest, res.Code)
}
