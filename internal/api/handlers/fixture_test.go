package handlers

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/guestlist/server/internal/domain/registration"
	"github.com/guestlist/server/internal/storage/memory"
)

// fixture wires the domain services over an in-memory store for handler
// tests.
type fixture struct {
	store   *memory.Store
	users   *registration.UserService
	events  *registration.EventService
	engine  *registration.Engine
	queries *registration.Queries
}

func newFixture() *fixture {
	store := memory.NewStore()
	logger := zerolog.Nop()
	return &fixture{
		store:   store,
		users:   registration.NewUserService(store.Users(), logger),
		events:  registration.NewEventService(store.Events(), logger),
		engine:  registration.NewEngine(store, logger),
		queries: registration.NewQueries(store),
	}
}

func (f *fixture) seedUser(t *testing.T, id, name string) *registration.User {
	t.Helper()
	user, err := f.users.CreateUser(context.Background(), id, name)
	require.NoError(t, err)
	return user
}

func (f *fixture) seedEvent(t *testing.T, id, name string, capacity int, hasWaitlist bool) *registration.Event {
	t.Helper()
	event, err := f.events.CreateEvent(context.Background(), id, name, capacity, hasWaitlist)
	require.NoError(t, err)
	return event
}

func (f *fixture) mustRegister(t *testing.T, userID, eventID string) registration.RegisterResult {
	t.Helper()
	result, err := f.engine.Register(context.Background(), userID, eventID)
	require.NoError(t, err)
	return result
}
