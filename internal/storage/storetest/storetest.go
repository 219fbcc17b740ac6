// Package storetest exercises a registration.Store implementation
// against the persistence contract the engine depends on. Every backend
// runs the same suite; backend-specific behavior (transaction rollback,
// copy semantics) stays in the backend's own tests.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/guestlist/server/internal/domain/registration"
)

// Factory returns a fresh, empty store. Called once per subtest.
type Factory func(t *testing.T) registration.Store

// Run verifies the store produced by newStore against the port
// contract.
func Run(t *testing.T, newStore Factory) {
	suite := []struct {
		name string
		fn   func(*testing.T, registration.Store)
	}{
		{"UserRoundTrip", testUserRoundTrip},
		{"EventRoundTrip", testEventRoundTrip},
		{"RegistrationPairUnique", testRegistrationPairUnique},
		{"RegistrationQueries", testRegistrationQueries},
		{"DeleteAbsentIsNoop", testDeleteAbsentIsNoop},
		{"WaitlistOrdering", testWaitlistOrdering},
		{"WaitlistUniqueness", testWaitlistUniqueness},
		{"AtomicPropagatesError", testAtomicPropagatesError},
		{"AtomicSeesCommittedState", testAtomicSeesCommittedState},
		{"AtomicSerializesPerEvent", testAtomicSerializesPerEvent},
	}
	for _, tc := range suite {
		t.Run(tc.name, func(t *testing.T) {
			tc.fn(t, newStore(t))
		})
	}
}

func seedUser(t *testing.T, ctx context.Context, store registration.Store, id string) {
	t.Helper()
	require.NoError(t, store.Users().Save(ctx, &registration.User{
		ID: id, Name: "User " + id, CreatedAt: time.Now().UTC(),
	}))
}

func seedEvent(t *testing.T, ctx context.Context, store registration.Store, id string, capacity int, hasWaitlist bool) {
	t.Helper()
	require.NoError(t, store.Events().Save(ctx, &registration.Event{
		ID: id, Name: "Event " + id, Capacity: capacity, HasWaitlist: hasWaitlist, CreatedAt: time.Now().UTC(),
	}))
}

func testUserRoundTrip(t *testing.T, store registration.Store) {
	ctx := context.Background()

	missing, err := store.Users().FindByID(ctx, "alice")
	require.NoError(t, err)
	require.Nil(t, missing, "absent user must come back as nil, not an error")

	exists, err := store.Users().Exists(ctx, "alice")
	require.NoError(t, err)
	require.False(t, exists)

	require.NoError(t, store.Users().Save(ctx, &registration.User{
		ID: "alice", Name: "Alice", CreatedAt: time.Now().UTC(),
	}))

	found, err := store.Users().FindByID(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "Alice", found.Name)

	exists, err = store.Users().Exists(ctx, "alice")
	require.NoError(t, err)
	require.True(t, exists)

	err = store.Users().Save(ctx, &registration.User{
		ID: "alice", Name: "Alice II", CreatedAt: time.Now().UTC(),
	})
	require.ErrorIs(t, err, registration.ErrDuplicate)
}

func testEventRoundTrip(t *testing.T, store registration.Store) {
	ctx := context.Background()

	missing, err := store.Events().FindByID(ctx, "ev1")
	require.NoError(t, err)
	require.Nil(t, missing)

	require.NoError(t, store.Events().Save(ctx, &registration.Event{
		ID: "ev1", Name: "Launch", Capacity: 3, HasWaitlist: true, CreatedAt: time.Now().UTC(),
	}))

	found, err := store.Events().FindByID(ctx, "ev1")
	require.NoError(t, err)
	require.Equal(t, 3, found.Capacity)
	require.True(t, found.HasWaitlist)

	exists, err := store.Events().Exists(ctx, "ev1")
	require.NoError(t, err)
	require.True(t, exists)

	err = store.Events().Save(ctx, &registration.Event{
		ID: "ev1", Name: "Launch II", Capacity: 9, CreatedAt: time.Now().UTC(),
	})
	require.ErrorIs(t, err, registration.ErrDuplicate)
}

func testRegistrationPairUnique(t *testing.T, store registration.Store) {
	ctx := context.Background()
	seedUser(t, ctx, store, "alice")
	seedEvent(t, ctx, store, "ev1", 5, false)

	require.NoError(t, store.Registrations().Save(ctx, &registration.Registration{
		ID: "r1", UserID: "alice", EventID: "ev1",
		Status: registration.StatusActive, CreatedAt: time.Now().UTC(),
	}))

	// A second record for the same pair must conflict even with a fresh
	// record id.
	err := store.Registrations().Save(ctx, &registration.Registration{
		ID: "r2", UserID: "alice", EventID: "ev1",
		Status: registration.StatusActive, CreatedAt: time.Now().UTC(),
	})
	require.ErrorIs(t, err, registration.ErrDuplicate)
}

func testRegistrationQueries(t *testing.T, store registration.Store) {
	ctx := context.Background()
	for _, id := range []string{"alice", "bob"} {
		seedUser(t, ctx, store, id)
	}
	for _, id := range []string{"ev1", "ev2", "ev3"} {
		seedEvent(t, ctx, store, id, 5, false)
	}

	base := time.Now().UTC().Truncate(time.Microsecond)
	for i, reg := range []*registration.Registration{
		{ID: "r1", UserID: "alice", EventID: "ev2", Status: registration.StatusActive},
		{ID: "r2", UserID: "alice", EventID: "ev1", Status: registration.StatusActive},
		{ID: "r3", UserID: "bob", EventID: "ev1", Status: registration.StatusActive},
	} {
		reg.CreatedAt = base.Add(time.Duration(i) * time.Millisecond)
		require.NoError(t, store.Registrations().Save(ctx, reg))
	}

	missing, err := store.Registrations().FindByUserAndEvent(ctx, "alice", "ev3")
	require.NoError(t, err)
	require.Nil(t, missing)

	found, err := store.Registrations().FindByUserAndEvent(ctx, "alice", "ev1")
	require.NoError(t, err)
	require.Equal(t, "r2", found.ID)
	require.Equal(t, registration.StatusActive, found.Status)

	// Creation order, not insertion-key order.
	active, err := store.Registrations().FindActiveByUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, active, 2)
	require.Equal(t, "ev2", active[0].EventID)
	require.Equal(t, "ev1", active[1].EventID)

	count, err := store.Registrations().CountActiveByEvent(ctx, "ev1")
	require.NoError(t, err)
	require.Equal(t, 2, count)

	count, err = store.Registrations().CountActiveByEvent(ctx, "ev3")
	require.NoError(t, err)
	require.Equal(t, 0, count)

	byEvent, err := store.Registrations().FindByEvent(ctx, "ev1")
	require.NoError(t, err)
	require.Len(t, byEvent, 2)

	require.NoError(t, store.Registrations().Delete(ctx, "alice", "ev1"))
	gone, err := store.Registrations().FindByUserAndEvent(ctx, "alice", "ev1")
	require.NoError(t, err)
	require.Nil(t, gone)
}

func testDeleteAbsentIsNoop(t *testing.T, store registration.Store) {
	ctx := context.Background()

	require.NoError(t, store.Registrations().Delete(ctx, "nobody", "ev1"))
	require.NoError(t, store.Waitlist().Remove(ctx, "nobody", "ev1"))
}

func testWaitlistOrdering(t *testing.T, store registration.Store) {
	ctx := context.Background()
	seedEvent(t, ctx, store, "ev1", 1, true)
	for _, id := range []string{"alice", "bob", "carol"} {
		seedUser(t, ctx, store, id)
	}

	next, err := store.Waitlist().NextPosition(ctx, "ev1")
	require.NoError(t, err)
	require.Equal(t, 1, next, "empty waitlist starts at position 1")

	now := time.Now().UTC()
	for i, userID := range []string{"alice", "bob", "carol"} {
		require.NoError(t, store.Waitlist().Add(ctx, &registration.WaitlistEntry{
			ID: "w-" + userID, UserID: userID, EventID: "ev1",
			Position: i + 1, CreatedAt: now,
		}))
	}

	next, err = store.Waitlist().NextPosition(ctx, "ev1")
	require.NoError(t, err)
	require.Equal(t, 4, next)

	first, err := store.Waitlist().FindFirstByEvent(ctx, "ev1")
	require.NoError(t, err)
	require.Equal(t, "alice", first.UserID)
	require.Equal(t, 1, first.Position)

	// Removing the front must not renumber anyone: the new head keeps
	// position 2 and assignment still grows from the old maximum.
	require.NoError(t, store.Waitlist().Remove(ctx, "alice", "ev1"))

	first, err = store.Waitlist().FindFirstByEvent(ctx, "ev1")
	require.NoError(t, err)
	require.Equal(t, "bob", first.UserID)
	require.Equal(t, 2, first.Position)

	next, err = store.Waitlist().NextPosition(ctx, "ev1")
	require.NoError(t, err)
	require.Equal(t, 4, next)

	entries, err := store.Waitlist().FindByEvent(ctx, "ev1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, []int{2, 3}, []int{entries[0].Position, entries[1].Position})

	// Draining the list resets assignment to 1.
	require.NoError(t, store.Waitlist().Remove(ctx, "bob", "ev1"))
	require.NoError(t, store.Waitlist().Remove(ctx, "carol", "ev1"))

	next, err = store.Waitlist().NextPosition(ctx, "ev1")
	require.NoError(t, err)
	require.Equal(t, 1, next)

	first, err = store.Waitlist().FindFirstByEvent(ctx, "ev1")
	require.NoError(t, err)
	require.Nil(t, first)
}

func testWaitlistUniqueness(t *testing.T, store registration.Store) {
	ctx := context.Background()
	seedEvent(t, ctx, store, "ev1", 1, true)
	seedUser(t, ctx, store, "alice")
	seedUser(t, ctx, store, "bob")

	require.NoError(t, store.Waitlist().Add(ctx, &registration.WaitlistEntry{
		ID: "w1", UserID: "alice", EventID: "ev1", Position: 1, CreatedAt: time.Now().UTC(),
	}))

	err := store.Waitlist().Add(ctx, &registration.WaitlistEntry{
		ID: "w2", UserID: "alice", EventID: "ev1", Position: 2, CreatedAt: time.Now().UTC(),
	})
	require.ErrorIs(t, err, registration.ErrDuplicate, "one entry per (user, event)")

	err = store.Waitlist().Add(ctx, &registration.WaitlistEntry{
		ID: "w3", UserID: "bob", EventID: "ev1", Position: 1, CreatedAt: time.Now().UTC(),
	})
	require.ErrorIs(t, err, registration.ErrDuplicate, "one entry per (event, position)")
}

func testAtomicPropagatesError(t *testing.T, store registration.Store) {
	ctx := context.Background()
	seedEvent(t, ctx, store, "ev1", 1, false)

	boom := errors.New("boom")
	err := store.Atomic(ctx, "ev1", func(context.Context, registration.Store) error {
		return boom
	})
	require.ErrorIs(t, err, boom)
}

func testAtomicSeesCommittedState(t *testing.T, store registration.Store) {
	ctx := context.Background()
	seedEvent(t, ctx, store, "ev1", 1, false)
	seedUser(t, ctx, store, "alice")

	err := store.Atomic(ctx, "ev1", func(ctx context.Context, s registration.Store) error {
		user, err := s.Users().FindByID(ctx, "alice")
		if err != nil {
			return err
		}
		if user == nil {
			return errors.New("unit cannot see committed user")
		}

		// Writes inside the unit are readable within it.
		if err := s.Registrations().Save(ctx, &registration.Registration{
			ID: "r1", UserID: "alice", EventID: "ev1",
			Status: registration.StatusActive, CreatedAt: time.Now().UTC(),
		}); err != nil {
			return err
		}
		count, err := s.Registrations().CountActiveByEvent(ctx, "ev1")
		if err != nil {
			return err
		}
		if count != 1 {
			return errors.New("unit cannot see its own write")
		}
		return nil
	})
	require.NoError(t, err)

	// And the unit's writes are visible once it completes.
	count, err := store.Registrations().CountActiveByEvent(ctx, "ev1")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func testAtomicSerializesPerEvent(t *testing.T, store registration.Store) {
	ctx := context.Background()
	seedEvent(t, ctx, store, "ev1", 1, false)

	const workers = 8
	counter := 0
	done := make(chan error, workers)
	for i := 0; i < workers; i++ {
		go func() {
			done <- store.Atomic(ctx, "ev1", func(context.Context, registration.Store) error {
				// Unsynchronized on purpose; the per-event unit must make
				// this safe.
				counter++
				return nil
			})
		}()
	}
	for i := 0; i < workers; i++ {
		require.NoError(t, <-done)
	}
	require.Equal(t, workers, counter)
}
