package registration

import (
	"context"
	"errors"
)

// ErrDuplicate is returned by Save/Add when a uniqueness constraint is
// violated. Implementations translate their native conflict signal to
// this sentinel.
var ErrDuplicate = errors.New("record already exists")

// Find methods on all repositories return (nil, nil) when no record
// matches; errors are reserved for storage faults.

// UserRepository persists User records.
type UserRepository interface {
	Save(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	Exists(ctx context.Context, id string) (bool, error)
}

// EventRepository persists Event records.
type EventRepository interface {
	Save(ctx context.Context, event *Event) error
	FindByID(ctx context.Context, id string) (*Event, error)
	Exists(ctx context.Context, id string) (bool, error)
}

// RegistrationRepository persists Registration records.
type RegistrationRepository interface {
	Save(ctx context.Context, reg *Registration) error
	Delete(ctx context.Context, userID, eventID string) error
	FindByUserAndEvent(ctx context.Context, userID, eventID string) (*Registration, error)
	// FindActiveByUser returns ACTIVE registrations in creation order.
	FindActiveByUser(ctx context.Context, userID string) ([]*Registration, error)
	CountActiveByEvent(ctx context.Context, eventID string) (int, error)
	FindByEvent(ctx context.Context, eventID string) ([]*Registration, error)
}

// WaitlistRepository persists WaitlistEntry records.
type WaitlistRepository interface {
	Add(ctx context.Context, entry *WaitlistEntry) error
	Remove(ctx context.Context, userID, eventID string) error
	FindByUserAndEvent(ctx context.Context, userID, eventID string) (*WaitlistEntry, error)
	// FindFirstByEvent returns the entry with the minimum remaining
	// position, or nil when the waitlist is empty.
	FindFirstByEvent(ctx context.Context, eventID string) (*WaitlistEntry, error)
	// NextPosition returns max(position)+1 over the event's current
	// entries, or 1 when there are none.
	NextPosition(ctx context.Context, eventID string) (int, error)
	// FindByEvent returns entries ordered by position.
	FindByEvent(ctx context.Context, eventID string) ([]*WaitlistEntry, error)
}

// Store groups data access by record kind.
type Store interface {
	Users() UserRepository
	Events() EventRepository
	Registrations() RegistrationRepository
	Waitlist() WaitlistRepository

	// Atomic runs fn as a single unit serialized per event: no other
	// Atomic call for the same event observes a partial state, and a
	// returned error leaves no partial write behind. fn receives a
	// Store scoped to the unit.
	Atomic(ctx context.Context, eventID string, fn func(context.Context, Store) error) error
}
