// Package registration implements the event registration and waitlist
// engine: users claim limited-capacity event slots, overflow demand
// queues on a per-event waitlist, and freed capacity promotes the
// longest-waiting entry.
package registration

import (
	"strings"
	"time"
)

// Status classifies a registration record.
type Status string

const (
	StatusActive     Status = "ACTIVE"
	StatusWaitlisted Status = "WAITLISTED"
)

// User is a registrant. Immutable once created.
type User struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Event is a registerable event: a fixed capacity and an optional
// waitlist. Immutable once created.
type Event struct {
	ID          string
	Name        string
	Capacity    int
	HasWaitlist bool
	CreatedAt   time.Time
}

// Registration is a user's claim on an event slot. At most one exists
// per (user, event) pair; only ACTIVE registrations count against
// capacity.
type Registration struct {
	ID        string
	UserID    string
	EventID   string
	Status    Status
	CreatedAt time.Time
}

// WaitlistEntry queues a user for a full event. Positions are assigned
// per event in strictly increasing arrival order starting at 1 and are
// never renumbered; promotion always takes the minimum remaining
// position.
type WaitlistEntry struct {
	ID        string
	UserID    string
	EventID   string
	Position  int
	CreatedAt time.Time
}

// NewUser validates and builds a User. Identifier and name are trimmed;
// empty or whitespace-only values fail with a ValidationError.
func NewUser(id, name string) (*User, error) {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	if id == "" {
		return nil, &ValidationError{Field: "userId", Message: "UserId cannot be empty"}
	}
	if name == "" {
		return nil, &ValidationError{Field: "name", Message: "Name cannot be empty"}
	}
	return &User{ID: id, Name: name, CreatedAt: time.Now().UTC()}, nil
}

// NewEvent validates and builds an Event. Capacity must be positive.
func NewEvent(id, name string, capacity int, hasWaitlist bool) (*Event, error) {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	if id == "" {
		return nil, &ValidationError{Field: "eventId", Message: "EventId cannot be empty"}
	}
	if name == "" {
		return nil, &ValidationError{Field: "name", Message: "Event name cannot be empty"}
	}
	if capacity <= 0 {
		return nil, &ValidationError{Field: "capacity", Message: "Capacity must be a positive integer"}
	}
	return &Event{
		ID:          id,
		Name:        name,
		Capacity:    capacity,
		HasWaitlist: hasWaitlist,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// Outcome discriminates RegisterResult variants.
type Outcome string

const (
	OutcomeRegistered Outcome = "registered"
	OutcomeWaitlisted Outcome = "waitlisted"
	OutcomeDenied     Outcome = "denied"
)

// RegisterResult is the outcome of a Register call. Outcome selects the
// variant: exactly one of Registration, WaitlistEntry, or Denial is
// set. Denial is an expected business outcome and is reported here, not
// as the operation's error.
type RegisterResult struct {
	Outcome       Outcome
	Message       string
	Registration  *Registration
	WaitlistEntry *WaitlistEntry
	Denial        *CapacityError
}

// UnregisterResult reports a completed unregistration and the
// registration promoted from the waitlist, if any.
type UnregisterResult struct {
	Message  string
	Promoted *Registration
}
