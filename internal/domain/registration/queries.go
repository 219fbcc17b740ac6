package registration

import (
	"context"
	"fmt"
)

// Queries is the read-only facade over the store: remaining capacity, a
// user's active events, and membership checks. No writes.
type Queries struct {
	store Store
}

// NewQueries creates the read facade.
func NewQueries(store Store) *Queries {
	return &Queries{store: store}
}

// AvailableCapacity returns event.Capacity minus the ACTIVE
// registration count. Fails with NotFoundError when the event is
// absent.
func (q *Queries) AvailableCapacity(ctx context.Context, eventID string) (int, error) {
	event, err := q.store.Events().FindByID(ctx, eventID)
	if err != nil {
		return 0, fmt.Errorf("find event: %w", err)
	}
	if event == nil {
		return 0, &NotFoundError{Resource: "event", Message: fmt.Sprintf("Event %s not found", eventID)}
	}

	active, err := q.store.Registrations().CountActiveByEvent(ctx, eventID)
	if err != nil {
		return 0, fmt.Errorf("count active registrations: %w", err)
	}
	return event.Capacity - active, nil
}

// RegisteredEvents returns the events the user holds an ACTIVE
// registration for, in registration order. Waitlisted events never
// appear. Fails with NotFoundError when the user is absent.
func (q *Queries) RegisteredEvents(ctx context.Context, userID string) ([]*Event, error) {
	user, err := q.store.Users().FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, &NotFoundError{Resource: "user", Message: fmt.Sprintf("User %s not found", userID)}
	}

	regs, err := q.store.Registrations().FindActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find active registrations: %w", err)
	}

	events := make([]*Event, 0, len(regs))
	for _, reg := range regs {
		event, err := q.store.Events().FindByID(ctx, reg.EventID)
		if err != nil {
			return nil, fmt.Errorf("find event: %w", err)
		}
		if event != nil {
			events = append(events, event)
		}
	}
	return events, nil
}

// IsRegistered reports whether the user holds an ACTIVE registration
// for the event.
func (q *Queries) IsRegistered(ctx context.Context, userID, eventID string) (bool, error) {
	reg, err := q.store.Registrations().FindByUserAndEvent(ctx, userID, eventID)
	if err != nil {
		return false, fmt.Errorf("find registration: %w", err)
	}
	return reg != nil && reg.Status == StatusActive, nil
}

// IsWaitlisted reports whether the user has a waitlist entry for the
// event.
func (q *Queries) IsWaitlisted(ctx context.Context, userID, eventID string) (bool, error) {
	entry, err := q.store.Waitlist().FindByUserAndEvent(ctx, userID, eventID)
	if err != nil {
		return false, fmt.Errorf("find waitlist entry: %w", err)
	}
	return entry != nil, nil
}
