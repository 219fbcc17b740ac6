package registration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/guestlist/server/internal/domain/ids"
	"github.com/guestlist/server/internal/metrics"
	"github.com/rs/zerolog"
)

// Engine performs the state-changing registration operations and is the
// sole writer of Registration and WaitlistEntry records. Every
// operation runs its checks and writes inside one per-event atomic
// unit, so concurrent calls racing for the last slot resolve to a
// single winner and the loser is evaluated as if it arrived after.
type Engine struct {
	store  Store
	logger zerolog.Logger
}

// NewEngine creates a registration engine over the given store.
func NewEngine(store Store, logger zerolog.Logger) *Engine {
	return &Engine{
		store:  store,
		logger: logger.With().Str("component", "registration").Logger(),
	}
}

// Register claims a slot for a user on an event. With free capacity the
// user becomes ACTIVE. On a full event with a waitlist the user is
// appended at max position + 1. On a full event without one the result
// is the denied variant carrying a CapacityError.
//
// Errors: NotFoundError when the user or event does not exist,
// DuplicateError when the pair already holds a registration or waitlist
// entry, RegistrationError for storage faults.
func (e *Engine) Register(ctx context.Context, userID, eventID string) (RegisterResult, error) {
	var result RegisterResult
	err := e.store.Atomic(ctx, eventID, func(ctx context.Context, s Store) error {
		user, err := s.Users().FindByID(ctx, userID)
		if err != nil {
			return &RegistrationError{Op: "find user", Err: err}
		}
		if user == nil {
			return &NotFoundError{Resource: "user", Message: fmt.Sprintf("User %s not found", userID)}
		}

		event, err := s.Events().FindByID(ctx, eventID)
		if err != nil {
			return &RegistrationError{Op: "find event", Err: err}
		}
		if event == nil {
			return &NotFoundError{Resource: "event", Message: fmt.Sprintf("Event %s not found", eventID)}
		}

		existing, err := s.Registrations().FindByUserAndEvent(ctx, userID, eventID)
		if err != nil {
			return &RegistrationError{Op: "find registration", Err: err}
		}
		if existing != nil {
			return &DuplicateError{
				Resource: "registration",
				Message:  fmt.Sprintf("User %s is already registered for event %s", userID, eventID),
			}
		}

		queued, err := s.Waitlist().FindByUserAndEvent(ctx, userID, eventID)
		if err != nil {
			return &RegistrationError{Op: "find waitlist entry", Err: err}
		}
		if queued != nil {
			return &DuplicateError{
				Resource: "waitlist",
				Message:  fmt.Sprintf("User %s is already on the waitlist for event %s", userID, eventID),
			}
		}

		active, err := s.Registrations().CountActiveByEvent(ctx, eventID)
		if err != nil {
			return &RegistrationError{Op: "count active registrations", Err: err}
		}

		if active < event.Capacity {
			reg := newRegistration(userID, eventID)
			if err := s.Registrations().Save(ctx, reg); err != nil {
				if errors.Is(err, ErrDuplicate) {
					return &DuplicateError{
						Resource: "registration",
						Message:  fmt.Sprintf("User %s is already registered for event %s", userID, eventID),
					}
				}
				return &RegistrationError{Op: "save registration", Err: err}
			}
			result = RegisterResult{
				Outcome:      OutcomeRegistered,
				Message:      "Successfully registered for event",
				Registration: reg,
			}
			return nil
		}

		if !event.HasWaitlist {
			denial := &CapacityError{EventID: eventID}
			result = RegisterResult{
				Outcome: OutcomeDenied,
				Message: denial.Error(),
				Denial:  denial,
			}
			return nil
		}

		position, err := s.Waitlist().NextPosition(ctx, eventID)
		if err != nil {
			return &RegistrationError{Op: "next waitlist position", Err: err}
		}
		entry := newWaitlistEntry(userID, eventID, position)
		if err := s.Waitlist().Add(ctx, entry); err != nil {
			if errors.Is(err, ErrDuplicate) {
				return &DuplicateError{
					Resource: "waitlist",
					Message:  fmt.Sprintf("User %s is already on the waitlist for event %s", userID, eventID),
				}
			}
			return &RegistrationError{Op: "add waitlist entry", Err: err}
		}
		result = RegisterResult{
			Outcome:       OutcomeWaitlisted,
			Message:       fmt.Sprintf("Event is full. Added to waitlist at position %d", position),
			WaitlistEntry: entry,
		}
		return nil
	})
	if err != nil {
		return RegisterResult{}, err
	}

	metrics.RegistrationsTotal.WithLabelValues(string(result.Outcome)).Inc()
	switch result.Outcome {
	case OutcomeRegistered:
		e.logger.Info().Str("user_id", userID).Str("event_id", eventID).Msg("user registered for event")
	case OutcomeWaitlisted:
		e.logger.Info().
			Str("user_id", userID).
			Str("event_id", eventID).
			Int("position", result.WaitlistEntry.Position).
			Msg("user added to waitlist")
	case OutcomeDenied:
		e.logger.Info().Str("user_id", userID).Str("event_id", eventID).Msg("registration denied, event full")
	}
	return result, nil
}

// Unregister releases a user's ACTIVE registration. When the event has
// a waitlist and it is non-empty, the freed slot is refilled in the
// same atomic unit: the minimum-position entry is removed and converted
// into a new ACTIVE registration with a fresh identifier and timestamp.
// Remaining entries keep their positions.
//
// Returns NotFoundError when no ACTIVE registration exists for the
// pair; being waitlisted does not count.
func (e *Engine) Unregister(ctx context.Context, userID, eventID string) (UnregisterResult, error) {
	var result UnregisterResult
	err := e.store.Atomic(ctx, eventID, func(ctx context.Context, s Store) error {
		reg, err := s.Registrations().FindByUserAndEvent(ctx, userID, eventID)
		if err != nil {
			return &RegistrationError{Op: "find registration", Err: err}
		}
		if reg == nil || reg.Status != StatusActive {
			return &NotFoundError{
				Resource: "registration",
				Message:  fmt.Sprintf("User %s is not registered for event %s", userID, eventID),
			}
		}

		if err := s.Registrations().Delete(ctx, userID, eventID); err != nil {
			return &RegistrationError{Op: "delete registration", Err: err}
		}
		result = UnregisterResult{Message: "Successfully unregistered from event"}

		event, err := s.Events().FindByID(ctx, eventID)
		if err != nil {
			return &RegistrationError{Op: "find event", Err: err}
		}
		if event == nil || !event.HasWaitlist {
			return nil
		}

		first, err := s.Waitlist().FindFirstByEvent(ctx, eventID)
		if err != nil {
			return &RegistrationError{Op: "find first waitlist entry", Err: err}
		}
		if first == nil {
			return nil
		}

		if err := s.Waitlist().Remove(ctx, first.UserID, eventID); err != nil {
			return &RegistrationError{Op: "remove waitlist entry", Err: err}
		}
		promoted := newRegistration(first.UserID, eventID)
		if err := s.Registrations().Save(ctx, promoted); err != nil {
			return &RegistrationError{Op: "save promoted registration", Err: err}
		}
		result.Promoted = promoted
		return nil
	})
	if err != nil {
		return UnregisterResult{}, err
	}

	metrics.UnregistrationsTotal.Inc()
	e.logger.Info().Str("user_id", userID).Str("event_id", eventID).Msg("user unregistered from event")
	if result.Promoted != nil {
		metrics.PromotionsTotal.Inc()
		e.logger.Info().
			Str("user_id", result.Promoted.UserID).
			Str("event_id", eventID).
			Msg("promoted user from waitlist")
	}
	return result, nil
}

func newRegistration(userID, eventID string) *Registration {
	return &Registration{
		ID:        ids.NewRecordID(),
		UserID:    userID,
		EventID:   eventID,
		Status:    StatusActive,
		CreatedAt: time.Now().UTC(),
	}
}

func newWaitlistEntry(userID, eventID string, position int) *WaitlistEntry {
	return &WaitlistEntry{
		ID:        ids.NewRecordID(),
		UserID:    userID,
		EventID:   eventID,
		Position:  position,
		CreatedAt: time.Now().UTC(),
	}
}
