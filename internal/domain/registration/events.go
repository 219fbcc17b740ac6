package registration

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/guestlist/server/internal/domain/ids"
	"github.com/rs/zerolog"
)

// EventService creates and fetches registerable events.
type EventService struct {
	repo   EventRepository
	logger zerolog.Logger
}

// NewEventService creates an event service.
func NewEventService(repo EventRepository, logger zerolog.Logger) *EventService {
	return &EventService{
		repo:   repo,
		logger: logger.With().Str("component", "events").Logger(),
	}
}

// CreateEvent validates and stores a new event. A blank id gets a
// server-minted ULID.
func (s *EventService) CreateEvent(ctx context.Context, id, name string, capacity int, hasWaitlist bool) (*Event, error) {
	if strings.TrimSpace(id) == "" {
		minted, err := ids.NewULID()
		if err != nil {
			return nil, fmt.Errorf("mint event id: %w", err)
		}
		id = minted
	}

	event, err := NewEvent(id, name, capacity, hasWaitlist)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, event); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, &DuplicateError{Resource: "event", Message: fmt.Sprintf("Event with ID %s already exists", event.ID)}
		}
		return nil, fmt.Errorf("save event: %w", err)
	}

	s.logger.Info().
		Str("event_id", event.ID).
		Int("capacity", event.Capacity).
		Bool("has_waitlist", event.HasWaitlist).
		Msg("event created")
	return event, nil
}

// GetEvent fetches an event by id. Fails with NotFoundError when
// absent.
func (s *EventService) GetEvent(ctx context.Context, id string) (*Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find event: %w", err)
	}
	if event == nil {
		return nil, &NotFoundError{Resource: "event", Message: fmt.Sprintf("Event %s not found", id)}
	}
	return event, nil
}
