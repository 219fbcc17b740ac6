package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/guestlist/server/internal/domain/registration"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EventRepo struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

var _ registration.EventRepository = (*EventRepo)(nil)

func (r *EventRepo) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

func (r *EventRepo) Save(ctx context.Context, event *registration.Event) error {
	_, err := r.queryer().Exec(ctx, `
INSERT INTO events (id, name, capacity, has_waitlist, created_at)
VALUES ($1, $2, $3, $4, $5)
`, event.ID, event.Name, event.Capacity, event.HasWaitlist, event.CreatedAt)
	if isUniqueViolation(err) {
		return registration.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("save event: %w", err)
	}
	return nil
}

func (r *EventRepo) FindByID(ctx context.Context, id string) (*registration.Event, error) {
	var event registration.Event
	err := r.queryer().QueryRow(ctx, `
SELECT id, name, capacity, has_waitlist, created_at
  FROM events
 WHERE id = $1
`, id).Scan(&event.ID, &event.Name, &event.Capacity, &event.HasWaitlist, &event.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find event: %w", err)
	}
	return &event, nil
}

func (r *EventRepo) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.queryer().QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("event exists: %w", err)
	}
	return exists, nil
}
