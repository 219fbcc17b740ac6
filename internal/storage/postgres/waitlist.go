package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/guestlist/server/internal/domain/registration"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type WaitlistRepo struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

var _ registration.WaitlistRepository = (*WaitlistRepo)(nil)

func (r *WaitlistRepo) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

func (r *WaitlistRepo) Add(ctx context.Context, entry *registration.WaitlistEntry) error {
	_, err := r.queryer().Exec(ctx, `
INSERT INTO waitlist_entries (id, user_id, event_id, position, created_at)
VALUES ($1, $2, $3, $4, $5)
`, entry.ID, entry.UserID, entry.EventID, entry.Position, entry.CreatedAt)
	if isUniqueViolation(err) {
		return registration.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("add waitlist entry: %w", err)
	}
	return nil
}

func (r *WaitlistRepo) Remove(ctx context.Context, userID, eventID string) error {
	_, err := r.queryer().Exec(ctx, `
DELETE FROM waitlist_entries
 WHERE user_id = $1 AND event_id = $2
`, userID, eventID)
	if err != nil {
		return fmt.Errorf("remove waitlist entry: %w", err)
	}
	return nil
}

func (r *WaitlistRepo) FindByUserAndEvent(ctx context.Context, userID, eventID string) (*registration.WaitlistEntry, error) {
	entry, err := scanWaitlistEntry(r.queryer().QueryRow(ctx, `
SELECT id, user_id, event_id, position, created_at
  FROM waitlist_entries
 WHERE user_id = $1 AND event_id = $2
`, userID, eventID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find waitlist entry: %w", err)
	}
	return entry, nil
}

func (r *WaitlistRepo) FindFirstByEvent(ctx context.Context, eventID string) (*registration.WaitlistEntry, error) {
	entry, err := scanWaitlistEntry(r.queryer().QueryRow(ctx, `
SELECT id, user_id, event_id, position, created_at
  FROM waitlist_entries
 WHERE event_id = $1
 ORDER BY position ASC
 LIMIT 1
`, eventID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find first waitlist entry: %w", err)
	}
	return entry, nil
}

func (r *WaitlistRepo) NextPosition(ctx context.Context, eventID string) (int, error) {
	var next int
	err := r.queryer().QueryRow(ctx, `
SELECT COALESCE(MAX(position), 0) + 1
  FROM waitlist_entries
 WHERE event_id = $1
`, eventID).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("next waitlist position: %w", err)
	}
	return next, nil
}

func (r *WaitlistRepo) FindByEvent(ctx context.Context, eventID string) ([]*registration.WaitlistEntry, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT id, user_id, event_id, position, created_at
  FROM waitlist_entries
 WHERE event_id = $1
 ORDER BY position ASC
`, eventID)
	if err != nil {
		return nil, fmt.Errorf("find waitlist by event: %w", err)
	}
	defer rows.Close()

	var entries []*registration.WaitlistEntry
	for rows.Next() {
		entry, err := scanWaitlistEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan waitlist entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate waitlist entries: %w", err)
	}
	return entries, nil
}

func scanWaitlistEntry(row pgx.Row) (*registration.WaitlistEntry, error) {
	var entry registration.WaitlistEntry
	if err := row.Scan(&entry.ID, &entry.UserID, &entry.EventID, &entry.Position, &entry.CreatedAt); err != nil {
		return nil, err
	}
	return &entry, nil
}
