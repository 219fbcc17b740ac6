package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/guestlist/server/internal/domain/registration"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RegistrationRepo struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

var _ registration.RegistrationRepository = (*RegistrationRepo)(nil)

func (r *RegistrationRepo) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

func (r *RegistrationRepo) Save(ctx context.Context, reg *registration.Registration) error {
	_, err := r.queryer().Exec(ctx, `
INSERT INTO registrations (id, user_id, event_id, status, created_at)
VALUES ($1, $2, $3, $4, $5)
`, reg.ID, reg.UserID, reg.EventID, string(reg.Status), reg.CreatedAt)
	if isUniqueViolation(err) {
		return registration.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("save registration: %w", err)
	}
	return nil
}

func (r *RegistrationRepo) Delete(ctx context.Context, userID, eventID string) error {
	_, err := r.queryer().Exec(ctx, `
DELETE FROM registrations
 WHERE user_id = $1 AND event_id = $2
`, userID, eventID)
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	return nil
}

func (r *RegistrationRepo) FindByUserAndEvent(ctx context.Context, userID, eventID string) (*registration.Registration, error) {
	reg, err := scanRegistration(r.queryer().QueryRow(ctx, `
SELECT id, user_id, event_id, status, created_at
  FROM registrations
 WHERE user_id = $1 AND event_id = $2
`, userID, eventID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find registration: %w", err)
	}
	return reg, nil
}

func (r *RegistrationRepo) FindActiveByUser(ctx context.Context, userID string) ([]*registration.Registration, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT id, user_id, event_id, status, created_at
  FROM registrations
 WHERE user_id = $1 AND status = $2
 ORDER BY created_at ASC, id ASC
`, userID, string(registration.StatusActive))
	if err != nil {
		return nil, fmt.Errorf("find active registrations: %w", err)
	}
	defer rows.Close()
	return collectRegistrations(rows)
}

func (r *RegistrationRepo) CountActiveByEvent(ctx context.Context, eventID string) (int, error) {
	var count int
	err := r.queryer().QueryRow(ctx, `
SELECT COUNT(*)
  FROM registrations
 WHERE event_id = $1 AND status = $2
`, eventID, string(registration.StatusActive)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count active registrations: %w", err)
	}
	return count, nil
}

func (r *RegistrationRepo) FindByEvent(ctx context.Context, eventID string) ([]*registration.Registration, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT id, user_id, event_id, status, created_at
  FROM registrations
 WHERE event_id = $1
 ORDER BY created_at ASC, id ASC
`, eventID)
	if err != nil {
		return nil, fmt.Errorf("find registrations by event: %w", err)
	}
	defer rows.Close()
	return collectRegistrations(rows)
}

func scanRegistration(row pgx.Row) (*registration.Registration, error) {
	var reg registration.Registration
	var status string
	if err := row.Scan(&reg.ID, &reg.UserID, &reg.EventID, &status, &reg.CreatedAt); err != nil {
		return nil, err
	}
	reg.Status = registration.Status(status)
	return &reg, nil
}

func collectRegistrations(rows pgx.Rows) ([]*registration.Registration, error) {
	var regs []*registration.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		regs = append(regs, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate registrations: %w", err)
	}
	return regs, nil
}
