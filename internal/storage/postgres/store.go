// Package postgres implements the registration Store on PostgreSQL
// using pgx. Atomic units run inside a transaction that takes a row
// lock on the event, serializing registration work per event.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/guestlist/server/internal/domain/registration"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// queryer is the subset of pgx shared by pgxpool.Pool and pgx.Tx.
type queryer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements registration.Store. A zero tx means operations run
// directly on the pool; inside Atomic they run on the unit's
// transaction.
type Store struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

var _ registration.Store = (*Store)(nil)

func NewStore(pool *pgxpool.Pool) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("postgres store: pool is nil")
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Users() registration.UserRepository {
	return &UserRepo{pool: s.pool, tx: s.tx}
}

func (s *Store) Events() registration.EventRepository {
	return &EventRepo{pool: s.pool, tx: s.tx}
}

func (s *Store) Registrations() registration.RegistrationRepository {
	return &RegistrationRepo{pool: s.pool, tx: s.tx}
}

func (s *Store) Waitlist() registration.WaitlistRepository {
	return &WaitlistRepo{pool: s.pool, tx: s.tx}
}

// Atomic runs fn inside a transaction after locking the event row.
// The row lock serializes concurrent units for the same event, closing
// the race where two registrations both see the last free slot. A
// missing event locks nothing; fn re-checks existence itself.
func (s *Store) Atomic(ctx context.Context, eventID string, fn func(context.Context, registration.Store) error) error {
	if s.tx != nil {
		if err := lockEvent(ctx, s.tx, eventID); err != nil {
			return err
		}
		return fn(ctx, s)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	wrapped := &Store{pool: s.pool, tx: tx}
	if err := lockEvent(ctx, tx, eventID); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := fn(ctx, wrapped); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Ping verifies database connectivity. Used by readiness checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func lockEvent(ctx context.Context, tx pgx.Tx, eventID string) error {
	if _, err := tx.Exec(ctx, `SELECT id FROM events WHERE id = $1 FOR UPDATE`, eventID); err != nil {
		return fmt.Errorf("lock event: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique
// constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
