package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/guestlist/server/internal/domain/registration"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepo struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

var _ registration.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

func (r *UserRepo) Save(ctx context.Context, user *registration.User) error {
	_, err := r.queryer().Exec(ctx, `
INSERT INTO users (id, name, created_at)
VALUES ($1, $2, $3)
`, user.ID, user.Name, user.CreatedAt)
	if isUniqueViolation(err) {
		return registration.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*registration.User, error) {
	var user registration.User
	err := r.queryer().QueryRow(ctx, `
SELECT id, name, created_at
  FROM users
 WHERE id = $1
`, id).Scan(&user.ID, &user.Name, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

func (r *UserRepo) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.queryer().QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("user exists: %w", err)
	}
	return exists, nil
}
