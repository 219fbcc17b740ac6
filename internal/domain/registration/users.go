package registration

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// UserService creates and fetches users.
type UserService struct {
	repo   UserRepository
	logger zerolog.Logger
}

// NewUserService creates a user service.
func NewUserService(repo UserRepository, logger zerolog.Logger) *UserService {
	return &UserService{
		repo:   repo,
		logger: logger.With().Str("component", "users").Logger(),
	}
}

// CreateUser validates and stores a new user. The identifier is caller
// supplied and must be unique.
func (s *UserService) CreateUser(ctx context.Context, id, name string) (*User, error) {
	user, err := NewUser(id, name)
	if err != nil {
		return nil, err
	}

	taken, err := s.repo.Exists(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("check user exists: %w", err)
	}
	if taken {
		return nil, &DuplicateError{Resource: "user", Message: fmt.Sprintf("User with ID %s already exists", user.ID)}
	}

	if err := s.repo.Save(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, &DuplicateError{Resource: "user", Message: fmt.Sprintf("User with ID %s already exists", user.ID)}
		}
		return nil, fmt.Errorf("save user: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID).Msg("user created")
	return user, nil
}

// GetUser fetches a user by id. Fails with NotFoundError when absent.
func (s *UserService) GetUser(ctx context.Context, id string) (*User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, &NotFoundError{Resource: "user", Message: fmt.Sprintf("User %s not found", id)}
	}
	return user, nil
}
