package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// CreateUser adds an account. The user starts with no access to any
// existing item.
func (s *Service) CreateUser(ctx context.Context, username, password string, superuser bool) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: empty username", ErrBadCredentials)
	}

	existing, err := s.database.FindUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("checking for existing user: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrUserExists, username)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &User{
		Username:     username,
		PasswordHash: string(hash),
		IsSuperuser:  superuser,
		Token:        s.idgen.New(),
		CreatedAt:    s.clock.Now(),
	}
	if err := s.database.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("user created", "id", user.ID, "username", username, "superuser", superuser)
	return user, nil
}

// Authenticate checks a username and password pair.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	user, err := s.database.FindUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("finding user: %w", err)
	}
	if user == nil {
		return nil, ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrBadCredentials
		}
		return nil, fmt.Errorf("checking password: %w", err)
	}
	return user, nil
}

// FindUserByToken returns the user holding an API token, or ErrNotFound.
func (s *Service) FindUserByToken(ctx context.Context, token string) (*User, error) {
	user, err := s.database.FindUserByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("finding user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("token: %w", ErrNotFound)
	}
	return user, nil
}

// GetUserByName returns the named user, or ErrNotFound.
func (s *Service) GetUserByName(ctx context.Context, username string) (*User, error) {
	user, err := s.database.FindUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("finding user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
	}
	return user, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]*User, error) {
	users, err := s.database.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}
