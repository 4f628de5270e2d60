package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"price-board/internal/domain"
	"price-board/internal/repository"
)

// bcrypt ignores input past 72 bytes; longer passwords are rejected instead
// of being silently truncated.
const maxPasswordBytes = 72

// PasswordHasher computes and checks salted one-way password hashes.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) (bool, error)
}

// TokenIssuer mints bearer tokens for authenticated users.
type TokenIssuer interface {
	Issue(username string) (string, error)
}

// UserUpdate carries the optional changes of an update; empty fields are left alone.
type UserUpdate struct {
	NewUsername string
	Password    string
}

// UserService describes user lifecycle operations and the login flow.
type UserService interface {
	Login(ctx context.Context, username, password string) (string, error)
	AddUser(ctx context.Context, username, password string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	UpdateUser(ctx context.Context, username string, update UserUpdate) error
	DeleteUser(ctx context.Context, username string) error
}

type userService struct {
	users  repository.UserRepository
	hasher PasswordHasher
	tokens TokenIssuer

	dummyOnce sync.Once
	dummyHash string
}

func NewUserService(users repository.UserRepository, hasher PasswordHasher, tokens TokenIssuer) UserService {
	return &userService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
	}
}

func (s *userService) Login(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", ErrInvalidCredentials
	}

	users, err := s.users.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("load users: %w", err)
	}

	idx := indexOf(users, username)
	if idx < 0 {
		// burn one comparison so unknown users cost as much as wrong passwords
		_, _ = s.hasher.Verify(password, s.dummy())
		return "", ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(password, users[idx].PasswordHash)
	if err != nil {
		return "", fmt.Errorf("verify password for %q: %w", username, err)
	}
	if !ok {
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(username)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

func (s *userService) AddUser(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, invalid("username", "is required")
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	user := domain.User{Username: username, PasswordHash: hash}

	err = s.users.Mutate(ctx, func(users []domain.User) ([]domain.User, error) {
		if indexOf(users, username) >= 0 {
			return nil, ErrUserAlreadyExists
		}
		return append(users, user), nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.Load(ctx)
}

func (s *userService) UpdateUser(ctx context.Context, username string, update UserUpdate) error {
	newUsername := strings.TrimSpace(update.NewUsername)
	if newUsername == "" && update.Password == "" {
		return invalid("newUsername or password", "is required")
	}

	var hash string
	if update.Password != "" {
		if err := validatePassword(update.Password); err != nil {
			return err
		}
		h, err := s.hasher.Hash(update.Password)
		if err != nil {
			return err
		}
		hash = h
	}

	return s.users.Mutate(ctx, func(users []domain.User) ([]domain.User, error) {
		idx := indexOf(users, username)
		if idx < 0 {
			return nil, ErrUserNotFound
		}
		if newUsername != "" && newUsername != username {
			if indexOf(users, newUsername) >= 0 {
				return nil, ErrUserAlreadyExists
			}
			users[idx].Username = newUsername
		}
		if hash != "" {
			users[idx].PasswordHash = hash
		}
		return users, nil
	})
}

func (s *userService) DeleteUser(ctx context.Context, username string) error {
	return s.users.Mutate(ctx, func(users []domain.User) ([]domain.User, error) {
		idx := indexOf(users, username)
		if idx < 0 {
			return nil, ErrUserNotFound
		}
		return append(users[:idx], users[idx+1:]...), nil
	})
}

func (s *userService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("timing-equalizer")
	})
	return s.dummyHash
}

func validatePassword(password string) error {
	if password == "" {
		return invalid("password", "is required")
	}
	if len(password) > maxPasswordBytes {
		return invalid("password", fmt.Sprintf("must be at most %d bytes", maxPasswordBytes))
	}
	return nil
}

func indexOf(users []domain.User, username string) int {
	for i := range users {
		if users[i].Username == username {
			return i
		}
	}
	return -1
}
