package repository

import (
	"context"

	"price-board/internal/domain"
)

// UserMutation transforms a snapshot of users into the list to persist.
// Returning an error aborts the write.
type UserMutation func(users []domain.User) ([]domain.User, error)

// UserRepository persists the ordered list of users as a single unit.
type UserRepository interface {
	Init(ctx context.Context) error
	Load(ctx context.Context) ([]domain.User, error)
	Save(ctx context.Context, users []domain.User) error
	// Mutate runs a read-modify-write cycle that is serialized against
	// every other Save and Mutate on the same repository.
	Mutate(ctx context.Context, fn UserMutation) error
}
