// Package jsonfile implements repositories on top of plain JSON files.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"price-board/internal/domain"
	"price-board/internal/fileutil"
	"price-board/internal/repository"
)

// userRecord is the on-disk shape of a user; "password" holds the hash.
type userRecord struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserRepository keeps all users in one indented JSON array. Every call
// re-reads the file; writes are serialized by mu.
type UserRepository struct {
	path string
	mu   sync.Mutex
}

func NewUserRepository(path string) *UserRepository {
	return &UserRepository{path: path}
}

var _ repository.UserRepository = (*UserRepository)(nil)

// Init creates an empty user list if the file does not exist yet.
func (r *UserRepository) Init(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := os.Stat(r.path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return repository.NewStorageError("stat", r.path, err)
	}
	return r.saveLocked(nil)
}

func (r *UserRepository) Load(ctx context.Context) ([]domain.User, error) {
	return r.load()
}

func (r *UserRepository) Save(ctx context.Context, users []domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saveLocked(users)
}

func (r *UserRepository) Mutate(ctx context.Context, fn repository.UserMutation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	users, err := r.load()
	if err != nil {
		return err
	}
	next, err := fn(users)
	if err != nil {
		return err
	}
	return r.saveLocked(next)
}

func (r *UserRepository) load() ([]domain.User, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, repository.NewStorageError("read", r.path, err)
	}

	var records []userRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, repository.NewStorageError("decode", r.path, err)
	}

	users := make([]domain.User, len(records))
	for i, rec := range records {
		users[i] = domain.User{Username: rec.Username, PasswordHash: rec.Password}
	}
	return users, nil
}

func (r *UserRepository) saveLocked(users []domain.User) error {
	records := make([]userRecord, len(users))
	for i, u := range users {
		records[i] = userRecord{Username: u.Username, Password: u.PasswordHash}
	}

	data, err := encodeIndented(records)
	if err != nil {
		return repository.NewStorageError("encode", r.path, err)
	}
	if err := fileutil.WriteFileAtomic(r.path, data, 0o600); err != nil {
		return repository.NewStorageError("write", r.path, err)
	}
	return nil
}

// encodeIndented marshals v with two-space indentation and without HTML
// escaping, so bcrypt hashes and item names round-trip byte for byte.
func encodeIndented(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
