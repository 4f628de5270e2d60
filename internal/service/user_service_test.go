package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"price-board/internal/auth"
	"price-board/internal/domain"
	"price-board/internal/repository"
	"price-board/internal/repository/jsonfile"
)

type fixture struct {
	svc    UserService
	repo   *jsonfile.UserRepository
	hasher *auth.PasswordHasher
	tokens *auth.TokenIssuer
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	repo := jsonfile.NewUserRepository(filepath.Join(t.TempDir(), "users.json"))
	require.NoError(t, repo.Init(context.Background()))

	hasher := auth.NewPasswordHasher(bcrypt.MinCost)
	tokens, err := auth.NewTokenIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	return fixture{
		svc:    NewUserService(repo, hasher, tokens),
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
	}
}

func (f fixture) users(t *testing.T) []domain.User {
	t.Helper()
	users, err := f.repo.Load(context.Background())
	require.NoError(t, err)
	return users
}

func TestAddUser_StoresVerifiableHash(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.svc.AddUser(ctx, "  alice ", "correct")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	stored := f.users(t)
	require.Len(t, stored, 1)
	assert.Equal(t, "alice", stored[0].Username)
	assert.NotEqual(t, "correct", stored[0].PasswordHash)

	ok, err := f.hasher.Verify("correct", stored[0].PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.hasher.Verify("wrong", stored[0].PasswordHash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAddUser_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
		field    string
	}{
		{name: "missing username", username: " ", password: "pw", field: "username"},
		{name: "missing password", username: "alice", password: "", field: "password"},
		{name: "password too long", username: "alice", password: string(make([]byte, 73)), field: "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.AddUser(ctx, tt.username, tt.password)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
	assert.Empty(t, f.users(t))
}

func TestAddUser_RejectsDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddUser(ctx, "alice", "one")
	require.NoError(t, err)
	_, err = f.svc.AddUser(ctx, "alice", "two")

	assert.ErrorIs(t, err, ErrUserAlreadyExists)
	assert.Len(t, f.users(t), 1)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.AddUser(ctx, "alice", "correct")
	require.NoError(t, err)

	t.Run("success issues verifiable token", func(t *testing.T) {
		token, err := f.svc.Login(ctx, "alice", "correct")
		require.NoError(t, err)
		require.NotEmpty(t, token)

		username, err := f.tokens.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "alice", username)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := f.svc.Login(ctx, "alice", "nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown user is indistinguishable", func(t *testing.T) {
		_, err := f.svc.Login(ctx, "ghost", "correct")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("empty fields", func(t *testing.T) {
		_, err := f.svc.Login(ctx, "", "")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestLogin_CorruptHash(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.repo.Save(ctx, []domain.User{{Username: "alice", PasswordHash: "garbage"}}))

	_, err := f.svc.Login(ctx, "alice", "pw")

	var he *auth.HashError
	assert.ErrorAs(t, err, &he)
	assert.False(t, errors.Is(err, ErrInvalidCredentials))
}

func TestLogin_StorageFailure(t *testing.T) {
	repo := jsonfile.NewUserRepository(filepath.Join(t.TempDir(), "missing.json"))
	tokens, err := auth.NewTokenIssuer("s", time.Hour)
	require.NoError(t, err)
	svc := NewUserService(repo, auth.NewPasswordHasher(bcrypt.MinCost), tokens)

	_, err = svc.Login(context.Background(), "alice", "pw")

	var se *repository.StorageError
	assert.ErrorAs(t, err, &se)
}

func TestUpdateUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.AddUser(ctx, "alice", "old")
	require.NoError(t, err)
	_, err = f.svc.AddUser(ctx, "bob", "pw")
	require.NoError(t, err)

	t.Run("rename and reset password", func(t *testing.T) {
		require.NoError(t, f.svc.UpdateUser(ctx, "alice", UserUpdate{NewUsername: "alicia", Password: "new"}))

		_, err := f.svc.Login(ctx, "alice", "old")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		_, err = f.svc.Login(ctx, "alicia", "new")
		assert.NoError(t, err)
	})

	t.Run("password only keeps name", func(t *testing.T) {
		require.NoError(t, f.svc.UpdateUser(ctx, "bob", UserUpdate{Password: "fresh"}))
		_, err := f.svc.Login(ctx, "bob", "fresh")
		assert.NoError(t, err)
	})

	t.Run("rename collision", func(t *testing.T) {
		err := f.svc.UpdateUser(ctx, "bob", UserUpdate{NewUsername: "alicia"})
		assert.ErrorIs(t, err, ErrUserAlreadyExists)
	})

	t.Run("not found", func(t *testing.T) {
		err := f.svc.UpdateUser(ctx, "ghost", UserUpdate{Password: "x"})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("nothing to change", func(t *testing.T) {
		var ve *ValidationError
		assert.ErrorAs(t, f.svc.UpdateUser(ctx, "bob", UserUpdate{}), &ve)
	})

	stored := f.users(t)
	require.Len(t, stored, 2)
	assert.Equal(t, "alicia", stored[0].Username)
	assert.Equal(t, "bob", stored[1].Username)
}

func TestDeleteUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, name := range []string{"alice", "bob", "carol"} {
		_, err := f.svc.AddUser(ctx, name, "pw")
		require.NoError(t, err)
	}

	require.NoError(t, f.svc.DeleteUser(ctx, "bob"))
	assert.ErrorIs(t, f.svc.DeleteUser(ctx, "ghost"), ErrUserNotFound)

	users, err := f.svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "carol", users[1].Username)
}
