package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"price-board/internal/repository/jsonfile"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func pipedInput(t *testing.T) {
	t.Helper()
	prev := isTerminal
	isTerminal = func() bool { return false }
	t.Cleanup(func() { isTerminal = prev })
}

func TestRun_AddsUserFromPipedInput(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	pipedInput(t)
	file := filepath.Join(dir, "users.json")

	var out bytes.Buffer
	err := run(context.Background(), []string{"-f", file, "-cost", "4"}, strings.NewReader("alice\nsecret\n"), &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "added user alice")

	users, err := jsonfile.NewUserRepository(file).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].Username)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(users[0].PasswordHash), []byte("secret")))
}

func TestRun_UsesTerminalPassword(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	prevTerm, prevRead := isTerminal, readPassword
	isTerminal = func() bool { return true }
	readPassword = func(int) ([]byte, error) { return []byte("from-tty"), nil }
	t.Cleanup(func() { isTerminal, readPassword = prevTerm, prevRead })

	file := filepath.Join(dir, "users.json")
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-u", "bob", "-f", file, "-cost", "4"}, strings.NewReader(""), &out))

	users, err := jsonfile.NewUserRepository(file).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(users[0].PasswordHash), []byte("from-tty")))
}

func TestRun_RejectsDuplicate(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	pipedInput(t)
	file := filepath.Join(dir, "users.json")

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-u", "alice", "-f", file, "-cost", "4"}, strings.NewReader("one\n"), &out))

	err := run(context.Background(), []string{"-u", "alice", "-f", file, "-cost", "4"}, strings.NewReader("two\n"), &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestRun_EmptyPassword(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	pipedInput(t)

	var out bytes.Buffer
	err := run(context.Background(), []string{"-u", "alice", "-f", filepath.Join(dir, "users.json")}, strings.NewReader("\n"), &out)
	assert.Error(t, err)
}
