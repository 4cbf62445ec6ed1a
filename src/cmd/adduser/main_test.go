package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"fintrack-server/src/db"
	dbsql "fintrack-server/src/db/sql"
)

func TestRun_Success(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test_success.db")
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)

	args := []string{"-user", "testuser", "-password", "secret", "-db", dbPath}
	err := run(args, new(bytes.Buffer), stdout, stderr)
	require.NoError(t, err)

	assert.Contains(t, stdout.String(), "User testuser created successfully")

	conn, err := db.OpenSQLite(dbPath)
	require.NoError(t, err)
	defer conn.Close()
	user, err := dbsql.NewSQLiteStore(conn).GetUserByUsername(context.Background(), "testuser")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword(user.PasswordHash, []byte("secret")))
}

func TestRun_DuplicateUser(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test_duplicate.db")
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)

	args := []string{"-user", "testuser", "-password", "secret", "-db", dbPath}

	err := run(args, new(bytes.Buffer), stdout, stderr)
	require.NoError(t, err, "first run should succeed")

	stdout.Reset()
	err = run([]string{"-user", "testuser", "-password", "other", "-db", dbPath}, new(bytes.Buffer), stdout, stderr)
	require.Error(t, err, "expected error on duplicate user")
	assert.Contains(t, err.Error(), "already exists")
}

func TestRun_MissingUserFlag(t *testing.T) {
	stdout := new(bytes.Buffer)

	err := run([]string{"-password", "secret"}, new(bytes.Buffer), stdout, new(bytes.Buffer))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required flags: user")
	assert.Contains(t, stdout.String(), "Usage:")
}

func TestRun_InteractivePassword(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test_interactive.db")
	stdout := new(bytes.Buffer)
	stdin := bytes.NewBufferString("interactive_secret\n")

	err := run([]string{"-user", "interactive_user", "-db", dbPath}, stdin, stdout, new(bytes.Buffer))
	require.NoError(t, err)

	assert.Contains(t, stdout.String(), "Password: ")
	assert.Contains(t, stdout.String(), "User interactive_user created successfully")
}

func TestRun_EmptyPassword(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test_empty.db")

	err := run([]string{"-user", "u", "-db", dbPath}, bytes.NewBufferString("\n"), new(bytes.Buffer), new(bytes.Buffer))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "password is required")
}

func TestExitCode(t *testing.T) {
	stderr := new(bytes.Buffer)

	err := run([]string{"-h"}, new(bytes.Buffer), new(bytes.Buffer), stderr)
	assert.Equal(t, 0, exitCode(err, stderr))
	assert.Equal(t, 0, exitCode(fmt.Errorf("parse: %w", flag.ErrHelp), stderr))
	assert.Equal(t, 0, exitCode(nil, stderr))

	stderr.Reset()
	assert.Equal(t, 1, exitCode(errors.New("boom"), stderr))
	assert.Equal(t, "Error: boom\n", stderr.String())
}
