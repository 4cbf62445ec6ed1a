package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack-server/src/models"
)

type countingUsers struct {
	users   map[string]models.User
	lookups int
}

func (c *countingUsers) CreateUser(_ context.Context, username string, hash []byte) (*models.User, error) {
	if _, ok := c.users[username]; ok {
		return nil, models.ErrDuplicateUsername
	}
	u := models.User{ID: int64(len(c.users) + 1), Username: username, PasswordHash: hash}
	c.users[username] = u
	return &u, nil
}

func (c *countingUsers) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	c.lookups++
	u, ok := c.users[username]
	if !ok {
		return nil, fmt.Errorf("lookup %s: %w", username, models.ErrNotFound)
	}
	return &u, nil
}

func TestCachedUserStoreServesRepeatLookups(t *testing.T) {
	backing := &countingUsers{users: map[string]models.User{
		"ana": {ID: 1, Username: "ana", PasswordHash: []byte("h")},
	}}
	cached, err := NewCachedUserStore(backing, 100)
	require.NoError(t, err)
	defer cached.Close()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		u, err := cached.GetUserByUsername(ctx, "ana")
		require.NoError(t, err)
		assert.Equal(t, int64(1), u.ID)
	}

	assert.Equal(t, 1, backing.lookups)
}

func TestCachedUserStoreDoesNotCacheMisses(t *testing.T) {
	backing := &countingUsers{users: map[string]models.User{}}
	cached, err := NewCachedUserStore(backing, 100)
	require.NoError(t, err)
	defer cached.Close()

	ctx := context.Background()
	_, err = cached.GetUserByUsername(ctx, "bob")
	assert.True(t, errors.Is(err, models.ErrNotFound))

	_, err = cached.CreateUser(ctx, "bob", []byte("h"))
	require.NoError(t, err)

	u, err := cached.GetUserByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "bob", u.Username)
	assert.Equal(t, 1, backing.lookups, "create populates the cache")
}

func TestCachedUserStorePassesThroughDuplicate(t *testing.T) {
	backing := &countingUsers{users: map[string]models.User{"ana": {ID: 1, Username: "ana"}}}
	cached, err := NewCachedUserStore(backing, 100)
	require.NoError(t, err)
	defer cached.Close()

	_, err = cached.CreateUser(context.Background(), "ana", []byte("other"))

	assert.ErrorIs(t, err, models.ErrDuplicateUsername)
}

func TestOpenSQLiteMemory(t *testing.T) {
	conn, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer conn.Close()

	var fk int
	require.NoError(t, conn.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)
}
