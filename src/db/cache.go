package db

import (
	"context"
	"fmt"

	"github.com/dgraph-io/ristretto/v2"

	"fintrack-server/src/models"
)

// UserStore is the credential store the cache fronts.
type UserStore interface {
	CreateUser(ctx context.Context, username string, passwordHash []byte) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// CachedUserStore is a read-through cache of users keyed by username. Users
// are never renamed or deleted, so entries are never invalidated; misses are
// not cached so a later signup is visible immediately.
type CachedUserStore struct {
	users UserStore
	cache *ristretto.Cache[string, models.User]
}

func NewCachedUserStore(users UserStore, maxEntries int64) (*CachedUserStore, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, models.User]{
		NumCounters: maxEntries * 10, // number of keys to track frequency of
		MaxCost:     maxEntries,
		BufferItems: 64, // number of keys per Get buffer
		// Cost counts entries, not bytes
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize user cache: %w", err)
	}
	return &CachedUserStore{users: users, cache: cache}, nil
}

func (c *CachedUserStore) CreateUser(ctx context.Context, username string, passwordHash []byte) (*models.User, error) {
	user, err := c.users.CreateUser(ctx, username, passwordHash)
	if err != nil {
		return nil, err
	}
	c.set(*user)
	return user, nil
}

func (c *CachedUserStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	if user, ok := c.cache.Get(username); ok {
		return &user, nil
	}
	user, err := c.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	c.set(*user)
	return user, nil
}

func (c *CachedUserStore) Close() {
	c.cache.Close()
}

func (c *CachedUserStore) set(user models.User) {
	c.cache.Set(user.Username, user, 1)
	// Make the write visible to the next Get
	c.cache.Wait()
}
