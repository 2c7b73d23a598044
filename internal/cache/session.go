package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// loginTokenPrefix is the Redis key prefix for pending magic-link tokens.
	loginTokenPrefix = "login:"
	// sessionPrefix is the Redis key prefix for active sessions.
	sessionPrefix = "session:"
)

// ErrTokenNotFound is returned when a login token or session does not
// exist or has expired.
var ErrTokenNotFound = errors.New("token not found")

// StoreLoginToken stores a pending magic-link token digest mapped to a
// user ID. Tokens are stored by digest, never in plaintext.
func (c *Cache) StoreLoginToken(ctx context.Context, tokenDigest, userID string, ttl time.Duration) error {
	if err := c.client.Set(ctx, loginTokenPrefix+tokenDigest, userID, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store login token: %w", err)
	}
	return nil
}

// ConsumeLoginToken atomically fetches and deletes a login token,
// returning the user ID it was issued for. A token verifies at most once.
func (c *Cache) ConsumeLoginToken(ctx context.Context, tokenDigest string) (string, error) {
	userID, err := c.client.GetDel(ctx, loginTokenPrefix+tokenDigest).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrTokenNotFound
		}
		return "", fmt.Errorf("failed to consume login token: %w", err)
	}
	return userID, nil
}

// StoreSession stores an active session token digest mapped to a user ID.
func (c *Cache) StoreSession(ctx context.Context, tokenDigest, userID string, ttl time.Duration) error {
	if err := c.client.Set(ctx, sessionPrefix+tokenDigest, userID, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// GetSession resolves a session token digest to a user ID.
func (c *Cache) GetSession(ctx context.Context, tokenDigest string) (string, error) {
	userID, err := c.client.Get(ctx, sessionPrefix+tokenDigest).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrTokenNotFound
		}
		return "", fmt.Errorf("failed to get session: %w", err)
	}
	return userID, nil
}

// DeleteSession removes a session token. Deleting a missing session is
// not an error.
func (c *Cache) DeleteSession(ctx context.Context, tokenDigest string) error {
	if err := c.client.Del(ctx, sessionPrefix+tokenDigest).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
