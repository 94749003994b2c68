package revocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "arbiter:revoked:"

// RedisList keeps revoked JTIs in Redis with TTL-based expiry, so
// revocations survive restarts and are shared across instances.
type RedisList struct {
	client redis.Cmdable
}

// NewRedis constructs a revocation list over the given Redis client.
func NewRedis(client redis.Cmdable) *RedisList {
	return &RedisList{client: client}
}

// Revoke adds a JTI with the remaining token lifetime as TTL; Redis expires
// the key once the token would have expired anyway.
func (l *RedisList) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := l.client.Set(ctx, keyPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether a JTI is on the list.
func (l *RedisList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	err := l.client.Get(ctx, keyPrefix+jti).Err()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("check token revocation: %w", err)
	}
	return true, nil
}
