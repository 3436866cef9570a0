package auth

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/redis/go-redis/v9"
)

const blocklistKeyPrefix = "bookly:jti:"

// RedisBlocklist is the Blocklist used when revocations must be shared
// across instances. Redis SET with expiry gives us the atomic insert and
// automatic TTL purge the contract requires.
type RedisBlocklist struct {
	client redis.UniversalClient
	prefix string
}

var _ Blocklist = (*RedisBlocklist)(nil)

// NewRedisBlocklist wraps an existing client; the caller owns its lifecycle.
func NewRedisBlocklist(client redis.UniversalClient) *RedisBlocklist {
	return &RedisBlocklist{
		client: client,
		prefix: blocklistKeyPrefix,
	}
}

func (b *RedisBlocklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" || ttl <= 0 {
		return nil
	}

	if err := b.client.Set(ctx, b.prefix+jti, "revoked", ttl).Err(); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to record token revocation")
	}
	return nil
}

func (b *RedisBlocklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := b.client.Exists(ctx, b.prefix+jti).Result()
	if err != nil {
		return false, errors.Wrap(err, errors.CategoryInternal, "failed to check token revocation")
	}
	return n > 0, nil
}
