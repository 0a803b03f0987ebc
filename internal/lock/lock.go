// Package lock serialises booking writes for a tool across server replicas.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ubertool-booking/internal/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrNotAcquired = errors.New("lock is held by another request")

// Release frees a held lock. It is safe to call after the lock expired.
type Release func(ctx context.Context) error

type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (Release, error)
}

// Deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisLocker struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisLocker(client redis.UniversalClient, prefix string) *RedisLocker {
	return &RedisLocker{client: client, prefix: prefix}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (Release, error) {
	fullKey := l.prefix + key
	token := uuid.NewString()

	logger.ExternalServiceCall("redis", "SETNX", "key", fullKey, "ttl", ttl)
	ok, err := l.client.SetNX(ctx, fullKey, token, ttl).Result()
	logger.ExternalServiceResult("redis", "SETNX", err, "key", fullKey, "acquired", ok)
	if err != nil {
		return nil, fmt.Errorf("acquire %s: %w", fullKey, err)
	}
	if !ok {
		return nil, ErrNotAcquired
	}

	return func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{fullKey}, token).Err(); err != nil {
			return fmt.Errorf("release %s: %w", fullKey, err)
		}
		return nil
	}, nil
}

// NoopLocker always succeeds. It is used when Redis is not configured and the database
// constraint alone guards against double bookings.
type NoopLocker struct{}

func (NoopLocker) Acquire(context.Context, string, time.Duration) (Release, error) {
	return func(context.Context) error { return nil }, nil
}
