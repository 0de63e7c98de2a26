package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisLocker struct {
	client    redis.UniversalClient
	prefix    string
	ttl       time.Duration
	wait      time.Duration
	retryStep time.Duration
}

func NewRedisLocker(client redis.UniversalClient, prefix string, ttl, wait time.Duration) *RedisLocker {
	return &RedisLocker{
		client:    client,
		prefix:    prefix,
		ttl:       ttl,
		wait:      wait,
		retryStep: 25 * time.Millisecond,
	}
}

// Lock runs SET NX PX with a random token and retries until the wait elapses.
func (r *RedisLocker) Lock(ctx context.Context, key string) (Unlock, error) {
	fullKey := r.prefix + key
	token := uuid.NewString()
	deadline := time.Now().Add(r.wait)

	for {
		ok, err := r.client.SetNX(ctx, fullKey, token, r.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return r.unlocker(fullKey, token), nil
		}
		if !time.Now().Before(deadline) {
			return nil, ErrNotAcquired
		}

		timer := time.NewTimer(r.retryStep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func (r *RedisLocker) unlocker(fullKey, token string) Unlock {
	var once sync.Once
	var releaseErr error
	return func(ctx context.Context) error {
		once.Do(func() {
			err := releaseScript.Run(ctx, r.client, []string{fullKey}, token).Err()
			if err != nil && !errors.Is(err, redis.Nil) {
				releaseErr = err
			}
		})
		return releaseErr
	}
}
