package interfaces

import (
	"context"
	"time"
)

// ProfileCacheInterface caches serialized user profiles by key.
type ProfileCacheInterface interface {
	// MGet returns one entry per key, nil where the key is absent.
	MGet(ctx context.Context, keys ...string) ([][]byte, error)
	SetMany(ctx context.Context, entries map[string][]byte, ttl time.Duration) error
}
