package lock

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"loan-ledger/internal/pkg/logger"
)

// ErrNotAcquired is returned when another holder kept the key for the whole wait.
var ErrNotAcquired = errors.New("lock not acquired")

// Unlock releases a held key. It is safe to call more than once.
type Unlock func(ctx context.Context) error

type Locker interface {
	Lock(ctx context.Context, key string) (Unlock, error)
}

// FallbackLocker uses Primary and drops to Secondary when Primary itself
// fails. Contention on Primary is returned as is.
type FallbackLocker struct {
	Primary   Locker
	Secondary Locker
}

func (f *FallbackLocker) Lock(ctx context.Context, key string) (Unlock, error) {
	unlock, err := f.Primary.Lock(ctx, key)
	if err == nil || errors.Is(err, ErrNotAcquired) || ctx.Err() != nil {
		return unlock, err
	}
	logger.CtxWarn(ctx, "Primary lock backend failed, using in-process lock",
		zap.String("key", key), zap.Error(err))
	return f.Secondary.Lock(ctx, key)
}
