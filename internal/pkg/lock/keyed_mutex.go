package lock

import (
	"context"
	"sync"
	"time"
)

type keyedEntry struct {
	sem  chan struct{}
	refs int
}

// KeyedMutex serializes holders of the same key inside one process.
type KeyedMutex struct {
	mu      sync.Mutex
	entries map[string]*keyedEntry
	wait    time.Duration
}

func NewKeyedMutex(wait time.Duration) *KeyedMutex {
	return &KeyedMutex{
		entries: make(map[string]*keyedEntry),
		wait:    wait,
	}
}

func (k *KeyedMutex) Lock(ctx context.Context, key string) (Unlock, error) {
	entry := k.acquireEntry(key)

	timer := time.NewTimer(k.wait)
	defer timer.Stop()

	select {
	case entry.sem <- struct{}{}:
	case <-ctx.Done():
		k.releaseEntry(key)
		return nil, ctx.Err()
	case <-timer.C:
		k.releaseEntry(key)
		return nil, ErrNotAcquired
	}

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			<-entry.sem
			k.releaseEntry(key)
		})
		return nil
	}, nil
}

func (k *KeyedMutex) acquireEntry(key string) *keyedEntry {
	k.mu.Lock()
	defer k.mu.Unlock()
	entry, ok := k.entries[key]
	if !ok {
		entry = &keyedEntry{sem: make(chan struct{}, 1)}
		k.entries[key] = entry
	}
	entry.refs++
	return entry
}

func (k *KeyedMutex) releaseEntry(key string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	entry, ok := k.entries[key]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs == 0 {
		delete(k.entries, key)
	}
}

func (k *KeyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}
