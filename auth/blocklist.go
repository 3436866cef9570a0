package auth

import (
	"context"
	"sync"
	"time"
)

// Blocklist records token IDs (jti) that were invalidated before their
// natural expiry: logout and consumed password-reset tokens. A jti present
// in the blocklist must be treated as invalid regardless of signature
// validity. Entries carry the token's remaining validity as TTL; once that
// elapses the entry is garbage since the token has expired on its own.
type Blocklist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

const defaultSweepInterval = time.Minute

// MemoryBlocklist is the in-process Blocklist. Inserts are atomic per key
// and a background janitor purges expired entries, so callers never sweep.
type MemoryBlocklist struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	done    chan struct{}
	closed  sync.Once
}

var _ Blocklist = (*MemoryBlocklist)(nil)

// NewMemoryBlocklist starts the janitor goroutine; call Close to stop it.
func NewMemoryBlocklist() *MemoryBlocklist {
	b := &MemoryBlocklist{
		entries: make(map[string]time.Time),
		done:    make(chan struct{}),
	}
	go b.janitor(defaultSweepInterval)
	return b
}

// Revoke is idempotent: it inserts or overwrites the jti with expiry
// now+ttl. A non-positive ttl means the token already expired and there is
// nothing to record.
func (b *MemoryBlocklist) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if jti == "" || ttl <= 0 {
		return nil
	}

	b.mu.Lock()
	b.entries[jti] = time.Now().Add(ttl)
	b.mu.Unlock()
	return nil
}

// IsRevoked reports whether the jti is present and not yet expired. A jti
// that was never seen is not revoked.
func (b *MemoryBlocklist) IsRevoked(_ context.Context, jti string) (bool, error) {
	b.mu.RLock()
	expiry, ok := b.entries[jti]
	b.mu.RUnlock()

	if !ok {
		return false, nil
	}

	// Expired entries are purged lazily by the janitor; report them as not
	// revoked immediately so behavior does not depend on sweep timing.
	return time.Now().Before(expiry), nil
}

// Close stops the janitor. Safe to call more than once.
func (b *MemoryBlocklist) Close() {
	b.closed.Do(func() { close(b.done) })
}

func (b *MemoryBlocklist) janitor(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-b.done:
			return
		case now := <-ticker.C:
			b.mu.Lock()
			for jti, expiry := range b.entries {
				if now.After(expiry) {
					delete(b.entries, jti)
				}
			}
			b.mu.Unlock()
		}
	}
}
