package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/swap/pkg/ports"
	"github.com/google/uuid"
)

const pollInterval = 10 * time.Millisecond

type hold struct {
	token   string
	expires time.Time
}

// Locker implements ports.DistributedLocker inside a single process.
// Locks expire after their TTL like their Redis counterpart.
// Safe for concurrent use.
type Locker struct {
	mu    sync.Mutex
	holds map[string]hold
	now   func() time.Time
}

// NewLocker creates an in-process locker.
func NewLocker() *Locker {
	return &Locker{
		holds: make(map[string]hold),
		now:   time.Now,
	}
}

// Lock blocks until key is free or ctx is done.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	unlock, _, err := l.LockRefreshable(ctx, key, ttl)
	return unlock, err
}

// LockRefreshable is Lock plus a function extending the expiry.
func (l *Locker) LockRefreshable(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, ports.RefreshFunc, error) {
	token := uuid.NewString()
	if l.tryLock(key, token, ttl) {
		return l.unlockFunc(key, token), l.refreshFunc(key, token), nil
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		case <-ticker.C:
			if l.tryLock(key, token, ttl) {
				return l.unlockFunc(key, token), l.refreshFunc(key, token), nil
			}
		}
	}
}

func (l *Locker) tryLock(key, token string, ttl time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if h, ok := l.holds[key]; ok && now.Before(h.expires) {
		return false
	}
	l.holds[key] = hold{token: token, expires: now.Add(ttl)}
	return true
}

func (l *Locker) refreshFunc(key, token string) ports.RefreshFunc {
	return func(ctx context.Context, ttl time.Duration) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		h, ok := l.holds[key]
		if !ok || h.token != token || !l.now().Before(h.expires) {
			return ports.ErrLockLost
		}
		h.expires = l.now().Add(ttl)
		l.holds[key] = h
		return nil
	}
}

func (l *Locker) unlockFunc(key, token string) ports.UnlockFunc {
	return func(ctx context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		// An expired lock may have been taken over; only the owner deletes it.
		if h, ok := l.holds[key]; ok && h.token == token {
			delete(l.holds, key)
		}
		return nil
	}
}
