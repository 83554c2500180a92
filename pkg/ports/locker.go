package ports

import (
	"context"
	"errors"
	"time"
)

// ErrLockLost is returned by a RefreshFunc when the lock expired and was
// taken by someone else.
var ErrLockLost = errors.New("lock lost")

// UnlockFunc is a function that releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// RefreshFunc pushes the expiry of a held lock to now+ttl.
type RefreshFunc func(ctx context.Context, ttl time.Duration) error

// DistributedLocker defines the interface for distributed concurrency control.
// It allows the session Manager to keep a single active session per terminal,
// even when several processes drive the same terminal ID.
type DistributedLocker interface {
	// Lock attempts to acquire a lock for the given key (e.g. terminal ID).
	// It blocks until the lock is acquired or the context is done.
	// The lock expires after ttl if it is never released.
	// Returns an UnlockFunc that MUST be called to release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}

// RefreshingLocker is a DistributedLocker whose locks can be kept alive
// past their initial ttl.
type RefreshingLocker interface {
	DistributedLocker
	LockRefreshable(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, RefreshFunc, error)
}
