package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/swap/pkg/ports"
	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces lease keys.
const DefaultPrefix = "swap:"

const retryInterval = 100 * time.Millisecond

// unlockScript deletes the key only if the caller still owns it.
var unlockScript = backend.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// refreshScript extends the expiry only if the caller still owns the key.
var refreshScript = backend.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("pexpire", KEYS[1], ARGV[2])
	else
		return 0
	end
`)

// Locker implements ports.DistributedLocker using Redis, so that two
// processes never drive the same terminal ID at once.
type Locker struct {
	client backend.UniversalClient
	prefix string
}

// NewLocker creates a new Redis locker.
func NewLocker(client backend.UniversalClient, prefix string) *Locker {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Locker{
		client: client,
		prefix: prefix,
	}
}

// NewFromURL connects to the Redis server at url (redis://host:port/db).
func NewFromURL(url, prefix string) (*Locker, error) {
	opts, err := backend.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return NewLocker(backend.NewClient(opts), prefix), nil
}

// Ping checks the connection.
func (l *Locker) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (l *Locker) Close() error {
	return l.client.Close()
}

// Key returns the Redis key guarding a terminal.
func (l *Locker) Key(terminalID string) string {
	return l.prefix + "lock:" + terminalID
}

// Lock acquires a lease for key using SET NX PX, polling until ctx is done.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	unlock, _, err := l.LockRefreshable(ctx, key, ttl)
	return unlock, err
}

// LockRefreshable is Lock plus a function extending the expiry with PEXPIRE.
func (l *Locker) LockRefreshable(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, ports.RefreshFunc, error) {
	lockKey := l.Key(key)
	token := uuid.NewString()

	ticker := time.NewTicker(retryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, lockKey, token, ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, ctx.Err()
			}
			return nil, nil, fmt.Errorf("redis error acquiring lock: %w", err)
		}
		if ok {
			unlock := func(ctx context.Context) error {
				return unlockScript.Run(ctx, l.client, []string{lockKey}, token).Err()
			}
			refresh := func(ctx context.Context, ttl time.Duration) error {
				n, err := refreshScript.Run(ctx, l.client, []string{lockKey}, token, ttl.Milliseconds()).Int()
				if err != nil {
					return fmt.Errorf("redis error refreshing lock: %w", err)
				}
				if n == 0 {
					return ports.ErrLockLost
				}
				return nil
			}
			return unlock, refresh, nil
		}

		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
