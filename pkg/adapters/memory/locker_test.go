package memory

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/swap/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocker_Contract(t *testing.T) {
	ports.RunLockerContract(t, NewLocker())
}

func TestLocker_Expiry(t *testing.T) {
	l := NewLocker()
	now := time.Now()
	l.now = func() time.Time { return now }
	ctx := context.Background()

	stale, err := l.Lock(ctx, "T-1", time.Second)
	require.NoError(t, err)

	now = now.Add(2 * time.Second)
	fresh, err := l.Lock(ctx, "T-1", time.Second)
	require.NoError(t, err, "expired lock is taken over")

	require.NoError(t, stale(ctx))
	l.mu.Lock()
	_, held := l.holds["T-1"]
	l.mu.Unlock()
	assert.True(t, held, "stale owner must not release the new holder")

	require.NoError(t, fresh(ctx))
	assert.Empty(t, l.holds)
}

func TestLocker_RefreshAfterExpiry(t *testing.T) {
	l := NewLocker()
	now := time.Now()
	l.now = func() time.Time { return now }
	ctx := context.Background()

	_, refresh, err := l.LockRefreshable(ctx, "T-1", time.Second)
	require.NoError(t, err)
	require.NoError(t, refresh(ctx, time.Second))

	now = now.Add(2 * time.Second)
	assert.ErrorIs(t, refresh(ctx, time.Second), ports.ErrLockLost, "an expired lock is not revived")
}
