package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunLockerContract runs a suite of tests to verify that a DistributedLocker
// implementation adheres to the defined interface contract.
func RunLockerContract(t *testing.T, locker DistributedLocker) {
	ctx := context.Background()
	key := "contract-terminal-" + time.Now().Format("20060102150405")

	t.Run("Lock and Unlock", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, key, 5*time.Second)
		require.NoError(t, err, "Lock should not return error")
		require.NotNil(t, unlock)
		assert.NoError(t, unlock(ctx), "Unlock should not return error")
	})

	t.Run("Contention Blocks Until Deadline", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, key, 5*time.Second)
		require.NoError(t, err)
		defer func() { _ = unlock(ctx) }()

		tctx, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
		defer cancel()

		_, err = locker.Lock(tctx, key, 5*time.Second)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("Released Lock Can Be Reacquired", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, key, 5*time.Second)
		require.NoError(t, err)
		require.NoError(t, unlock(ctx))

		unlock, err = locker.Lock(ctx, key, 5*time.Second)
		require.NoError(t, err)
		assert.NoError(t, unlock(ctx))
	})

	t.Run("Distinct Keys Do Not Contend", func(t *testing.T) {
		u1, err := locker.Lock(ctx, key+"-a", 5*time.Second)
		require.NoError(t, err)
		defer func() { _ = u1(ctx) }()

		tctx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		u2, err := locker.Lock(tctx, key+"-b", 5*time.Second)
		require.NoError(t, err)
		assert.NoError(t, u2(ctx))
	})

	rl, ok := locker.(RefreshingLocker)
	if !ok {
		return
	}

	t.Run("Refresh Keeps Lock Alive", func(t *testing.T) {
		unlock, refresh, err := rl.LockRefreshable(ctx, key+"-r", 200*time.Millisecond)
		require.NoError(t, err)

		require.NoError(t, refresh(ctx, 5*time.Second))
		time.Sleep(300 * time.Millisecond)

		tctx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
		defer cancel()
		_, err = rl.Lock(tctx, key+"-r", time.Second)
		assert.ErrorIs(t, err, context.DeadlineExceeded, "refreshed lock must still be held")

		require.NoError(t, unlock(ctx))
		assert.ErrorIs(t, refresh(ctx, time.Second), ErrLockLost, "released lock cannot be refreshed")
	})
}
