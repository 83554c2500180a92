package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/swap/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fastConfig = `
terminal:
  id: test-terminal
mock:
  prompt_delay: 5ms
  verify_delay: 5ms
lease:
  wait: 100ms
`

// syncBuffer is written by the runner and by the haptics adapter.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "swap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	cfg, err := LoadConfig(RunOptions{
		ConfigPath: writeConfig(t, fastConfig),
		TerminalID: "flag-terminal",
		Listen:     ":9999",
		NoReader:   true,
		LogLevel:   "debug",
	})
	require.NoError(t, err)
	assert.Equal(t, "flag-terminal", cfg.Terminal.ID)
	assert.Equal(t, ":9999", cfg.HTTP.Listen)
	assert.False(t, cfg.Terminal.Reader)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 5*time.Millisecond, cfg.Mock.VerifyDelay)
}

func TestRun_ScriptedSession(t *testing.T) {
	var out, logs syncBuffer
	script := "1500\nok\nscan\ntap CLIENT_A\nwait 100ms\npin 1234\nsubmit\nwait 100ms\nstatus\nquit\n"

	err := Run(context.Background(), RunOptions{
		ConfigPath: writeConfig(t, fastConfig),
		Listen:     "127.0.0.1:0",
		Stdin:      strings.NewReader(script),
		Stdout:     &out,
		Stderr:     &logs,
	})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Payment accepted")
	assert.Contains(t, out.String(), "\a", "tap rings the bell")
	assert.Contains(t, logs.String(), "terminal ready")
	assert.Contains(t, logs.String(), "outcome=accepted")
}

func TestRun_RedisLeaseBusy(t *testing.T) {
	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set("swap:lock:test-terminal", "someone-else"))

	err := Run(context.Background(), RunOptions{
		ConfigPath: writeConfig(t, fastConfig),
		RedisURL:   "redis://" + mr.Addr(),
		Stdin:      strings.NewReader("quit\n"),
		Stdout:     &bytes.Buffer{},
		Stderr:     &bytes.Buffer{},
	})
	assert.ErrorIs(t, err, domain.ErrTerminalBusy)
}

func TestRun_RedisLease(t *testing.T) {
	mr := miniredis.RunT(t)

	err := Run(context.Background(), RunOptions{
		ConfigPath: writeConfig(t, fastConfig),
		RedisURL:   "redis://" + mr.Addr(),
		Stdin:      strings.NewReader("quit\n"),
		Stdout:     &bytes.Buffer{},
		Stderr:     &bytes.Buffer{},
	})
	require.NoError(t, err)
	assert.False(t, mr.Exists("swap:lock:test-terminal"), "lease released on exit")
}

func TestRun_InvalidConfig(t *testing.T) {
	err := Run(context.Background(), RunOptions{
		ConfigPath: writeConfig(t, "terminal:\n  pin_length: 0\n"),
		Stdin:      strings.NewReader(""),
		Stdout:     &bytes.Buffer{},
		Stderr:     &bytes.Buffer{},
	})
	assert.ErrorContains(t, err, "pin_length")
}
