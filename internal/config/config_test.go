package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func noEnv(string) (string, bool) { return "", false }

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "swap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load("", noEnv)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 7, cfg.Terminal.MaxAmountDigits)
	assert.Equal(t, "1234", cfg.Mock.AcceptedPin)
	assert.Equal(t, 1500*time.Millisecond, cfg.Mock.VerifyDelay)
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, `
terminal:
  id: moto-42
  reader: false
mock:
  accepted_pin: "0000"
  prompt_delay: 250ms
  verify_delay: 1s
  customers:
    - card_id: CLIENT_B
      name: Awa
wallet:
  bonus: 10
http:
  listen: ":9090"
`)
	cfg, err := load(path, noEnv)
	require.NoError(t, err)

	assert.Equal(t, "moto-42", cfg.Terminal.ID)
	assert.False(t, cfg.Terminal.Reader)
	assert.Equal(t, 4, cfg.Terminal.PinLength, "unset keys keep their default")
	assert.Equal(t, "0000", cfg.Mock.AcceptedPin)
	assert.Equal(t, 250*time.Millisecond, cfg.Mock.PromptDelay)
	assert.Equal(t, time.Second, cfg.Mock.VerifyDelay)
	require.Len(t, cfg.Mock.Customers, 1)
	assert.Equal(t, "CLIENT_B", cfg.Mock.Customers[0].CardID)
	assert.Empty(t, cfg.Mock.Customers[0].Phone)
	assert.Equal(t, 10, cfg.Wallet.Bonus)
	assert.Equal(t, int64(1250), cfg.Wallet.Rate)
	assert.Equal(t, ":9090", cfg.HTTP.Listen)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeFile(t, "terminal:\n  id: from-file\n")
	env := map[string]string{
		"SWAP_TERMINAL_ID":       "from-env",
		"SWAP_MOCK_VERIFY_DELAY": "20ms",
		"SWAP_TERMINAL_READER":   "false",
		"SWAP_LEASE_REDIS_URL":   "redis://localhost:6379/0",
		"SWAP_WALLET_BONUS":      "7",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg, err := load(path, lookup)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Terminal.ID)
	assert.Equal(t, 20*time.Millisecond, cfg.Mock.VerifyDelay)
	assert.False(t, cfg.Terminal.Reader)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Lease.RedisURL)
	assert.Equal(t, 7, cfg.Wallet.Bonus)
}

func TestLoad_Errors(t *testing.T) {
	_, err := load(filepath.Join(t.TempDir(), "missing.yaml"), noEnv)
	assert.Error(t, err)

	_, err = load(writeFile(t, "terminal: [unclosed"), noEnv)
	assert.Error(t, err)

	_, err = load(writeFile(t, "terminal:\n  unknown_key: 1\n"), noEnv)
	assert.ErrorContains(t, err, "unknown_key")

	_, err = load(writeFile(t, "mock:\n  accepted_pin: \"123456\"\n"), noEnv)
	assert.ErrorContains(t, err, "accepted_pin")

	_, err = load(writeFile(t, "log:\n  format: xml\n"), noEnv)
	assert.ErrorContains(t, err, "log.format")
}

func TestConfig_YAMLRoundTrip(t *testing.T) {
	out, err := Default().YAML()
	require.NoError(t, err)
	assert.Contains(t, string(out), "verify_delay: 1.5s")

	var raw map[string]any
	require.NoError(t, yaml.Unmarshal(out, &raw))
	cfg := Default()
	require.NoError(t, Decode(raw, &cfg))
	assert.Equal(t, Default(), cfg)
}
