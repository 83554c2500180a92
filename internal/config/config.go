// Package config loads the terminal configuration from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aretw0/swap/pkg/adapters/mock"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SWAP_"

// Config is the effective configuration of a terminal process.
type Config struct {
	Terminal TerminalConfig `mapstructure:"terminal" yaml:"terminal"`
	Wallet   WalletConfig   `mapstructure:"wallet" yaml:"wallet"`
	Mock     MockConfig     `mapstructure:"mock" yaml:"mock"`
	Lease    LeaseConfig    `mapstructure:"lease" yaml:"lease"`
	HTTP     HTTPConfig     `mapstructure:"http" yaml:"http"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
}

// TerminalConfig describes the keypad and reader.
type TerminalConfig struct {
	ID              string        `mapstructure:"id" yaml:"id"`
	MaxAmountDigits int           `mapstructure:"max_amount_digits" yaml:"max_amount_digits"`
	PinLength       int           `mapstructure:"pin_length" yaml:"pin_length"`
	HapticPulse     time.Duration `mapstructure:"haptic_pulse" yaml:"haptic_pulse"`
	Reader          bool          `mapstructure:"reader" yaml:"reader"` // false simulates a device without NFC
}

// WalletConfig sets the driver bonus counter.
type WalletConfig struct {
	Bonus int   `mapstructure:"bonus" yaml:"bonus"`
	Rate  int64 `mapstructure:"rate" yaml:"rate"`
}

// MockConfig tunes the simulated backend.
type MockConfig struct {
	AcceptedPin string          `mapstructure:"accepted_pin" yaml:"accepted_pin"`
	PromptDelay time.Duration   `mapstructure:"prompt_delay" yaml:"prompt_delay"`
	VerifyDelay time.Duration   `mapstructure:"verify_delay" yaml:"verify_delay"`
	Customers   []mock.Customer `mapstructure:"customers" yaml:"customers"`
}

// LeaseConfig selects how terminal ownership is guarded.
// An empty RedisURL keeps the lease inside the process.
type LeaseConfig struct {
	RedisURL string        `mapstructure:"redis_url" yaml:"redis_url"`
	Prefix   string        `mapstructure:"prefix" yaml:"prefix"`
	TTL      time.Duration `mapstructure:"ttl" yaml:"ttl"`
	Wait     time.Duration `mapstructure:"wait" yaml:"wait"`
}

// HTTPConfig enables the operational endpoints. Empty Listen disables them.
type HTTPConfig struct {
	Listen string `mapstructure:"listen" yaml:"listen"`
}

// LogConfig configures slog.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Default returns the demo configuration.
func Default() Config {
	return Config{
		Terminal: TerminalConfig{
			ID:              "terminal-1",
			MaxAmountDigits: 7,
			PinLength:       4,
			HapticPulse:     200 * time.Millisecond,
			Reader:          true,
		},
		Wallet: WalletConfig{Bonus: 42, Rate: 1250},
		Mock: MockConfig{
			AcceptedPin: mock.DefaultAcceptedPin,
			PromptDelay: mock.DefaultDelay,
			VerifyDelay: mock.DefaultDelay,
			Customers:   append([]mock.Customer(nil), mock.DefaultCustomers...),
		},
		Lease: LeaseConfig{
			Prefix: "swap:",
			TTL:    30 * time.Second,
			Wait:   2 * time.Second,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// envKeys maps environment variables (without prefix) to config paths.
var envKeys = map[string]string{
	"TERMINAL_ID":                "terminal.id",
	"TERMINAL_MAX_AMOUNT_DIGITS": "terminal.max_amount_digits",
	"TERMINAL_PIN_LENGTH":        "terminal.pin_length",
	"TERMINAL_HAPTIC_PULSE":      "terminal.haptic_pulse",
	"TERMINAL_READER":            "terminal.reader",
	"WALLET_BONUS":               "wallet.bonus",
	"WALLET_RATE":                "wallet.rate",
	"MOCK_ACCEPTED_PIN":          "mock.accepted_pin",
	"MOCK_PROMPT_DELAY":          "mock.prompt_delay",
	"MOCK_VERIFY_DELAY":          "mock.verify_delay",
	"LEASE_REDIS_URL":            "lease.redis_url",
	"LEASE_PREFIX":               "lease.prefix",
	"LEASE_TTL":                  "lease.ttl",
	"LEASE_WAIT":                 "lease.wait",
	"HTTP_LISTEN":                "http.listen",
	"LOG_LEVEL":                  "log.level",
	"LOG_FORMAT":                 "log.format",
}

// Load reads path (optional, may be empty) and applies SWAP_* overrides on
// top of the defaults.
func Load(path string) (Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (Config, error) {
	raw := map[string]any{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if raw == nil {
			raw = map[string]any{}
		}
	}

	for env, key := range envKeys {
		if v, ok := lookup(EnvPrefix + env); ok {
			setPath(raw, key, v)
		}
	}

	cfg := Default()
	if err := Decode(raw, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode applies a generic map (YAML or flags) onto cfg.
func Decode(raw map[string]any, cfg *Config) error {
	// A configured customer list replaces the demo one instead of merging into it.
	if m, ok := raw["mock"].(map[string]any); ok {
		if _, ok := m["customers"]; ok {
			cfg.Mock.Customers = nil
		}
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           cfg,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Validate rejects values the terminal cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Terminal.ID == "" {
		errs = append(errs, errors.New("terminal.id is required"))
	}
	if c.Terminal.MaxAmountDigits < 1 {
		errs = append(errs, errors.New("terminal.max_amount_digits must be positive"))
	}
	if c.Terminal.PinLength < 1 {
		errs = append(errs, errors.New("terminal.pin_length must be positive"))
	}
	if n := len([]rune(c.Mock.AcceptedPin)); n == 0 || n > c.Terminal.PinLength {
		errs = append(errs, fmt.Errorf("mock.accepted_pin must have 1 to %d characters", c.Terminal.PinLength))
	}
	if c.Mock.PromptDelay < 0 || c.Mock.VerifyDelay < 0 {
		errs = append(errs, errors.New("mock delays must not be negative"))
	}
	if c.Wallet.Rate < 0 {
		errs = append(errs, errors.New("wallet.rate must not be negative"))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q must be text or json", c.Log.Format))
	}
	return errors.Join(errs...)
}

// YAML renders the effective configuration.
func (c Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

func setPath(m map[string]any, path, value string) {
	parts := strings.Split(path, ".")
	for _, p := range parts[:len(parts)-1] {
		next, ok := m[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[p] = next
		}
		m = next
	}
	m[parts[len(parts)-1]] = value
}
