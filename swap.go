package swap

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/swap/internal/runtime"
	"github.com/aretw0/swap/pkg/adapters/mock"
	"github.com/aretw0/swap/pkg/domain"
	"github.com/aretw0/swap/pkg/ports"
	"github.com/aretw0/swap/pkg/scan"
	"github.com/google/uuid"
)

const (
	// DefaultHapticPulse is the vibration played when a tap is detected.
	DefaultHapticPulse = 200 * time.Millisecond
	// DefaultBonus is the driver bonus counter of a fresh terminal.
	DefaultBonus = 42
	// DefaultBonusRate converts a bonus point into balance units.
	DefaultBonusRate = 1250
)

// Terminal is the single controller of the collection flow.
// It owns the current session and is the only place where it changes.
// Safe for concurrent use.
type Terminal struct {
	engine  *runtime.Engine
	scanner *scan.Controller
	service ports.TransactionService
	haptics ports.Haptics
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
	newID   func() string
	pulse   time.Duration

	mu         sync.Mutex
	session    *domain.Session
	wallet     domain.Wallet
	sessCtx    context.Context
	sessCancel context.CancelFunc
	scanEpoch  uint64 // Epoch of the session that started the current scan
	scanArmed  bool
	scanGen    uint64 // Bumped by every StartScan
	closed     bool

	sessionID atomic.Value // string, readable without mu
	wg        sync.WaitGroup

	notifyMu      sync.Mutex
	changes       chan struct{}
	changesClosed bool
}

// Option defines a functional option for configuring the Terminal.
type Option func(*config)

type config struct {
	reader          ports.ProximityReader
	service         ports.TransactionService
	haptics         ports.Haptics
	hooks           domain.LifecycleHooks
	logger          *slog.Logger
	newID           func() string
	pulse           time.Duration
	wallet          domain.Wallet
	maxAmountDigits int
	pinLength       int
}

// WithReader plugs a proximity reader. Without one the scan capability is unsupported
// and only the simulated tap is available.
func WithReader(r ports.ProximityReader) Option {
	return func(c *config) {
		c.reader = r
	}
}

// WithTransactionService replaces the default mock backend.
func WithTransactionService(s ports.TransactionService) Option {
	return func(c *config) {
		c.service = s
	}
}

// WithHaptics sets the vibration adapter.
func WithHaptics(h ports.Haptics) Option {
	return func(c *config) {
		c.haptics = h
	}
}

// WithHapticPulse sets the vibration length played on tap.
func WithHapticPulse(d time.Duration) Option {
	return func(c *config) {
		c.pulse = d
	}
}

// WithLifecycleHooks registers observability hooks.
// Hooks run synchronously while the terminal is locked and must not call back into it.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *config) {
		c.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithIDGenerator overrides how session IDs are generated (default: UUIDv4).
func WithIDGenerator(fn func() string) Option {
	return func(c *config) {
		c.newID = fn
	}
}

// WithWallet sets the initial driver bonus and its conversion rate.
func WithWallet(bonus int, rate int64) Option {
	return func(c *config) {
		c.wallet = domain.Wallet{Bonus: bonus, Rate: rate}
	}
}

// WithMaxAmountDigits caps the keyed amount length.
func WithMaxAmountDigits(n int) Option {
	return func(c *config) {
		c.maxAmountDigits = n
	}
}

// WithPinLength sets the PIN field length.
func WithPinLength(n int) Option {
	return func(c *config) {
		c.pinLength = n
	}
}

// New initializes a Terminal on the keypad screen.
// Without WithTransactionService it uses the mock backend with its default PIN and delays.
func New(opts ...Option) (*Terminal, error) {
	cfg := config{
		pulse:  DefaultHapticPulse,
		wallet: domain.Wallet{Bonus: DefaultBonus, Rate: DefaultBonusRate},
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cfg.service == nil {
		svc, err := mock.NewTransactionService(mock.WithServiceLogger(cfg.logger))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize mock transaction service: %w", err)
		}
		cfg.service = svc
	}

	t := &Terminal{
		service: cfg.service,
		haptics: cfg.haptics,
		hooks:   cfg.hooks,
		logger:  cfg.logger,
		newID:   cfg.newID,
		pulse:   cfg.pulse,
		wallet:  cfg.wallet,
		changes: make(chan struct{}, 1),
	}

	t.engine = runtime.NewEngine(
		runtime.WithLifecycleHooks(cfg.hooks),
		runtime.WithLogger(cfg.logger),
		runtime.WithMaxAmountDigits(cfg.maxAmountDigits),
		runtime.WithPinLength(cfg.pinLength),
	)
	t.scanner = scan.NewController(cfg.reader,
		scan.WithLogger(cfg.logger),
		scan.WithStateFunc(t.onScanState),
	)

	t.sessCtx, t.sessCancel = context.WithCancel(context.Background())
	t.setSession(t.engine.Start(t.sessCtx, t.newID(), 0))

	t.wg.Add(1)
	go t.consumeReads()

	return t, nil
}

// Snapshot returns a read-only view of the terminal.
func (t *Terminal) Snapshot() domain.Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Terminal) snapshotLocked() domain.Snapshot {
	s := t.session.Clone()
	return domain.Snapshot{
		Session: *s,
		Scan:    t.scanner.State(),
		Wallet:  t.wallet,
		Balance: t.wallet.Balance(),
	}
}

// Changes signals that the snapshot may have changed.
// Signals are coalesced; the channel is closed by Close.
func (t *Terminal) Changes() <-chan struct{} {
	return t.changes
}

// Close cancels all pending work and any active scan, then waits for the
// background goroutines. The terminal cannot be used afterwards.
func (t *Terminal) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.sessCancel()
	t.mu.Unlock()

	t.scanner.Close()
	t.wg.Wait()

	t.notifyMu.Lock()
	t.changesClosed = true
	close(t.changes)
	t.notifyMu.Unlock()

	t.logger.Debug("terminal closed")
	return nil
}

func (t *Terminal) setSession(s *domain.Session) {
	t.session = s
	t.sessionID.Store(s.ID)
}

func (t *Terminal) notify() {
	t.notifyMu.Lock()
	defer t.notifyMu.Unlock()
	if t.changesClosed {
		return
	}
	select {
	case t.changes <- struct{}{}:
	default:
	}
}

// onScanState may run with t.mu held, so it only touches lock-free fields.
func (t *Terminal) onScanState(from, to domain.ScanState) {
	t.logger.Debug("scan state", "from", from, "to", to)
	if t.hooks.OnScan != nil {
		id, _ := t.sessionID.Load().(string)
		t.hooks.OnScan(context.Background(), &domain.ScanEvent{
			EventBase: domain.EventBase{
				Timestamp: time.Now(),
				Type:      domain.EventScan,
				SessionID: id,
			},
			From: from,
			To:   to,
		})
	}
	t.notify()
}
