package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/swap/internal/logging"
	"github.com/aretw0/swap/pkg/domain"
	"github.com/aretw0/swap/pkg/ports"
	"github.com/google/uuid"
)

const (
	// DefaultLeaseTTL bounds how long a crashed holder keeps a terminal locked.
	DefaultLeaseTTL = 30 * time.Second
	// DefaultWait is how long Open waits for a distributed lock before giving up.
	DefaultWait = 2 * time.Second
)

// Lease is the exclusive right to drive a terminal.
type Lease struct {
	TerminalID string
	Token      string
	AcquiredAt time.Time

	once    sync.Once
	release func(ctx context.Context) error
	err     error
	lost    chan struct{}
}

// Lost is closed when a kept-alive lease could not be refreshed and another
// process may now own the terminal.
func (l *Lease) Lost() <-chan struct{} {
	return l.lost
}

// Release gives the terminal back. It is safe to call more than once.
func (l *Lease) Release(ctx context.Context) error {
	l.once.Do(func() {
		l.err = l.release(ctx)
	})
	return l.err
}

// Manager orchestrates terminal leases.
type Manager struct {
	mu     sync.Mutex        // Global lock for the map
	leases map[string]*Lease // Active leases by terminal ID

	locker ports.DistributedLocker // Optional distributed locker
	ttl    time.Duration
	wait   time.Duration
	logger *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLeaseTTL sets the expiry of the distributed lock.
func WithLeaseTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithWait sets how long Open waits for another process to release the terminal.
func WithWait(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.wait = d
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a lease manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		leases: make(map[string]*Lease),
		ttl:    DefaultLeaseTTL,
		wait:   DefaultWait,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Open acquires the terminal. It fails with domain.ErrTerminalBusy when the
// terminal is already leased, locally or by another process.
func (m *Manager) Open(ctx context.Context, terminalID string) (*Lease, error) {
	lease := &Lease{
		TerminalID: terminalID,
		Token:      uuid.NewString(),
		AcquiredAt: time.Now(),
		lost:       make(chan struct{}),
	}

	m.mu.Lock()
	if _, busy := m.leases[terminalID]; busy {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: %s already open in this process", domain.ErrTerminalBusy, terminalID)
	}
	// Reserve before talking to the locker so a concurrent Open fails fast.
	m.leases[terminalID] = lease
	m.mu.Unlock()

	var unlock ports.UnlockFunc
	var refresh ports.RefreshFunc
	if m.locker != nil {
		wctx, cancel := context.WithTimeout(ctx, m.wait)
		var err error
		if rl, ok := m.locker.(ports.RefreshingLocker); ok {
			unlock, refresh, err = rl.LockRefreshable(wctx, terminalID, m.ttl)
		} else {
			unlock, err = m.locker.Lock(wctx, terminalID, m.ttl)
		}
		cancel()
		if err != nil {
			m.forget(terminalID, lease)
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				return nil, fmt.Errorf("%w: %s held by another process", domain.ErrTerminalBusy, terminalID)
			}
			return nil, fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
	}

	stop := func() {}
	if refresh != nil {
		stop = m.keepAlive(lease, refresh)
	}

	lease.release = func(ctx context.Context) error {
		stop()
		m.forget(terminalID, lease)
		if unlock == nil {
			return nil
		}
		if err := unlock(ctx); err != nil {
			m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
				"terminal_id", terminalID,
				"err", err,
			)
			return err
		}
		return nil
	}

	m.logger.Debug("terminal leased", "terminal_id", terminalID, "token", lease.Token)
	return lease, nil
}

// WithTerminal runs fn while holding the terminal lease.
func (m *Manager) WithTerminal(ctx context.Context, terminalID string, fn func(context.Context) error) error {
	lease, err := m.Open(ctx, terminalID)
	if err != nil {
		return err
	}
	defer func() {
		_ = lease.Release(context.WithoutCancel(ctx))
	}()
	return fn(ctx)
}

// Active lists the terminal IDs currently leased by this process.
func (m *Manager) Active() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.leases))
	for id := range m.leases {
		ids = append(ids, id)
	}
	return ids
}

// keepAlive refreshes the lock every third of its ttl until the returned
// stop func is called.
func (m *Manager) keepAlive(lease *Lease, refresh ports.RefreshFunc) func() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		interval := m.ttl / 3
		if interval <= 0 {
			interval = m.ttl
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				err := refresh(ctx, m.ttl)
				if err == nil || ctx.Err() != nil {
					continue
				}
				if errors.Is(err, ports.ErrLockLost) {
					m.logger.Error("terminal lease lost", "terminal_id", lease.TerminalID)
					close(lease.lost)
					return
				}
				// Transient errors are retried until the lock actually expires.
				m.logger.Warn("Failed to refresh terminal lease", "terminal_id", lease.TerminalID, "err", err)
			}
		}
	}()
	return func() {
		cancel()
		<-done
	}
}

func (m *Manager) forget(terminalID string, lease *Lease) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.leases[terminalID] == lease {
		delete(m.leases, terminalID)
	}
}
