package mock

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/swap/pkg/domain"
	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultAcceptedPin is the only PIN the mock backend accepts.
	DefaultAcceptedPin = "1234"
	// DefaultDelay simulates the round trip to the backend.
	DefaultDelay = 1500 * time.Millisecond
	// DefaultCardID is the card assumed when a tap carries no known tag.
	DefaultCardID = "CLIENT_A"
)

// Customer is an entry of the simulated card database.
type Customer struct {
	CardID string `mapstructure:"card_id" yaml:"card_id"`
	Name   string `mapstructure:"name" yaml:"name"`
	Phone  string `mapstructure:"phone" yaml:"phone"`
}

// DefaultCustomers is the demo card database.
var DefaultCustomers = []Customer{
	{CardID: DefaultCardID, Name: "Jean (Client)", Phone: "099000001"},
}

// TransactionService implements ports.TransactionService with fixed delays.
type TransactionService struct {
	pinHash     []byte
	promptDelay time.Duration
	verifyDelay time.Duration
	customers   map[string]Customer
	logger      *slog.Logger

	mu       sync.Mutex
	verified int
}

// ServiceOption configures the TransactionService.
type ServiceOption func(*serviceConfig)

type serviceConfig struct {
	pin         string
	promptDelay time.Duration
	verifyDelay time.Duration
	customers   []Customer
	logger      *slog.Logger
}

// WithAcceptedPin overrides the accepted PIN.
func WithAcceptedPin(pin string) ServiceOption {
	return func(c *serviceConfig) {
		c.pin = pin
	}
}

// WithDelays overrides the simulated backend latencies.
func WithDelays(prompt, verify time.Duration) ServiceOption {
	return func(c *serviceConfig) {
		c.promptDelay = prompt
		c.verifyDelay = verify
	}
}

// WithCustomers replaces the card database.
func WithCustomers(customers []Customer) ServiceOption {
	return func(c *serviceConfig) {
		c.customers = customers
	}
}

// WithServiceLogger configures the logger.
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(c *serviceConfig) {
		c.logger = logger
	}
}

// NewTransactionService builds the mock backend. The accepted PIN is kept
// only as a bcrypt hash.
func NewTransactionService(opts ...ServiceOption) (*TransactionService, error) {
	cfg := serviceConfig{
		pin:         DefaultAcceptedPin,
		promptDelay: DefaultDelay,
		verifyDelay: DefaultDelay,
		customers:   DefaultCustomers,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.pin == "" {
		return nil, fmt.Errorf("accepted pin must not be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.pin), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash accepted pin: %w", err)
	}

	svc := &TransactionService{
		pinHash:     hash,
		promptDelay: cfg.promptDelay,
		verifyDelay: cfg.verifyDelay,
		customers:   make(map[string]Customer, len(cfg.customers)),
		logger:      cfg.logger,
	}
	if svc.logger == nil {
		svc.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	for _, c := range cfg.customers {
		svc.customers[c.CardID] = c
	}
	return svc, nil
}

// RequestPin simulates pushing the PIN popup to the client phone.
// Any tag is accepted; unknown or missing tags are billed to the default card.
func (s *TransactionService) RequestPin(ctx context.Context, req domain.PaymentRequest) (domain.PinPrompt, error) {
	s.logger.DebugContext(ctx, "[MOCK] pushing pin request", "session_id", req.SessionID, "amount", req.Amount, "tag_id", req.TagID)

	if err := sleep(ctx, s.promptDelay); err != nil {
		return domain.PinPrompt{}, err
	}

	customer, ok := s.customers[req.TagID]
	if !ok {
		customer = s.customers[DefaultCardID]
	}
	return domain.PinPrompt{Payer: customer.Name, Phone: customer.Phone}, nil
}

// VerifyPin simulates the authorization call.
func (s *TransactionService) VerifyPin(ctx context.Context, sub domain.PinSubmission) (domain.Verdict, error) {
	if err := sleep(ctx, s.verifyDelay); err != nil {
		return domain.Verdict{}, err
	}

	s.mu.Lock()
	s.verified++
	s.mu.Unlock()

	if err := bcrypt.CompareHashAndPassword(s.pinHash, []byte(sub.Pin)); err != nil {
		s.logger.InfoContext(ctx, "[MOCK] pin rejected", "session_id", sub.SessionID)
		return domain.Verdict{Outcome: domain.OutcomeRejected, Reason: "incorrect PIN"}, nil
	}
	s.logger.InfoContext(ctx, "[MOCK] pin accepted", "session_id", sub.SessionID, "amount", sub.Amount)
	return domain.Verdict{Outcome: domain.OutcomeAccepted}, nil
}

// Verifications returns how many PIN checks completed.
func (s *TransactionService) Verifications() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.verified
}

// sleep waits for d unless ctx ends first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
