package runtime

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/swap/pkg/domain"
)

const (
	// DefaultMaxAmountDigits caps the keypad amount, as the driver app does.
	DefaultMaxAmountDigits = 7
	// DefaultPinLength is the length of the client PIN field.
	DefaultPinLength = 4
)

// Engine is the collection state machine.
// It is stateless: every transition takes a session and returns a new one,
// leaving the input untouched. Ownership of the current session belongs to the host.
type Engine struct {
	hooks           domain.LifecycleHooks
	logger          *slog.Logger
	maxAmountDigits int
	pinLength       int
}

// EngineOption defines a functional option for configuring the Engine.
type EngineOption func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMaxAmountDigits overrides the keypad amount length cap.
func WithMaxAmountDigits(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxAmountDigits = n
		}
	}
}

// WithPinLength overrides the PIN field length.
func WithPinLength(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.pinLength = n
		}
	}
}

// NewEngine creates a new engine.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxAmountDigits: DefaultMaxAmountDigits,
		pinLength:       DefaultPinLength,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// PinLength returns the configured PIN field length.
func (e *Engine) PinLength() int {
	return e.pinLength
}

// Start creates the initial session and triggers the enter hook.
func (e *Engine) Start(ctx context.Context, sessionID string, epoch uint64) *domain.Session {
	s := domain.NewSession(sessionID, epoch)
	e.emitStepEnter(ctx, s)
	return s
}

// Reset abandons current and starts a fresh session on the keypad screen.
// The new session carries a higher epoch so pending work of current can be recognised as stale.
func (e *Engine) Reset(ctx context.Context, current *domain.Session, sessionID string) *domain.Session {
	var epoch uint64
	if current != nil {
		e.logger.DebugContext(ctx, "session reset", "session_id", current.ID, "step", current.Step)
		e.emitStepLeave(ctx, current)
		if e.hooks.OnReset != nil {
			e.hooks.OnReset(ctx, e.stepEvent(domain.EventReset, current))
		}
		epoch = current.Epoch + 1
	}
	return e.Start(ctx, sessionID, epoch)
}

// transitionTo moves next to a new step, recording history and firing hooks.
// prev is the session before the mutation (used for the leave event).
func (e *Engine) transitionTo(ctx context.Context, prev, next *domain.Session, step domain.Step) *domain.Session {
	if prev.Step == step {
		return next
	}
	e.emitStepLeave(ctx, prev)
	next.Step = step
	next.History = append(next.History, step)
	e.logger.DebugContext(ctx, "step transition", "session_id", next.ID, "from", prev.Step, "to", step)
	e.emitStepEnter(ctx, next)
	return next
}

func (e *Engine) stepEvent(t domain.EventType, s *domain.Session) *domain.StepEvent {
	return &domain.StepEvent{
		EventBase: domain.EventBase{
			Timestamp: time.Now(),
			Type:      t,
			SessionID: s.ID,
		},
		Step:   s.Step,
		Amount: s.Amount,
	}
}

func (e *Engine) emitStepEnter(ctx context.Context, s *domain.Session) {
	if e.hooks.OnStepEnter != nil {
		e.hooks.OnStepEnter(ctx, e.stepEvent(domain.EventStepEnter, s))
	}
}

func (e *Engine) emitStepLeave(ctx context.Context, s *domain.Session) {
	if e.hooks.OnStepLeave != nil {
		e.hooks.OnStepLeave(ctx, e.stepEvent(domain.EventStepLeave, s))
	}
}
