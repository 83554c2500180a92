package runtime

import (
	"context"
	"errors"

	"github.com/aretw0/swap/pkg/domain"
)

func refuse(action string, s *domain.Session) error {
	te := &domain.TransitionError{Action: action, Step: s.Step}
	if s.Step == domain.StepAwaitingPin {
		te.Prompt = s.Prompt
	}
	return te
}

// Press applies a keypad button on the amount screen.
// Digits are appended up to the length cap (extra digits are ignored),
// KeyClear empties the amount and KeyConfirm behaves as Confirm.
// Any keypad action discards a stale PIN input.
func (e *Engine) Press(ctx context.Context, s *domain.Session, key domain.Key) (*domain.Session, error) {
	if s.Step != domain.StepAmountEntry {
		return s, refuse("press "+string(key), s)
	}

	switch {
	case key == domain.KeyConfirm:
		return e.Confirm(ctx, s)
	case key == domain.KeyClear:
		next := s.Clone()
		next.Amount = ""
		next.PinInput = ""
		return next, nil
	case key.IsDigit():
		next := s.Clone()
		next.PinInput = ""
		if len(next.Amount) < e.maxAmountDigits {
			next.Amount += string(key)
		}
		return next, nil
	default:
		return s, refuse("press "+string(key), s)
	}
}

// Confirm leaves the amount screen when the amount parses to a positive integer.
// A zero or empty amount is a silent no-op: the same session is returned.
func (e *Engine) Confirm(ctx context.Context, s *domain.Session) (*domain.Session, error) {
	if s.Step != domain.StepAmountEntry {
		return s, refuse("confirm", s)
	}
	if s.AmountValue() <= 0 {
		return s, nil
	}
	next := s.Clone()
	next.PinInput = ""
	return e.transitionTo(ctx, s, next, domain.StepAwaitingScan), nil
}

// Tap records a successful proximity read (real or simulated) and moves to the PIN step.
// The PIN popup stays hidden until ShowPrompt.
func (e *Engine) Tap(ctx context.Context, s *domain.Session) (*domain.Session, error) {
	if s.Step != domain.StepAwaitingScan {
		return s, refuse("tap", s)
	}
	next := s.Clone()
	next.Prompt = domain.PromptHidden
	next.PinInput = ""
	return e.transitionTo(ctx, s, next, domain.StepAwaitingPin), nil
}

// ShowPrompt opens the PIN popup once the request reached the client.
func (e *Engine) ShowPrompt(ctx context.Context, s *domain.Session, prompt domain.PinPrompt) (*domain.Session, error) {
	if s.Step != domain.StepAwaitingPin || s.Prompt != domain.PromptHidden {
		return s, refuse("show prompt", s)
	}
	next := s.Clone()
	next.Prompt = domain.PromptShown
	next.Payer = prompt.Payer
	return next, nil
}

// EnterPin replaces the typed PIN. Input longer than the field is truncated.
func (e *Engine) EnterPin(ctx context.Context, s *domain.Session, pin string) (*domain.Session, error) {
	if s.Step != domain.StepAwaitingPin || s.Prompt != domain.PromptShown {
		return s, refuse("enter pin", s)
	}
	runes := []rune(pin)
	if len(runes) > e.pinLength {
		runes = runes[:e.pinLength]
	}
	next := s.Clone()
	next.PinInput = string(runes)
	return next, nil
}

// SubmitPin locks the popup while the PIN is verified.
// It is refused while a verification is already running, so a session resolves once.
func (e *Engine) SubmitPin(ctx context.Context, s *domain.Session) (*domain.Session, error) {
	if s.Step != domain.StepAwaitingPin || s.Prompt != domain.PromptShown {
		return s, refuse("submit pin", s)
	}
	next := s.Clone()
	next.Prompt = domain.PromptProcessing
	return next, nil
}

// Resolve applies the verification result of a submitted PIN.
// An accepted verdict leads to StepSuccess; a rejection or a service error to StepFailure.
func (e *Engine) Resolve(ctx context.Context, s *domain.Session, verdict domain.Verdict, verr error) (*domain.Session, error) {
	if s.Step != domain.StepAwaitingPin || s.Prompt != domain.PromptProcessing {
		return s, refuse("resolve", s)
	}
	next := s.Clone()
	next.PinInput = ""
	next.Prompt = ""

	if verr == nil && verdict.Accepted() {
		return e.transitionTo(ctx, s, next, domain.StepSuccess), nil
	}

	switch {
	case verr != nil:
		next.Reason = verr.Error()
	case verdict.Reason != "":
		next.Reason = verdict.Reason
	default:
		next.Reason = domain.ErrVerificationRejected.Error()
	}
	e.logger.InfoContext(ctx, "collection refused", "session_id", s.ID, "reason", next.Reason)
	return e.transitionTo(ctx, s, next, domain.StepFailure), nil
}

// Fail aborts the PIN step (e.g. the request could not reach the client).
func (e *Engine) Fail(ctx context.Context, s *domain.Session, cause error) (*domain.Session, error) {
	if s.Step != domain.StepAwaitingPin {
		return s, refuse("fail", s)
	}
	if cause == nil {
		cause = errors.New("collection aborted")
	}
	next := s.Clone()
	next.PinInput = ""
	next.Prompt = ""
	next.Reason = cause.Error()
	return e.transitionTo(ctx, s, next, domain.StepFailure), nil
}
