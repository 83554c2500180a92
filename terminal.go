package swap

import (
	"context"
	"errors"
	"time"

	"github.com/aretw0/swap/pkg/domain"
)

// Press applies a keypad button (digit, domain.KeyClear or domain.KeyConfirm).
func (t *Terminal) Press(key domain.Key) error {
	return t.apply(func(ctx context.Context, s *domain.Session) (*domain.Session, error) {
		return t.engine.Press(ctx, s, key)
	})
}

// TypeAmount presses each digit of digits in order.
func (t *Terminal) TypeAmount(digits string) error {
	for _, d := range digits {
		if err := t.Press(domain.Key(string(d))); err != nil {
			return err
		}
	}
	return nil
}

// Confirm validates the keyed amount. A zero or empty amount is ignored.
func (t *Terminal) Confirm() error {
	return t.apply(func(ctx context.Context, s *domain.Session) (*domain.Session, error) {
		return t.engine.Confirm(ctx, s)
	})
}

// StartScan activates the proximity reader while waiting for the tap.
// It returns domain.ErrCapabilityUnavailable on devices without a reader, and an
// error wrapping domain.ErrScanFailed when the reader refuses to start; in both
// cases SimulateTap remains available.
func (t *Terminal) StartScan() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return domain.ErrTerminalClosed
	}
	if t.session.Step != domain.StepAwaitingScan {
		err := &domain.TransitionError{Action: "start scan", Step: t.session.Step}
		t.mu.Unlock()
		return err
	}
	ctx := t.sessCtx
	t.scanEpoch = t.session.Epoch
	t.scanArmed = true
	t.scanGen++
	gen := t.scanGen
	t.mu.Unlock()

	if err := t.scanner.Start(ctx); err != nil {
		t.logger.Info("scan unavailable, manual tap remains possible", "err", err)
		return err
	}
	t.settleScan(gen)
	return nil
}

// settleScan stops the scan started by StartScan call gen if a tap, stop or
// reset disarmed it while the reader was starting.
func (t *Terminal) settleScan(gen uint64) {
	t.mu.Lock()
	stale := t.scanGen == gen && (!t.scanArmed || t.closed)
	t.mu.Unlock()
	if stale {
		t.logger.Debug("scan disarmed while starting, stopping it")
		t.scanner.Stop()
	}
}

// StopScan cancels an active scan. It is a no-op when not scanning.
func (t *Terminal) StopScan() {
	t.mu.Lock()
	t.scanArmed = false
	t.mu.Unlock()
	t.scanner.Stop()
}

// SimulateTap stands in for a tag read (manual fallback).
func (t *Terminal) SimulateTap() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return domain.ErrTerminalClosed
	}
	return t.tapLocked("")
}

// EnterPin sets what the client typed in the PIN popup.
func (t *Terminal) EnterPin(pin string) error {
	return t.apply(func(ctx context.Context, s *domain.Session) (*domain.Session, error) {
		return t.engine.EnterPin(ctx, s, pin)
	})
}

// SubmitPin sends the typed PIN for verification. The outcome is applied
// asynchronously; watch Changes for the Success or Failure step.
func (t *Terminal) SubmitPin() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return domain.ErrTerminalClosed
	}

	next, err := t.engine.SubmitPin(t.sessCtx, t.session)
	if err != nil {
		return err
	}
	t.setSession(next)

	sub := domain.PinSubmission{
		SessionID: next.ID,
		Amount:    next.AmountValue(),
		Pin:       next.PinInput,
	}
	t.spawn(next.Epoch, func(ctx context.Context) func() {
		start := time.Now()
		verdict, verr := t.service.VerifyPin(ctx, sub)
		return func() { t.resolveLocked(ctx, verdict, verr, time.Since(start)) }
	})
	t.notify()
	return nil
}

// Reset abandons the current session and returns to an empty keypad.
// Pending PIN requests, verifications and scans of the old session are cancelled.
func (t *Terminal) Reset() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return domain.ErrTerminalClosed
	}

	t.sessCancel()
	t.scanArmed = false
	t.scanner.Stop()

	t.sessCtx, t.sessCancel = context.WithCancel(context.Background())
	t.setSession(t.engine.Reset(t.sessCtx, t.session, t.newID()))
	t.notify()
	return nil
}

// apply runs a synchronous transition under the lock.
func (t *Terminal) apply(fn func(context.Context, *domain.Session) (*domain.Session, error)) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return domain.ErrTerminalClosed
	}
	next, err := fn(t.sessCtx, t.session)
	if err != nil {
		return err
	}
	if next != t.session {
		t.setSession(next)
		t.notify()
	}
	return nil
}

// tapLocked moves to the PIN step and pushes the PIN request to the client.
func (t *Terminal) tapLocked(tagID string) error {
	next, err := t.engine.Tap(t.sessCtx, t.session)
	if err != nil {
		return err
	}
	t.scanArmed = false
	t.scanner.Stop()
	t.setSession(next)

	if t.haptics != nil && t.pulse > 0 {
		t.haptics.Vibrate(t.pulse)
	}

	req := domain.PaymentRequest{
		SessionID: next.ID,
		Amount:    next.AmountValue(),
		TagID:     tagID,
	}
	t.spawn(next.Epoch, func(ctx context.Context) func() {
		prompt, perr := t.service.RequestPin(ctx, req)
		return func() { t.promptLocked(ctx, prompt, perr) }
	})
	t.notify()
	return nil
}

func (t *Terminal) promptLocked(ctx context.Context, prompt domain.PinPrompt, perr error) {
	var next *domain.Session
	var err error
	if perr != nil {
		t.logger.WarnContext(ctx, "pin request failed", "session_id", t.session.ID, "err", perr)
		next, err = t.engine.Fail(ctx, t.session, perr)
	} else {
		next, err = t.engine.ShowPrompt(ctx, t.session, prompt)
	}
	if err != nil {
		t.logger.DebugContext(ctx, "pin prompt dropped", "err", err)
		return
	}
	t.setSession(next)
}

func (t *Terminal) resolveLocked(ctx context.Context, verdict domain.Verdict, verr error, took time.Duration) {
	next, err := t.engine.Resolve(ctx, t.session, verdict, verr)
	if err != nil {
		t.logger.DebugContext(ctx, "verdict dropped", "err", err)
		return
	}
	t.setSession(next)

	if next.Step == domain.StepSuccess {
		t.wallet.Bonus++
	}
	if t.hooks.OnVerify != nil {
		outcome := verdict.Outcome
		if verr != nil {
			outcome = domain.OutcomeRejected
		}
		t.hooks.OnVerify(ctx, &domain.VerifyEvent{
			EventBase: domain.EventBase{
				Timestamp: time.Now(),
				Type:      domain.EventVerify,
				SessionID: next.ID,
			},
			Outcome:  outcome,
			Duration: took,
			IsError:  verr != nil,
		})
	}
}

// spawn runs work in the background under the current session context.
// work returns the transition to apply; it is applied under the lock only if
// the session that scheduled it is still current.
func (t *Terminal) spawn(epoch uint64, work func(ctx context.Context) func()) {
	ctx := t.sessCtx
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		apply := work(ctx)

		t.mu.Lock()
		defer t.mu.Unlock()
		if t.closed || t.session.Epoch != epoch || ctx.Err() != nil {
			t.logger.Debug("stale completion ignored", "epoch", epoch)
			return
		}
		apply()
		t.notify()
	}()
}

// consumeReads turns scan reads into taps. Reads from a scan started for an
// earlier session, or arriving after the flow moved on, are ignored.
func (t *Terminal) consumeReads() {
	defer t.wg.Done()
	for ev := range t.scanner.Reads() {
		t.mu.Lock()
		if t.closed || !t.scanArmed || t.scanEpoch != t.session.Epoch {
			t.mu.Unlock()
			continue
		}
		if err := t.tapLocked(ev.TagID); err != nil && !errors.Is(err, domain.ErrInvalidTransition) {
			t.logger.Warn("tag read not applied", "err", err)
		}
		t.mu.Unlock()
	}
}
