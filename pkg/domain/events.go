package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStepEnter EventType = "step_enter"
	EventStepLeave EventType = "step_leave"
	EventScan      EventType = "scan_state"
	EventVerify    EventType = "verify"
	EventReset     EventType = "reset"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// StepEvent represents entry into or exit from a step.
type StepEvent struct {
	EventBase
	Step   Step   `json:"step"`
	Amount string `json:"amount,omitempty"`
}

// ScanEvent represents a scan lifecycle change.
type ScanEvent struct {
	EventBase
	From ScanState `json:"from"`
	To   ScanState `json:"to"`
}

// VerifyEvent represents a completed PIN verification.
type VerifyEvent struct {
	EventBase
	Outcome  Outcome       `json:"outcome"`
	Duration time.Duration `json:"duration"`
	IsError  bool          `json:"is_error,omitempty"`
}

// LifecycleHooks defines callbacks for terminal observability.
// Hooks are invoked synchronously and must not block or call back into the terminal.
type LifecycleHooks struct {
	OnStepEnter func(context.Context, *StepEvent)
	OnStepLeave func(context.Context, *StepEvent)
	OnScan      func(context.Context, *ScanEvent)
	OnVerify    func(context.Context, *VerifyEvent)
	OnReset     func(context.Context, *StepEvent)
}

// Merge combines hooks so that both a and b are invoked, a first.
func (a LifecycleHooks) Merge(b LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnStepEnter: chain(a.OnStepEnter, b.OnStepEnter),
		OnStepLeave: chain(a.OnStepLeave, b.OnStepLeave),
		OnScan:      chain(a.OnScan, b.OnScan),
		OnVerify:    chain(a.OnVerify, b.OnVerify),
		OnReset:     chain(a.OnReset, b.OnReset),
	}
}

func chain[E any](first, second func(context.Context, E)) func(context.Context, E) {
	if first == nil {
		return second
	}
	if second == nil {
		return first
	}
	return func(ctx context.Context, e E) {
		first(ctx, e)
		second(ctx, e)
	}
}
