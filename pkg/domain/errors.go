package domain

import (
	"errors"
	"fmt"
)

// ErrCapabilityUnavailable is returned when the device has no proximity reader.
var ErrCapabilityUnavailable = errors.New("proximity scan capability unavailable")

// ErrScanFailed is returned when the reader fails to start or to read (hardware or permission).
var ErrScanFailed = errors.New("proximity scan failed")

// ErrVerificationRejected is recorded when the client PIN is refused.
var ErrVerificationRejected = errors.New("verification rejected")

// ErrInvalidTransition is returned when an action is not allowed on the current step.
var ErrInvalidTransition = errors.New("invalid transition")

// ErrTerminalBusy is returned when another session already holds the terminal.
var ErrTerminalBusy = errors.New("terminal busy")

// ErrTerminalClosed is returned by a terminal after Close.
var ErrTerminalClosed = errors.New("terminal closed")

// TransitionError describes an action refused by the state machine.
type TransitionError struct {
	Action string
	Step   Step
	Prompt PromptPhase
}

func (e *TransitionError) Error() string {
	if e.Prompt != "" {
		return fmt.Sprintf("cannot %s on step %s (prompt %s)", e.Action, e.Step, e.Prompt)
	}
	return fmt.Sprintf("cannot %s on step %s", e.Action, e.Step)
}

// Unwrap allows errors.Is(err, ErrInvalidTransition).
func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}
