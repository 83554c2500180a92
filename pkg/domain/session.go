package domain

import (
	"strconv"
	"time"
)

// Session represents one amount-collection attempt, from amount entry to resolution.
type Session struct {
	// ID identifies the session in logs and metrics.
	ID string `json:"id"`

	// Step is the current screen.
	Step Step `json:"step"`

	// Amount is the keyed amount as a string of decimal digits.
	Amount string `json:"amount"`

	// PinInput holds what the client has typed in the PIN popup.
	PinInput string `json:"-"`

	// Prompt is the PIN popup phase, meaningful only in StepAwaitingPin.
	Prompt PromptPhase `json:"prompt,omitempty"`

	// Payer is the display name returned by the PIN push, if any.
	Payer string `json:"payer,omitempty"`

	// Reason explains a StepFailure.
	Reason string `json:"reason,omitempty"`

	// Epoch is bumped on every reset. Async work started under an older
	// epoch must not be applied.
	Epoch uint64 `json:"epoch"`

	StartedAt time.Time `json:"started_at"`

	// History tracks the steps visited, starting with StepAmountEntry.
	History []Step `json:"history"`
}

// NewSession creates a clean session on the keypad screen.
func NewSession(id string, epoch uint64) *Session {
	return &Session{
		ID:        id,
		Step:      StepAmountEntry,
		Epoch:     epoch,
		StartedAt: time.Now(),
		History:   []Step{StepAmountEntry},
	}
}

// Clone returns a copy safe to mutate independently of s.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	next := *s
	next.History = append([]Step(nil), s.History...)
	return &next
}

// AmountValue parses Amount. Empty or malformed amounts yield 0.
func (s *Session) AmountValue() int64 {
	if s.Amount == "" {
		return 0
	}
	v, err := strconv.ParseInt(s.Amount, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// PinMasked returns one bullet per typed PIN character.
func (s *Session) PinMasked() string {
	masked := make([]rune, 0, len(s.PinInput))
	for range s.PinInput {
		masked = append(masked, '•')
	}
	return string(masked)
}
