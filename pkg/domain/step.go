package domain

// Step identifies the screen the collection flow is currently on.
type Step string

const (
	StepAmountEntry  Step = "amount_entry"  // Keypad, initial step
	StepAwaitingScan Step = "awaiting_scan" // Waiting for the client to tap
	StepAwaitingPin  Step = "awaiting_pin"  // Waiting for the client to confirm with a PIN
	StepSuccess      Step = "success"       // Collection accepted (sink until reset)
	StepFailure      Step = "failure"       // Collection rejected (sink until reset)
)

// IsFinal reports whether the step only leaves through a reset.
func (s Step) IsFinal() bool {
	return s == StepSuccess || s == StepFailure
}

// PromptPhase tracks the client PIN popup while the session is in StepAwaitingPin.
type PromptPhase string

const (
	// PromptHidden means the PIN request is still being pushed to the client.
	PromptHidden PromptPhase = "hidden"
	// PromptShown means the client is asked to type the PIN.
	PromptShown PromptPhase = "shown"
	// PromptProcessing means the submitted PIN is being verified.
	PromptProcessing PromptPhase = "processing"
)

// Key is a keypad button.
type Key string

const (
	KeyClear   Key = "C"
	KeyConfirm Key = "VAL"
)

// IsDigit reports whether the key is one of the ten digit buttons.
func (k Key) IsDigit() bool {
	return len(k) == 1 && k[0] >= '0' && k[0] <= '9'
}
