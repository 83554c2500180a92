package domain

// Outcome is the result of a PIN verification.
type Outcome string

const (
	OutcomeAccepted Outcome = "accepted"
	OutcomeRejected Outcome = "rejected"
)

// PaymentRequest is what the terminal sends to ask the client for a PIN.
type PaymentRequest struct {
	SessionID string
	Amount    int64
	TagID     string // Empty when the tap was simulated
}

// PinPrompt is the acknowledgement that the client has been asked for a PIN.
type PinPrompt struct {
	Payer string
	Phone string
}

// PinSubmission carries the PIN typed by the client.
type PinSubmission struct {
	SessionID string
	Amount    int64
	Pin       string
}

// Verdict is the answer of the transaction service for a PIN submission.
type Verdict struct {
	Outcome Outcome
	Reason  string
}

// Accepted reports whether the verdict authorises the collection.
func (v Verdict) Accepted() bool {
	return v.Outcome == OutcomeAccepted
}
