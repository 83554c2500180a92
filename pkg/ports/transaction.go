package ports

import (
	"context"

	"github.com/aretw0/swap/pkg/domain"
)

// TransactionService stands for the remote authorization backend.
// Implementations must honour ctx cancellation and return ctx.Err() when it fires.
type TransactionService interface {
	// RequestPin asks the paying client to confirm the collection with a PIN.
	RequestPin(ctx context.Context, req domain.PaymentRequest) (domain.PinPrompt, error)

	// VerifyPin checks the PIN typed by the client.
	// A wrong PIN is a Rejected verdict, not an error.
	VerifyPin(ctx context.Context, sub domain.PinSubmission) (domain.Verdict, error)
}
