package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/swap/pkg/domain"
)

// LogHooks returns lifecycle hooks that write one structured line per event.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(ctx context.Context, e *domain.StepEvent) {
			logger.InfoContext(ctx, "step_enter",
				"session_id", e.SessionID,
				"step", e.Step,
				"amount", e.Amount,
			)
		},
		OnStepLeave: func(ctx context.Context, e *domain.StepEvent) {
			logger.DebugContext(ctx, "step_leave", "session_id", e.SessionID, "step", e.Step)
		},
		OnScan: func(ctx context.Context, e *domain.ScanEvent) {
			logger.DebugContext(ctx, "scan_state", "session_id", e.SessionID, "from", e.From, "to", e.To)
		},
		OnVerify: func(ctx context.Context, e *domain.VerifyEvent) {
			logger.InfoContext(ctx, "verify",
				"session_id", e.SessionID,
				"outcome", e.Outcome,
				"duration", e.Duration,
				"is_error", e.IsError,
			)
		},
		OnReset: func(ctx context.Context, e *domain.StepEvent) {
			logger.InfoContext(ctx, "reset", "session_id", e.SessionID, "from", e.Step)
		},
	}
}
