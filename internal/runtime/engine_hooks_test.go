package runtime_test

import (
	"context"
	"testing"

	"github.com/aretw0/swap/internal/runtime"
	"github.com/aretw0/swap/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestEngine_LifecycleHooks(t *testing.T) {
	var entered, left []domain.Step
	var resets int

	hooks := domain.LifecycleHooks{
		OnStepEnter: func(ctx context.Context, e *domain.StepEvent) {
			entered = append(entered, e.Step)
		},
		OnStepLeave: func(ctx context.Context, e *domain.StepEvent) {
			left = append(left, e.Step)
		},
		OnReset: func(ctx context.Context, e *domain.StepEvent) {
			resets++
		},
	}

	engine := runtime.NewEngine(runtime.WithLifecycleHooks(hooks))
	ctx := context.Background()

	s := engine.Start(ctx, "s", 0)
	assert.Equal(t, []domain.Step{domain.StepAmountEntry}, entered, "Start should fire enter")

	// Typing does not change step, so no hooks.
	s, _ = engine.Press(ctx, s, domain.Key("8"))
	assert.Len(t, entered, 1)

	s, _ = engine.Confirm(ctx, s)
	s, _ = engine.Tap(ctx, s)
	_ = engine.Reset(ctx, s, "next")

	assert.Equal(t, []domain.Step{
		domain.StepAmountEntry, domain.StepAwaitingScan, domain.StepAwaitingPin, domain.StepAmountEntry,
	}, entered)
	assert.Equal(t, []domain.Step{
		domain.StepAmountEntry, domain.StepAwaitingScan, domain.StepAwaitingPin,
	}, left)
	assert.Equal(t, 1, resets)
}
