package runtime_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/swap/internal/runtime"
	"github.com/aretw0/swap/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func typeAmount(t *testing.T, e *runtime.Engine, s *domain.Session, digits string) *domain.Session {
	t.Helper()
	for _, d := range digits {
		var err error
		s, err = e.Press(context.Background(), s, domain.Key(string(d)))
		require.NoError(t, err)
	}
	return s
}

func atPrompt(t *testing.T, e *runtime.Engine) *domain.Session {
	t.Helper()
	ctx := context.Background()
	s := typeAmount(t, e, e.Start(ctx, "s", 0), "1500")
	s, err := e.Confirm(ctx, s)
	require.NoError(t, err)
	s, err = e.Tap(ctx, s)
	require.NoError(t, err)
	s, err = e.ShowPrompt(ctx, s, domain.PinPrompt{Payer: "Jean (Client)"})
	require.NoError(t, err)
	return s
}

func TestEngine_Confirm(t *testing.T) {
	ctx := context.Background()
	engine := runtime.NewEngine()

	tests := []struct {
		name   string
		amount string
		want   domain.Step
	}{
		{"Positive Amount", "1500", domain.StepAwaitingScan},
		{"Single Unit", "1", domain.StepAwaitingScan},
		{"Leading Zeros", "007", domain.StepAwaitingScan},
		{"Empty Amount Is No-op", "", domain.StepAmountEntry},
		{"Zero Is No-op", "0", domain.StepAmountEntry},
		{"Zeros Are No-op", "000", domain.StepAmountEntry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := typeAmount(t, engine, engine.Start(ctx, "s", 0), tt.amount)
			next, err := engine.Confirm(ctx, s)
			require.NoError(t, err)
			assert.Equal(t, tt.want, next.Step)
			assert.Equal(t, tt.amount, next.Amount)
		})
	}
}

func TestEngine_Keypad(t *testing.T) {
	ctx := context.Background()
	engine := runtime.NewEngine()

	t.Run("Digits Capped", func(t *testing.T) {
		s := typeAmount(t, engine, engine.Start(ctx, "s", 0), "123456789")
		assert.Equal(t, "1234567", s.Amount)
	})

	t.Run("Clear", func(t *testing.T) {
		s := typeAmount(t, engine, engine.Start(ctx, "s", 0), "42")
		s, err := engine.Press(ctx, s, domain.KeyClear)
		require.NoError(t, err)
		assert.Empty(t, s.Amount)
	})

	t.Run("Confirm Key", func(t *testing.T) {
		s := typeAmount(t, engine, engine.Start(ctx, "s", 0), "5")
		s, err := engine.Press(ctx, s, domain.KeyConfirm)
		require.NoError(t, err)
		assert.Equal(t, domain.StepAwaitingScan, s.Step)
	})

	t.Run("Unknown Key", func(t *testing.T) {
		_, err := engine.Press(ctx, engine.Start(ctx, "s", 0), domain.Key("#"))
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("Custom Cap", func(t *testing.T) {
		short := runtime.NewEngine(runtime.WithMaxAmountDigits(3))
		s := typeAmount(t, short, short.Start(ctx, "s", 0), "98765")
		assert.Equal(t, "987", s.Amount)
	})

	t.Run("Input Session Untouched", func(t *testing.T) {
		s := engine.Start(ctx, "s", 0)
		next, err := engine.Press(ctx, s, domain.Key("9"))
		require.NoError(t, err)
		assert.Empty(t, s.Amount)
		assert.Equal(t, "9", next.Amount)
	})
}

func TestEngine_PinFlow(t *testing.T) {
	ctx := context.Background()
	engine := runtime.NewEngine()

	t.Run("Accepted", func(t *testing.T) {
		s := atPrompt(t, engine)
		assert.Equal(t, "Jean (Client)", s.Payer)

		s, err := engine.EnterPin(ctx, s, "1234")
		require.NoError(t, err)
		s, err = engine.SubmitPin(ctx, s)
		require.NoError(t, err)
		assert.Equal(t, domain.PromptProcessing, s.Prompt)

		s, err = engine.Resolve(ctx, s, domain.Verdict{Outcome: domain.OutcomeAccepted}, nil)
		require.NoError(t, err)
		assert.Equal(t, domain.StepSuccess, s.Step)
		assert.Equal(t, "1500", s.Amount)
		assert.Empty(t, s.PinInput)
		assert.Equal(t, []domain.Step{
			domain.StepAmountEntry, domain.StepAwaitingScan, domain.StepAwaitingPin, domain.StepSuccess,
		}, s.History)
	})

	t.Run("Rejected", func(t *testing.T) {
		s := atPrompt(t, engine)
		s, _ = engine.EnterPin(ctx, s, "0000")
		s, _ = engine.SubmitPin(ctx, s)
		s, err := engine.Resolve(ctx, s, domain.Verdict{Outcome: domain.OutcomeRejected}, nil)
		require.NoError(t, err)
		assert.Equal(t, domain.StepFailure, s.Step)
		assert.Equal(t, domain.ErrVerificationRejected.Error(), s.Reason)
		assert.Empty(t, s.PinInput)
	})

	t.Run("Service Error Fails", func(t *testing.T) {
		s := atPrompt(t, engine)
		s, _ = engine.SubmitPin(ctx, s)
		s, err := engine.Resolve(ctx, s, domain.Verdict{}, errors.New("backend down"))
		require.NoError(t, err)
		assert.Equal(t, domain.StepFailure, s.Step)
		assert.Equal(t, "backend down", s.Reason)
	})

	t.Run("Pin Truncated", func(t *testing.T) {
		s := atPrompt(t, engine)
		s, err := engine.EnterPin(ctx, s, "123456")
		require.NoError(t, err)
		assert.Equal(t, "1234", s.PinInput)
	})

	t.Run("Double Submit Refused", func(t *testing.T) {
		s := atPrompt(t, engine)
		s, _ = engine.SubmitPin(ctx, s)
		again, err := engine.SubmitPin(ctx, s)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		assert.Same(t, s, again)
	})

	t.Run("Resolve Only Once", func(t *testing.T) {
		s := atPrompt(t, engine)
		s, _ = engine.SubmitPin(ctx, s)
		s, err := engine.Resolve(ctx, s, domain.Verdict{Outcome: domain.OutcomeAccepted}, nil)
		require.NoError(t, err)
		_, err = engine.Resolve(ctx, s, domain.Verdict{Outcome: domain.OutcomeRejected}, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("Pin Refused Before Prompt", func(t *testing.T) {
		s := typeAmount(t, engine, engine.Start(ctx, "s", 0), "10")
		s, _ = engine.Confirm(ctx, s)
		s, _ = engine.Tap(ctx, s)
		_, err := engine.EnterPin(ctx, s, "1234")
		var te *domain.TransitionError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, domain.PromptHidden, te.Prompt)
	})

	t.Run("Fail During Push", func(t *testing.T) {
		s := typeAmount(t, engine, engine.Start(ctx, "s", 0), "10")
		s, _ = engine.Confirm(ctx, s)
		s, _ = engine.Tap(ctx, s)
		s, err := engine.Fail(ctx, s, errors.New("client unreachable"))
		require.NoError(t, err)
		assert.Equal(t, domain.StepFailure, s.Step)
		assert.Equal(t, "client unreachable", s.Reason)
	})
}

func TestEngine_WrongStep(t *testing.T) {
	ctx := context.Background()
	engine := runtime.NewEngine()
	start := engine.Start(ctx, "s", 0)

	_, err := engine.Tap(ctx, start)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = engine.SubmitPin(ctx, start)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	s := typeAmount(t, engine, start, "3")
	s, _ = engine.Confirm(ctx, s)
	_, err = engine.Press(ctx, s, domain.Key("1"))
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = engine.Confirm(ctx, s)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestEngine_Reset(t *testing.T) {
	ctx := context.Background()
	engine := runtime.NewEngine()

	for _, s := range []*domain.Session{
		engine.Start(ctx, "a", 0),
		typeAmount(t, engine, engine.Start(ctx, "b", 4), "77"),
		atPrompt(t, engine),
	} {
		next := engine.Reset(ctx, s, "fresh")
		assert.Equal(t, domain.StepAmountEntry, next.Step)
		assert.Empty(t, next.Amount)
		assert.Empty(t, next.PinInput)
		assert.Equal(t, s.Epoch+1, next.Epoch)
		assert.Equal(t, "fresh", next.ID)
	}
}
