package runner

import (
	"io"
	"log/slog"

	"github.com/aretw0/swap/pkg/domain"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithInput sets where command lines are read from.
func WithInput(r io.Reader) Option {
	return func(rn *Runner) {
		rn.Input = r
	}
}

// WithOutput sets where screens are written.
func WithOutput(w io.Writer) Option {
	return func(rn *Runner) {
		rn.Output = w
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(rn *Runner) {
		rn.Logger = logger
	}
}

// WithRenderer configures the content renderer (e.g. glamour).
func WithRenderer(renderer ContentRenderer) Option {
	return func(rn *Runner) {
		rn.Renderer = renderer
	}
}

// WithScreen replaces the screen builder.
func WithScreen(fn func(domain.Snapshot) string) Option {
	return func(rn *Runner) {
		rn.Screen = fn
	}
}

// WithTapper enables the "tap" command on a simulated reader.
func WithTapper(t Tapper) Option {
	return func(rn *Runner) {
		rn.Tapper = t
	}
}

// WithSnapshotFunc is called with every snapshot that changed visibly.
func WithSnapshotFunc(fn func(domain.Snapshot)) Option {
	return func(rn *Runner) {
		rn.OnSnapshot = fn
	}
}

// WithSignals makes interrupts cancel the current collection.
func WithSignals(sm *SignalManager) Option {
	return func(rn *Runner) {
		rn.Signals = sm
	}
}
