package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/aretw0/swap/internal/logging"
	"github.com/aretw0/swap/internal/presentation/tui"
	"github.com/aretw0/swap/pkg/domain"
)

// Terminal is the surface of swap.Terminal the runner drives.
type Terminal interface {
	Press(key domain.Key) error
	TypeAmount(digits string) error
	Confirm() error
	StartScan() error
	StopScan()
	SimulateTap() error
	EnterPin(pin string) error
	SubmitPin() error
	Reset() error
	Snapshot() domain.Snapshot
	Changes() <-chan struct{}
}

// Tapper presents tags to a simulated reader.
type Tapper interface {
	Tap(tagID string, records ...string) bool
}

// ContentRenderer transforms screen markdown before output (markdown to ANSI).
type ContentRenderer func(string) (string, error)

// Runner handles the interaction loop of a terminal.
type Runner struct {
	Input      io.Reader
	Output     io.Writer
	Renderer   ContentRenderer
	Screen     func(domain.Snapshot) string
	Logger     *slog.Logger
	Tapper     Tapper
	OnSnapshot func(domain.Snapshot)
	Signals    *SignalManager
}

// NewRunner creates a Runner on Stdin/Stdout with plain markdown output.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Input:  os.Stdin,
		Output: os.Stdout,
		Screen: tui.Screen,
		Logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run renders the terminal and applies input lines until "quit", end of
// input, ctx cancellation, or an interrupt on an idle keypad.
// The terminal is not closed by Run.
func (r *Runner) Run(ctx context.Context, term Terminal) error {
	done := make(chan struct{})
	defer close(done)
	lines := pumpLines(r.Input, done)

	var last *domain.Snapshot
	render := func(force bool) {
		snap := term.Snapshot()
		diff := domain.Diff(last, &snap)
		last = &snap
		if diff == nil && !force {
			return
		}
		if diff != nil && r.OnSnapshot != nil {
			r.OnSnapshot(snap)
		}
		r.print(snap)
	}
	render(true)

	var pause <-chan time.Time
	for {
		var interrupted <-chan struct{}
		if r.Signals != nil {
			interrupted = r.Signals.Context().Done()
		}
		input := lines
		if pause != nil {
			input = nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-interrupted:
			snap := term.Snapshot()
			if idle(snap.Session) {
				r.system("interrupted")
				return nil
			}
			if err := term.Reset(); err != nil {
				return err
			}
			r.Signals.Reset()
			r.system("collection cancelled")

		case _, ok := <-term.Changes():
			if !ok {
				return nil
			}
			render(false)

		case <-pause:
			pause = nil

		case res, ok := <-input:
			if !ok {
				return nil
			}
			if res.err != nil {
				if r.Signals != nil && r.Signals.CheckRace() {
					continue
				}
				return fmt.Errorf("input error: %w", res.err)
			}

			line, err := SanitizeLine(res.text)
			if err != nil {
				fmt.Fprintf(r.Output, "Error: %v. Please try again.\n", err)
				continue
			}
			quit, wait, err := r.dispatch(term, line)
			if quit {
				return nil
			}
			if wait > 0 {
				pause = time.After(wait)
			}
			if err != nil {
				r.Logger.Debug("command refused", "line", line, "err", err)
				fmt.Fprintf(r.Output, "Error: %v\n", err)
			}
			if strings.EqualFold(line, "status") {
				render(true)
			}
		}
	}
}

func (r *Runner) print(snap domain.Snapshot) {
	if r.Screen == nil {
		return
	}
	output := r.Screen(snap)
	if r.Renderer != nil {
		if rendered, err := r.Renderer(output); err == nil {
			output = rendered
		} else {
			r.Logger.Warn("render failed, printing markdown", "err", err)
		}
	}
	fmt.Fprintln(r.Output, strings.TrimSpace(output))
}

func (r *Runner) system(msg string) {
	fmt.Fprintf(r.Output, "\n[System] %s\n", msg)
}

// idle reports whether an interrupt should end the run instead of cancelling a collection.
func idle(s domain.Session) bool {
	return s.Step == domain.StepAmountEntry && s.Amount == ""
}

// IsExpectedExit reports whether err is the normal end of an interactive run.
func IsExpectedExit(err error) bool {
	return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, io.EOF)
}
