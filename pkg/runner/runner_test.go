package runner_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/swap"
	"github.com/aretw0/swap/pkg/adapters/mock"
	"github.com/aretw0/swap/pkg/domain"
	"github.com/aretw0/swap/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer is a bytes.Buffer safe for one writer and concurrent readers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTerminal(t *testing.T, withReader bool) (*swap.Terminal, *mock.Reader) {
	t.Helper()
	svc, err := mock.NewTransactionService(mock.WithDelays(10*time.Millisecond, 10*time.Millisecond))
	require.NoError(t, err)

	reader := mock.NewReader()
	opts := []swap.Option{swap.WithTransactionService(svc)}
	if withReader {
		opts = append(opts, swap.WithReader(reader))
	}
	term, err := swap.New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = term.Close() })
	return term, reader
}

func TestRunner_ScriptedCollection(t *testing.T) {
	term, reader := newTerminal(t, true)
	in, feed := io.Pipe()
	out := &syncBuffer{}

	var snaps []domain.Snapshot
	var mu sync.Mutex
	r := runner.NewRunner(
		runner.WithInput(in),
		runner.WithOutput(out),
		runner.WithTapper(reader),
		runner.WithSnapshotFunc(func(s domain.Snapshot) {
			mu.Lock()
			defer mu.Unlock()
			snaps = append(snaps, s)
		}),
	)

	errCh := make(chan error, 1)
	go func() { errCh <- r.Run(context.Background(), term) }()

	send := func(line string) {
		_, err := io.WriteString(feed, line+"\n")
		require.NoError(t, err)
	}
	until := func(cond func(domain.Snapshot) bool) {
		require.Eventually(t, func() bool { return cond(term.Snapshot()) }, 2*time.Second, 5*time.Millisecond)
	}

	send("1500")
	send("ok")
	until(func(s domain.Snapshot) bool { return s.Session.Step == domain.StepAwaitingScan })

	send("scan")
	until(func(s domain.Snapshot) bool { return s.Scan == domain.ScanScanning })
	send("tap CLIENT_A")
	until(func(s domain.Snapshot) bool { return s.Session.Prompt == domain.PromptShown })

	send("pin 1234")
	send("submit")
	until(func(s domain.Snapshot) bool { return s.Session.Step == domain.StepSuccess })

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Payment accepted")
	}, 2*time.Second, 5*time.Millisecond)

	send("quit")
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not quit")
	}

	output := out.String()
	assert.Contains(t, output, "Jean (Client)")
	assert.NotContains(t, output, "1234", "typed PIN is never echoed")

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, snaps)
	assert.Equal(t, domain.StepSuccess, snaps[len(snaps)-1].Session.Step)
}

func TestRunner_EndOfInput(t *testing.T) {
	term, _ := newTerminal(t, true)
	out := &syncBuffer{}

	r := runner.NewRunner(
		runner.WithInput(strings.NewReader("12\nc\n7\n")),
		runner.WithOutput(out),
	)
	require.NoError(t, r.Run(context.Background(), term))
	assert.Equal(t, "7", term.Snapshot().Session.Amount)
}

func TestRunner_ErrorsAreNotFatal(t *testing.T) {
	term, _ := newTerminal(t, false)
	out := &syncBuffer{}

	script := strings.Join([]string{
		"dance",  // unknown
		"submit", // wrong step
		"pin",    // usage
		"5",
		"ok",
		"scan",     // no reader: hint, not an error
		"tap",      // no tapper attached
		"\x1b[2J9", // escape stripped before parsing
	}, "\n") + "\n"

	r := runner.NewRunner(runner.WithInput(strings.NewReader(script)), runner.WithOutput(out))
	require.NoError(t, r.Run(context.Background(), term))

	output := out.String()
	assert.Contains(t, output, "unknown command")
	assert.Contains(t, output, "cannot submit pin")
	assert.Contains(t, output, "usage: pin")
	assert.Contains(t, output, "Use 'sim'")
	assert.Contains(t, output, "no simulated reader")
	assert.NotContains(t, output, "\x1b[2J")
	assert.Equal(t, domain.StepAwaitingScan, term.Snapshot().Session.Step)
}

func TestRunner_WaitKeepsRendering(t *testing.T) {
	term, _ := newTerminal(t, false)
	out := &syncBuffer{}

	script := "3\nok\nsim\nwait 200ms\npin 1234\nsubmit\nwait 200ms\n"
	r := runner.NewRunner(runner.WithInput(strings.NewReader(script)), runner.WithOutput(out))
	require.NoError(t, r.Run(context.Background(), term))

	// The pin command only succeeds once the prompt arrived during the wait.
	assert.NotContains(t, out.String(), "Error")
	assert.Equal(t, domain.StepSuccess, term.Snapshot().Session.Step)
}

func TestRunner_ContextCancel(t *testing.T) {
	term, _ := newTerminal(t, false)
	in, feed := io.Pipe()
	defer feed.Close()

	ctx, cancel := context.WithCancel(context.Background())
	r := runner.NewRunner(runner.WithInput(in), runner.WithOutput(io.Discard))

	errCh := make(chan error, 1)
	go func() { errCh <- r.Run(ctx, term) }()
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
		assert.True(t, runner.IsExpectedExit(err))
	case <-time.After(2 * time.Second):
		t.Fatal("runner ignored cancellation")
	}
}

func TestRunner_TerminalClosed(t *testing.T) {
	term, _ := newTerminal(t, false)
	in, feed := io.Pipe()
	defer feed.Close()

	r := runner.NewRunner(runner.WithInput(in), runner.WithOutput(io.Discard))
	errCh := make(chan error, 1)
	go func() { errCh <- r.Run(context.Background(), term) }()

	require.NoError(t, term.Close())
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not notice the closed terminal")
	}
}

func TestBell(t *testing.T) {
	var buf bytes.Buffer
	runner.Bell{W: &buf}.Vibrate(200 * time.Millisecond)
	assert.Equal(t, "\a", buf.String())
	runner.Bell{}.Vibrate(time.Second) // no writer, no panic
}
