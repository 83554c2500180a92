package runner

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// SignalManager turns SIGINT/SIGTERM into context cancellation.
// The runner treats an interrupt during a collection as "cancel this
// payment" and re-arms with Reset; an interrupt on the idle keypad ends the run.
type SignalManager struct {
	ctx    context.Context
	cancel context.CancelFunc
	sigs   []os.Signal
}

// NewSignalManager creates a manager and starts listening immediately.
// Without arguments it captures os.Interrupt and SIGTERM.
func NewSignalManager(sigs ...os.Signal) *SignalManager {
	if len(sigs) == 0 {
		sigs = []os.Signal{os.Interrupt, syscall.SIGTERM}
	}
	sm := &SignalManager{sigs: sigs}
	sm.Reset()
	return sm
}

// Context is cancelled when a signal arrives.
func (sm *SignalManager) Context() context.Context {
	return sm.ctx
}

// Reset re-arms the listener after an interrupt was handled.
func (sm *SignalManager) Reset() {
	if sm.cancel != nil {
		sm.cancel()
	}
	sm.ctx, sm.cancel = signal.NotifyContext(context.Background(), sm.sigs...)
}

// Stop permanently stops the listener.
func (sm *SignalManager) Stop() {
	if sm.cancel != nil {
		sm.cancel()
	}
}

// CheckRace waits briefly to see if a signal follows an input error.
// On some consoles Ctrl+C closes stdin slightly before the signal is delivered.
func (sm *SignalManager) CheckRace() bool {
	if sm.ctx.Err() != nil {
		return true
	}
	select {
	case <-sm.ctx.Done():
		return true
	case <-time.After(100 * time.Millisecond):
		return false
	}
}
