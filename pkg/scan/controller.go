package scan

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/aretw0/swap/pkg/domain"
	"github.com/aretw0/swap/pkg/ports"
)

// StateFunc observes scan state changes. It is called without the controller lock held.
type StateFunc func(from, to domain.ScanState)

// Controller manages the scan lifecycle of a proximity reader.
// Safe for concurrent use.
type Controller struct {
	reader  ports.ProximityReader
	logger  *slog.Logger
	onState StateFunc

	mu     sync.Mutex
	state  domain.ScanState
	cancel context.CancelFunc // Cancels the active scan, nil when idle
	run    uint64             // Identifies the active scan; bumped on every start/stop
	closed bool

	reads chan domain.ReadEvent
	wg    sync.WaitGroup
}

// Option configures the Controller.
type Option func(*Controller)

// WithLogger configures a logger for the Controller.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithStateFunc registers a state change observer.
func WithStateFunc(fn StateFunc) Option {
	return func(c *Controller) {
		c.onState = fn
	}
}

// NewController creates a controller. A nil reader means the capability is absent
// and the controller stays in ScanUnsupported.
func NewController(reader ports.ProximityReader, opts ...Option) *Controller {
	c := &Controller{
		reader: reader,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		state:  domain.ScanUnsupported,
		reads:  make(chan domain.ReadEvent, 1),
	}
	if reader != nil {
		c.state = domain.ScanReady
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current scan state.
func (c *Controller) State() domain.ScanState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Available reports whether a reader capability is present.
func (c *Controller) Available() bool {
	return c.reader != nil
}

// Reads delivers successful reads, at most one per Start. It is closed by Close.
func (c *Controller) Reads() <-chan domain.ReadEvent {
	return c.reads
}

// Start begins a new scan, stopping any previous one.
// Without a reader it returns domain.ErrCapabilityUnavailable and leaves the state unchanged.
// If the reader cannot start, the state becomes ScanError and the error wraps domain.ErrScanFailed.
func (c *Controller) Start(ctx context.Context) error {
	if c.reader == nil {
		return domain.ErrCapabilityUnavailable
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.ErrTerminalClosed
	}
	// Close waits for in-flight starts as well as pumps.
	c.wg.Add(1)
	defer c.wg.Done()
	from := c.state
	c.stopLocked()
	c.run++
	run := c.run
	// Drop a read left over from an earlier scan.
	select {
	case <-c.reads:
	default:
	}
	scanCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()

	events, err := c.reader.Scan(scanCtx)

	c.mu.Lock()
	if c.run != run || c.closed {
		// Stopped or restarted while the reader was starting.
		to := c.state
		c.mu.Unlock()
		cancel()
		if err == nil {
			drain(events)
		}
		c.notify(from, to)
		return nil
	}
	if err != nil {
		cancel()
		c.cancel = nil
		c.state = domain.ScanError
		c.mu.Unlock()
		c.logger.Warn("scan start failed", "err", err)
		c.notify(from, domain.ScanError)
		return fmt.Errorf("%w: %v", domain.ErrScanFailed, err)
	}
	c.state = domain.ScanScanning
	c.wg.Add(1)
	c.mu.Unlock()

	c.logger.Debug("scan started")
	c.notify(from, domain.ScanScanning)

	go c.pump(scanCtx, cancel, run, events)
	return nil
}

// Stop cancels the active scan. It is idempotent: the state moves from
// ScanScanning to ScanReady and is left unchanged otherwise.
func (c *Controller) Stop() {
	c.mu.Lock()
	from := c.state
	to := c.stopLocked()
	c.run++
	c.mu.Unlock()
	c.notify(from, to)
}

// stopLocked cancels the active scan and returns the resulting state.
func (c *Controller) stopLocked() domain.ScanState {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.state == domain.ScanScanning {
		c.state = domain.ScanReady
	}
	return c.state
}

// Close stops any scan, waits until the reader has released it and closes Reads.
// Further Start calls fail with domain.ErrTerminalClosed.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	from := c.state
	to := c.stopLocked()
	c.run++
	c.mu.Unlock()

	c.wg.Wait()
	close(c.reads)
	c.notify(from, to)
}

// pump forwards the first successful read of a scan and stops it.
// It returns once the reader has closed events.
func (c *Controller) pump(ctx context.Context, cancel context.CancelFunc, run uint64, events <-chan domain.ReadEvent) {
	defer c.wg.Done()
	defer func() {
		cancel()
		drain(events)
	}()
	for {
		select {
		case <-ctx.Done():
			// Stale after Stop; current when the caller's context ended.
			c.finish(run, domain.ScanReady)
			return
		case ev, ok := <-events:
			if !ok {
				c.finish(run, domain.ScanReady)
				return
			}
			if ev.Err != nil {
				c.logger.Warn("tag read failed", "err", ev.Err)
				c.finish(run, domain.ScanError)
				return
			}
			if !c.finish(run, domain.ScanReady) {
				return
			}
			c.logger.Debug("tag read", "tag_id", ev.TagID)
			select {
			case c.reads <- ev:
			default:
				// A previous read was never consumed; the newest one wins.
				select {
				case <-c.reads:
				default:
				}
				select {
				case c.reads <- ev:
				default:
				}
			}
			return
		}
	}
}

// finish ends scan run with the given state. It reports false if the run is stale.
func (c *Controller) finish(run uint64, to domain.ScanState) bool {
	c.mu.Lock()
	if c.run != run || c.closed {
		c.mu.Unlock()
		return false
	}
	from := c.state
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.run++
	c.state = to
	c.mu.Unlock()
	c.notify(from, to)
	return true
}

// drain discards reads until the reader closes the channel after its context ended.
func drain(events <-chan domain.ReadEvent) {
	for range events {
	}
}

func (c *Controller) notify(from, to domain.ScanState) {
	if from != to && c.onState != nil {
		c.onState(from, to)
	}
}
