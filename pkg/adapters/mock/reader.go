package mock

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/swap/pkg/domain"
)

// Reader implements ports.ProximityReader with injected reads.
// Safe for concurrent use.
type Reader struct {
	mu        sync.Mutex
	active    chan domain.ReadEvent
	startErr  error
	scanCount int
}

// NewReader creates a simulated reader.
func NewReader() *Reader {
	return &Reader{}
}

// FailNextStart makes the next Scan call fail with err (e.g. permission denied).
func (r *Reader) FailNextStart(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.startErr = err
}

// Scan implements ports.ProximityReader.
func (r *Reader) Scan(ctx context.Context) (<-chan domain.ReadEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.startErr; err != nil {
		r.startErr = nil
		return nil, err
	}

	ch := make(chan domain.ReadEvent, 1)
	r.active = ch
	r.scanCount++

	go func() {
		<-ctx.Done()
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.active == ch {
			r.active = nil
		}
		close(ch)
	}()

	return ch, nil
}

// Tap simulates a tag presented to the reader.
// It reports false when no scan is active (the tag goes unnoticed).
func (r *Reader) Tap(tagID string, records ...string) bool {
	return r.deliver(domain.ReadEvent{TagID: tagID, Records: records, At: time.Now()})
}

// FailRead simulates an unreadable tag during an active scan.
func (r *Reader) FailRead(err error) bool {
	return r.deliver(domain.ReadEvent{At: time.Now(), Err: err})
}

// Scanning reports whether a scan is active.
func (r *Reader) Scanning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active != nil
}

// ScanCount returns how many scans were started successfully.
func (r *Reader) ScanCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scanCount
}

func (r *Reader) deliver(ev domain.ReadEvent) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active == nil {
		return false
	}
	select {
	case r.active <- ev:
		return true
	default:
		return false
	}
}
