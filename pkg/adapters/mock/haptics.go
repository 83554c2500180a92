package mock

import (
	"sync"
	"time"
)

// Haptics records vibration requests instead of vibrating.
type Haptics struct {
	mu     sync.Mutex
	pulses []time.Duration
}

// Vibrate implements ports.Haptics.
func (h *Haptics) Vibrate(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pulses = append(h.pulses, d)
}

// Pulses returns the recorded vibrations.
func (h *Haptics) Pulses() []time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]time.Duration(nil), h.pulses...)
}
