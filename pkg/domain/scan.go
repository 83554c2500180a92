package domain

import "time"

// ScanState is the lifecycle state of the proximity reader.
type ScanState string

const (
	ScanUnsupported ScanState = "unsupported" // No reader capability on this device
	ScanReady       ScanState = "ready"       // Capability present, not scanning
	ScanScanning    ScanState = "scanning"    // Actively waiting for a tag
	ScanError       ScanState = "error"       // Hardware or permission failure
)

// ReadEvent is a single tag read reported by a proximity reader.
// A non-nil Err marks a failed read (e.g. unreadable tag).
type ReadEvent struct {
	TagID   string    `json:"tag_id,omitempty"`
	Records []string  `json:"records,omitempty"`
	At      time.Time `json:"at"`
	Err     error     `json:"-"`
}
