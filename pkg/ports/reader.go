package ports

import (
	"context"

	"github.com/aretw0/swap/pkg/domain"
)

// ProximityReader is the short-range tag reading capability of the device.
type ProximityReader interface {
	// Scan starts reading tags until ctx is cancelled.
	// It returns an error when the scan cannot start (hardware missing, permission denied).
	// Reads are delivered on the returned channel, which the reader closes once ctx is done.
	// A read failure is delivered as a ReadEvent with a non-nil Err.
	Scan(ctx context.Context) (<-chan domain.ReadEvent, error)
}
