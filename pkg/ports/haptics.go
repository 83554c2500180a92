package ports

import "time"

// Haptics provides vibration feedback. Vibrate must not block.
type Haptics interface {
	Vibrate(d time.Duration)
}
