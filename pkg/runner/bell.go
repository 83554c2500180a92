package runner

import (
	"io"
	"time"
)

// Bell implements ports.Haptics on a console by ringing the terminal bell.
type Bell struct {
	W io.Writer
}

// Vibrate rings once; consoles cannot express a duration.
func (b Bell) Vibrate(time.Duration) {
	if b.W != nil {
		_, _ = io.WriteString(b.W, "\a")
	}
}
