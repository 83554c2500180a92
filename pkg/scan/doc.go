/*
Package scan wraps a proximity reader with a start/stop/abort lifecycle.

The Controller turns the reader's callback-style reads into a single
cancellable stream: the first successful read is delivered once on Reads,
after which the scan stops by itself. Close cancels any active scan and waits
for the background pump, so no scan outlives the session hosting it.

	ctrl := scan.NewController(reader, scan.WithLogger(logger))
	defer ctrl.Close()

	if err := ctrl.Start(ctx); err != nil {
		// ErrCapabilityUnavailable or ErrScanFailed: offer manual fallback
	}
	ev := <-ctrl.Reads()
*/
package scan
