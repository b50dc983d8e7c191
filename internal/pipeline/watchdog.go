package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/banshee-data/trapcam/internal/timeutil"
)

// ErrCaptureTimeout is returned by Pipeline.Run when no frame arrived
// within the configured capture timeout.
var ErrCaptureTimeout = errors.New("pipeline: no frame captured within timeout")

// watchdog fails the pipeline if the capture stage stops producing frames.
type watchdog struct {
	timeout time.Duration
	clock   timeutil.Clock
	last    func() time.Time
	reset   func(ctx context.Context) error
}

// run ticks at a quarter of the timeout. Until the first frame arrives the
// stage start time is used as the reference.
func (w *watchdog) run(ctx context.Context) error {
	interval := w.timeout / 4
	if interval <= 0 {
		interval = w.timeout
	}
	started := w.clock.Now()
	ticker := w.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C():
		}
		ref := w.last()
		if ref.IsZero() {
			ref = started
		}
		idle := w.clock.Since(ref)
		if idle <= w.timeout {
			continue
		}
		opsf("no frame for %v (timeout %v)", idle.Round(time.Millisecond), w.timeout)
		if w.reset != nil {
			if err := w.reset(ctx); err != nil {
				opsf("camera reset failed: %v", err)
			} else {
				diagf("camera reset issued")
			}
		}
		return ErrCaptureTimeout
	}
}
