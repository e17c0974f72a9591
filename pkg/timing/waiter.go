package timing

import (
	"context"
	"time"

	"github.com/offlinefirst/replaykit/pkg/control"
)

// DefaultSlice bounds how long a sleep runs before re-checking pause and
// cancellation state. It is the documented responsiveness bound for the
// pause and cancel signals.
const DefaultSlice = 50 * time.Millisecond

// Waiter suspends the calling goroutine in bounded slices so long scripted
// delays stay responsive to pause and cancel signals.
type Waiter struct {
	// Slice caps each uninterrupted wait. Zero means DefaultSlice.
	Slice time.Duration
}

// Sleep waits for d of unpaused time. Time spent paused does not count
// toward d. It returns the cancellation cause as soon as the controller is
// cancelled, ctx.Err() when the context ends, and nil once d has elapsed.
func (w Waiter) Sleep(ctx context.Context, d time.Duration, ctrl *control.Controller) error {
	slice := w.Slice
	if slice <= 0 {
		slice = DefaultSlice
	}
	if ctx == nil {
		ctx = context.Background()
	}

	remaining := d
	for {
		if ctrl != nil && ctrl.Cancelled() {
			return ctrl.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if ctrl != nil && ctrl.Paused() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(slice):
			}
			continue
		}

		if remaining <= 0 {
			return nil
		}

		step := remaining
		if step > slice {
			step = slice
		}
		start := time.Now()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(step):
		}
		remaining -= time.Since(start)
	}
}
