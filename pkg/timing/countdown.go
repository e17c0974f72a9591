package timing

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Countdown prints a once-per-second countdown before a session starts,
// giving the user time to move their hands off the input devices.
func Countdown(ctx context.Context, w io.Writer, seconds int) error {
	if ctx == nil {
		ctx = context.Background()
	}
	for i := seconds; i > 0; i-- {
		fmt.Fprintf(w, "%d...\n", i)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
	return nil
}
