package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// signalContext derives a context that ends on SIGINT or SIGTERM so capture
// and replay sessions shut down cleanly.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
