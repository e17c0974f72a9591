package control

import (
	"context"
	"errors"
	"sync"
)

// ErrCancelled is the cause recorded when a session is cancelled by the
// user's cancel signal rather than by an error.
var ErrCancelled = errors.New("session cancelled")

// Controller coordinates pause/resume/cancel signals between the signal
// listeners and the active capture or playback loop. Writes are simple flag
// toggles; loops poll the flags between events and between sleep slices, so
// a flagged state is observed within one polling interval (50ms).
type Controller struct {
	mu        sync.Mutex
	paused    bool
	cancelled bool
	cause     error
	signal    chan struct{}
}

// NewController constructs a controller in the running state.
func NewController() *Controller {
	return &Controller{signal: make(chan struct{}, 1)}
}

// Reset re-arms the controller for a fresh session. Each recording or
// playback session must start from a reset controller so no paused or
// cancelled state leaks between sessions.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.paused = false
	c.cancelled = false
	c.cause = nil
	c.mu.Unlock()
}

// Pause transitions the controller into a paused state.
func (c *Controller) Pause() {
	c.mu.Lock()
	c.paused = true
	c.mu.Unlock()
}

// Resume clears a paused state and notifies waiters.
func (c *Controller) Resume() {
	c.mu.Lock()
	alreadyRunning := !c.paused
	c.paused = false
	c.mu.Unlock()
	if !alreadyRunning {
		c.notify()
	}
}

// Toggle flips the paused flag and returns the new state.
func (c *Controller) Toggle() bool {
	c.mu.Lock()
	c.paused = !c.paused
	paused := c.paused
	c.mu.Unlock()
	if !paused {
		c.notify()
	}
	return paused
}

// Cancel requests the active loop to stop and records an optional cause.
// The first cause wins; ErrCancelled is recorded when none is given.
func (c *Controller) Cancel(err error) {
	if err == nil {
		err = ErrCancelled
	}
	c.mu.Lock()
	if !c.cancelled {
		c.cancelled = true
		c.cause = err
	}
	c.mu.Unlock()
	c.notify()
}

// Paused reports whether the session is currently paused.
func (c *Controller) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// Cancelled reports whether cancellation has been requested.
func (c *Controller) Cancelled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancelled
}

// Err returns the cancellation cause, or nil while the session is live.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.cancelled {
		return nil
	}
	return c.cause
}

// Wait blocks until the controller is running or cancelled. It returns nil
// when the session may proceed and the cancellation cause otherwise.
func (c *Controller) Wait(ctx context.Context) error {
	for {
		c.mu.Lock()
		paused := c.paused
		cancelled := c.cancelled
		cause := c.cause
		c.mu.Unlock()

		if cancelled {
			if cause != nil {
				return cause
			}
			return ErrCancelled
		}
		if !paused {
			return nil
		}

		if ctx == nil {
			<-c.signal
			continue
		}

		select {
		case <-ctx.Done():
			c.Cancel(ctx.Err())
			return ctx.Err()
		case <-c.signal:
			continue
		}
	}
}

// State reports the textual state for diagnostics.
func (c *Controller) State() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.cancelled:
		return "cancelled"
	case c.paused:
		return "paused"
	default:
		return "running"
	}
}

func (c *Controller) notify() {
	select {
	case c.signal <- struct{}{}:
	default:
	}
}
