package input

import (
	"context"
	"fmt"
	"sync"
)

// Script is a deterministic Source that emits a fixed sequence of
// notifications. It backs engine tests and has no timing of its own; delays
// come from whatever clock the consumer injects.
type Script struct {
	Notifications []Notification
	// BeforeEmit, when set, runs before each notification is emitted. Tests
	// use it to advance fake clocks or flip controller state mid-stream.
	BeforeEmit func(i int, n Notification)
}

// Stream emits the scripted notifications in order.
func (s *Script) Stream(ctx context.Context, emit func(Notification) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	for i, n := range s.Notifications {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.BeforeEmit != nil {
			s.BeforeEmit(i, n)
		}
		if err := emit(n); err != nil {
			return err
		}
	}
	return nil
}

// Journal is a Synthesizer that records the actions it receives instead of
// posting OS input. It backs playback tests and the play --dry-run mode.
type Journal struct {
	mu      sync.Mutex
	actions []string
	x, y    int
}

// NewJournal returns a journal with the pointer parked away from the
// fail-safe corner.
func NewJournal() *Journal {
	return &Journal{x: 1, y: 1}
}

// Actions returns a copy of the recorded action descriptions in order.
func (j *Journal) Actions() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]string, len(j.actions))
	copy(out, j.actions)
	return out
}

func (j *Journal) record(format string, args ...any) {
	j.mu.Lock()
	j.actions = append(j.actions, fmt.Sprintf(format, args...))
	j.mu.Unlock()
}

// MoveTo records a pointer move and updates the tracked position.
func (j *Journal) MoveTo(x, y int) error {
	j.mu.Lock()
	j.x, j.y = x, y
	j.mu.Unlock()
	j.record("move %d,%d", x, y)
	return nil
}

// KeyDown records a key press.
func (j *Journal) KeyDown(key string) error {
	j.record("keydown %s", key)
	return nil
}

// KeyUp records a key release.
func (j *Journal) KeyUp(key string) error {
	j.record("keyup %s", key)
	return nil
}

// ButtonDown records a button press.
func (j *Journal) ButtonDown(button string) error {
	j.record("buttondown %s", button)
	return nil
}

// ButtonUp records a button release.
func (j *Journal) ButtonUp(button string) error {
	j.record("buttonup %s", button)
	return nil
}

// Scroll records a wheel movement.
func (j *Journal) Scroll(dx, dy int) error {
	j.record("scroll %d,%d", dx, dy)
	return nil
}

// Position reports the tracked pointer location.
func (j *Journal) Position() (int, int, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.x, j.y, nil
}

// SetPosition moves the tracked pointer without recording an action, for
// tests that simulate the user dragging the real pointer somewhere.
func (j *Journal) SetPosition(x, y int) {
	j.mu.Lock()
	j.x, j.y = x, y
	j.mu.Unlock()
}
