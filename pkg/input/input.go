// Package input abstracts the OS input boundary: a Source streams raw global
// keyboard/mouse notifications (macOS Quartz event tap, with Accessibility
// approval) and a Synthesizer posts synthetic input back to the OS. Both have
// deterministic fakes so the recording and playback engines are testable
// without touching real input devices.
package input

import (
	"context"
	"errors"

	"github.com/offlinefirst/replaykit/pkg/event"
)

// ErrHookInstall indicates the OS denied global input hook registration, or
// that the platform does not support it.
var ErrHookInstall = errors.New("global input hook installation failed")

// ErrAccessibilityPermission indicates the host must grant Accessibility
// trust before events can be observed or posted.
var ErrAccessibilityPermission = errors.New("macOS accessibility permission required for input capture")

// Notification is one raw hardware notification before any recording policy
// (ignore list, control keys, pause state) has been applied.
type Notification struct {
	Kind   event.Kind
	Key    string
	Button string
	X, Y   int
	DX, DY int
}

// Source emits raw input notifications for the duration of a Stream call.
// The hook is installed when Stream begins and is torn down on every return
// path. Returning an error from emit stops the stream; that error is
// surfaced by Stream unless it is the caller's own stop sentinel.
type Source interface {
	Stream(ctx context.Context, emit func(Notification) error) error
}

// SourceFunc adapts a function literal to the Source interface.
type SourceFunc func(ctx context.Context, emit func(Notification) error) error

// Stream calls the underlying function.
func (f SourceFunc) Stream(ctx context.Context, emit func(Notification) error) error {
	return f(ctx, emit)
}

// Synthesizer posts synthetic input actions, one capability per action kind,
// indistinguishable at the OS level from real input.
type Synthesizer interface {
	MoveTo(x, y int) error
	KeyDown(key string) error
	KeyUp(key string) error
	ButtonDown(button string) error
	ButtonUp(button string) error
	// Scroll posts dx horizontal and dy vertical wheel units.
	Scroll(dx, dy int) error
	// Position reports the current on-screen pointer location.
	Position() (x, y int, err error)
}
