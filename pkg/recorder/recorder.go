// Package recorder turns the global input stream into an ordered event log
// with inter-event delays, applying the ignore-list, exit-key, and pause-key
// policy as notifications arrive.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/offlinefirst/replaykit/pkg/control"
	"github.com/offlinefirst/replaykit/pkg/event"
	"github.com/offlinefirst/replaykit/pkg/input"
	"github.com/offlinefirst/replaykit/pkg/metrics"
	"github.com/offlinefirst/replaykit/pkg/timing"
)

const (
	DefaultExitKey  = "esc"
	DefaultPauseKey = "pause"
)

// errStopCapture is the stream stop sentinel raised when the exit key is
// observed or the controller is cancelled.
var errStopCapture = errors.New("capture stopped")

// Options configure a recording session.
type Options struct {
	// IgnoredKeys are dropped silently; the delay measured for the next
	// accepted event spans across the ignored one.
	IgnoredKeys []string
	// ExitKey ends the session. It is never appended to the log.
	ExitKey string
	// PauseKey toggles capture. It is never appended to the log.
	PauseKey string
	// Source supplies raw notifications. Defaults to the system hook.
	Source input.Source
	// Control carries the session's pause/cancel flags. Reset per session.
	Control *control.Controller
	Clock   func() time.Time
	Logger  *slog.Logger
}

// Recorder captures one session at a time.
type Recorder struct {
	ignored  map[string]struct{}
	exitKey  string
	pauseKey string
	source   input.Source
	ctrl     *control.Controller
	clock    func() time.Time
	logger   *slog.Logger
}

// New validates options and constructs a recorder.
func New(opts Options) (*Recorder, error) {
	exitKey := input.NormalizeKey(opts.ExitKey)
	if exitKey == "" {
		exitKey = DefaultExitKey
	}
	pauseKey := input.NormalizeKey(opts.PauseKey)
	if pauseKey == "" {
		pauseKey = DefaultPauseKey
	}
	if exitKey == pauseKey {
		return nil, fmt.Errorf("exit key and pause key are both %q", exitKey)
	}

	ctrl := opts.Control
	if ctrl == nil {
		ctrl = control.NewController()
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Recorder{
		ignored:  input.KeySet(opts.IgnoredKeys),
		exitKey:  exitKey,
		pauseKey: pauseKey,
		source:   opts.Source,
		ctrl:     ctrl,
		clock:    clock,
		logger:   logger,
	}, nil
}

// Record subscribes to the input stream and accumulates events until the
// exit key is pressed. On hook installation failure the error is returned
// and no partial log is retained. The returned log is owned by the caller.
func (r *Recorder) Record(ctx context.Context) (event.Log, error) {
	source := r.source
	if source == nil {
		installed, err := input.SystemSource()
		if err != nil {
			return nil, fmt.Errorf("install input hook: %w", err)
		}
		source = installed
	}

	r.ctrl.Reset()
	watch := timing.NewStopwatch(r.clock)
	pressed := make(map[string]bool)
	log := event.Log{}
	var lastToggle time.Time

	metrics.SessionsStarted.WithLabelValues("record").Inc()
	r.logger.Info("recording started", "exit_key", r.exitKey, "pause_key", r.pauseKey, "ignored_keys", len(r.ignored))

	streamErr := source.Stream(ctx, func(n input.Notification) error {
		if r.ctrl.Cancelled() {
			return errStopCapture
		}

		if n.Kind.IsKey() {
			key := input.NormalizeKey(n.Key)
			switch key {
			case r.pauseKey:
				if n.Kind == event.KeyDown {
					// A held pause key auto-repeats; debounce the toggle.
					now := r.clock()
					if !lastToggle.IsZero() && now.Sub(lastToggle) < control.DefaultDebounce {
						return nil
					}
					lastToggle = now
					paused := r.ctrl.Toggle()
					if paused {
						watch.Pause()
					} else {
						watch.Resume()
					}
					r.logger.Info("recording pause toggled", "paused", paused)
				}
				return nil
			case r.exitKey:
				if n.Kind == event.KeyDown {
					return errStopCapture
				}
				return nil
			}

			if r.ctrl.Paused() {
				return nil
			}
			if _, drop := r.ignored[key]; drop {
				return nil
			}
			if n.Kind == event.KeyDown {
				// OS auto-repeat for a key already held down.
				if pressed[key] {
					return nil
				}
				pressed[key] = true
			} else {
				delete(pressed, key)
			}

			ev := event.Event{Kind: n.Kind, Key: key, DelayMS: watch.Lap().Milliseconds()}
			log = append(log, ev)
			metrics.EventsRecorded.Inc()
			r.logger.Debug("event captured", "kind", ev.Kind, "key", ev.Key, "delay_ms", ev.DelayMS)
			return nil
		}

		if r.ctrl.Paused() {
			return nil
		}

		ev := event.Event{Kind: n.Kind, X: n.X, Y: n.Y, DelayMS: watch.Lap().Milliseconds()}
		switch n.Kind {
		case event.MouseDown, event.MouseUp:
			ev.Button = input.NormalizeButton(n.Button)
		case event.Scroll:
			ev.DX, ev.DY = n.DX, n.DY
		}
		log = append(log, ev)
		metrics.EventsRecorded.Inc()
		r.logger.Debug("event captured", "kind", ev.Kind, "x", ev.X, "y", ev.Y, "delay_ms", ev.DelayMS)
		return nil
	})

	if streamErr != nil && !errors.Is(streamErr, errStopCapture) {
		return nil, fmt.Errorf("capture stream: %w", streamErr)
	}

	log = append(log, releaseHeld(pressed, watch)...)

	r.logger.Info("recording finished", "events", len(log), "duration", log.Duration())
	return log, nil
}

// releaseHeld appends key-up events for keys still held at exit so the log
// never ends with phantom held keys.
func releaseHeld(pressed map[string]bool, watch *timing.Stopwatch) event.Log {
	if len(pressed) == 0 {
		return nil
	}
	keys := make([]string, 0, len(pressed))
	for key := range pressed {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	releases := make(event.Log, 0, len(keys))
	delay := watch.Lap().Milliseconds()
	for _, key := range keys {
		releases = append(releases, event.Event{Kind: event.KeyUp, Key: key, DelayMS: delay})
		delay = 0
	}
	return releases
}
