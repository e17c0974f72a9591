// Package player replays an event log by issuing synthetic input actions at
// the originally recorded relative timing, with pause/cancel control and a
// fail-safe abort when the pointer reaches the screen corner.
package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/offlinefirst/replaykit/pkg/control"
	"github.com/offlinefirst/replaykit/pkg/event"
	"github.com/offlinefirst/replaykit/pkg/input"
	"github.com/offlinefirst/replaykit/pkg/metrics"
	"github.com/offlinefirst/replaykit/pkg/timing"
)

const (
	// DefaultScrollStep converts one recorded wheel notch into pixels. One
	// notch travels a different distance per system; this matches a common
	// wheel detent.
	DefaultScrollStep = 120

	DefaultPauseKey  = "pause"
	DefaultCancelKey = "esc"
)

// ErrFailSafe is the safety abort raised when the pointer reaches the
// fail-safe corner (0,0), keeping runaway automation stoppable.
var ErrFailSafe = errors.New("fail-safe corner reached, playback aborted")

// ErrInvalidSpeed indicates a non-positive playback speed multiplier.
var ErrInvalidSpeed = errors.New("playback speed multiplier must be positive")

// Outcome classifies how a playback session ended.
type Outcome string

const (
	Completed Outcome = "completed"
	Cancelled Outcome = "cancelled"
	Failed    Outcome = "failed"
)

// Result summarises a playback session.
type Result struct {
	Outcome  Outcome
	Played   int
	Duration time.Duration
}

// Options configure a playback session.
type Options struct {
	// Sink receives the synthetic input actions. Defaults to the system
	// synthesizer.
	Sink input.Synthesizer
	// Signals, when set, feeds the pause/cancel listener concurrently with
	// the playback loop.
	Signals input.Source
	// PauseKey toggles playback; CancelKey aborts it.
	PauseKey  string
	CancelKey string
	// Control carries the session's pause/cancel flags. Reset per session.
	Control *control.Controller
	// Speed scales playback: 2 halves every delay. Defaults to 1.
	Speed float64
	// ScrollStep converts recorded wheel notches to pixels.
	ScrollStep int
	// DisableFailSafe turns off the corner abort. Leave it on.
	DisableFailSafe bool
	// Debounce suppresses accidental double pause toggles. Defaults to
	// control.DefaultDebounce.
	Debounce time.Duration
	Clock    func() time.Time
	Logger   *slog.Logger
}

// Player replays one event log at a time.
type Player struct {
	sink       input.Synthesizer
	signals    input.Source
	pauseKey   string
	cancelKey  string
	ctrl       *control.Controller
	speed      float64
	scrollStep int
	failSafe   bool
	debounce   time.Duration
	clock      func() time.Time
	logger     *slog.Logger
	waiter     timing.Waiter
}

// New validates options and constructs a player.
func New(opts Options) (*Player, error) {
	speed := opts.Speed
	if speed == 0 {
		speed = 1
	}
	if speed < 0 {
		return nil, ErrInvalidSpeed
	}

	pauseKey := input.NormalizeKey(opts.PauseKey)
	if pauseKey == "" {
		pauseKey = DefaultPauseKey
	}
	cancelKey := input.NormalizeKey(opts.CancelKey)
	if cancelKey == "" {
		cancelKey = DefaultCancelKey
	}
	if pauseKey == cancelKey {
		return nil, fmt.Errorf("pause key and cancel key are both %q", pauseKey)
	}

	scrollStep := opts.ScrollStep
	if scrollStep == 0 {
		scrollStep = DefaultScrollStep
	}
	ctrl := opts.Control
	if ctrl == nil {
		ctrl = control.NewController()
	}
	debounce := opts.Debounce
	if debounce == 0 {
		debounce = control.DefaultDebounce
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Player{
		sink:       opts.Sink,
		signals:    opts.Signals,
		pauseKey:   pauseKey,
		cancelKey:  cancelKey,
		ctrl:       ctrl,
		speed:      speed,
		scrollStep: scrollStep,
		failSafe:   !opts.DisableFailSafe,
		debounce:   debounce,
		clock:      clock,
		logger:     logger,
	}, nil
}

// Play replays the log in order. It returns Completed when the log is
// exhausted, Cancelled when the cancel signal fires (nil error) or the
// context ends (ctx error), and Failed with the cause for the fail-safe
// abort or a synthesis error. The log is never mutated.
func (p *Player) Play(ctx context.Context, log event.Log) (Result, error) {
	if err := log.Validate(); err != nil {
		return Result{Outcome: Failed}, fmt.Errorf("invalid event log: %w", err)
	}

	sink := p.sink
	if sink == nil {
		installed, err := input.SystemSynthesizer()
		if err != nil {
			return Result{Outcome: Failed}, fmt.Errorf("install input synthesizer: %w", err)
		}
		sink = installed
	}
	if ctx == nil {
		ctx = context.Background()
	}

	p.ctrl.Reset()
	start := p.clock()
	metrics.SessionsStarted.WithLabelValues("play").Inc()
	p.logger.Info("playback started", "events", len(log), "speed", p.speed)

	stopSignals := p.startSignalListener(ctx)
	defer stopSignals()

	played := 0
	finish := func(outcome Outcome, err error) (Result, error) {
		metrics.PlaybackOutcomes.WithLabelValues(string(outcome)).Inc()
		result := Result{Outcome: outcome, Played: played, Duration: p.clock().Sub(start)}
		p.logger.Info("playback finished", "outcome", outcome, "played", played)
		return result, err
	}

	for _, ev := range log {
		if err := p.waiter.Sleep(ctx, p.scale(ev.Delay()), p.ctrl); err != nil {
			if errors.Is(err, control.ErrCancelled) {
				return finish(Cancelled, nil)
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return finish(Cancelled, err)
			}
			return finish(Failed, err)
		}

		if p.failSafe {
			if err := p.checkFailSafe(sink, ev); err != nil {
				return finish(Failed, err)
			}
		}

		if err := p.synthesize(sink, ev); err != nil {
			return finish(Failed, fmt.Errorf("synthesize %s: %w", ev.Kind, err))
		}
		played++
		metrics.EventsReplayed.Inc()
		p.logger.Debug("event replayed", "kind", ev.Kind, "delay_ms", ev.DelayMS)
	}

	return finish(Completed, nil)
}

func (p *Player) scale(d time.Duration) time.Duration {
	if p.speed == 1 {
		return d
	}
	return time.Duration(float64(d) / p.speed)
}

// checkFailSafe aborts when the event targets the fail-safe corner or the
// real pointer has been dragged there by the user.
func (p *Player) checkFailSafe(sink input.Synthesizer, ev event.Event) error {
	if ev.Kind.IsMouse() && ev.X == 0 && ev.Y == 0 {
		return ErrFailSafe
	}
	x, y, err := sink.Position()
	if err == nil && x == 0 && y == 0 {
		return ErrFailSafe
	}
	return nil
}

func (p *Player) synthesize(sink input.Synthesizer, ev event.Event) error {
	switch ev.Kind {
	case event.KeyDown:
		return sink.KeyDown(ev.Key)
	case event.KeyUp:
		return sink.KeyUp(ev.Key)
	case event.MouseMove:
		return sink.MoveTo(ev.X, ev.Y)
	case event.MouseDown:
		if err := sink.MoveTo(ev.X, ev.Y); err != nil {
			return err
		}
		return sink.ButtonDown(ev.Button)
	case event.MouseUp:
		if err := sink.MoveTo(ev.X, ev.Y); err != nil {
			return err
		}
		return sink.ButtonUp(ev.Button)
	case event.Scroll:
		if err := sink.MoveTo(ev.X, ev.Y); err != nil {
			return err
		}
		return sink.Scroll(ev.DX*p.scrollStep, ev.DY*p.scrollStep)
	}
	return fmt.Errorf("unknown event kind %q", ev.Kind)
}

// startSignalListener streams the signal source concurrently with the
// playback loop, routing pause/cancel key presses into the controller. The
// returned stop function tears the listener down.
func (p *Player) startSignalListener(ctx context.Context) func() {
	if p.signals == nil {
		return func() {}
	}

	listener := &control.Listener{
		PauseKey:  p.pauseKey,
		CancelKey: p.cancelKey,
		Debounce:  p.debounce,
		Clock:     p.clock,
		Logger:    p.logger,
	}

	listenCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		err := p.signals.Stream(listenCtx, func(n input.Notification) error {
			if n.Kind == event.KeyDown {
				listener.Handle(p.ctrl, input.NormalizeKey(n.Key))
			}
			return nil
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			p.logger.Warn("signal listener stopped", "error", err)
		}
	}()

	return func() {
		cancel()
		<-done
	}
}
