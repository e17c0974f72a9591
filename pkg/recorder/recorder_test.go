package recorder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/offlinefirst/replaykit/pkg/event"
	"github.com/offlinefirst/replaykit/pkg/input"
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// scripted builds a Script whose notifications each advance the fake clock
// by the paired duration before emission.
func scripted(clock *fakeClock, steps []struct {
	advance time.Duration
	n       input.Notification
}) *input.Script {
	notifications := make([]input.Notification, len(steps))
	advances := make([]time.Duration, len(steps))
	for i, step := range steps {
		notifications[i] = step.n
		advances[i] = step.advance
	}
	return &input.Script{
		Notifications: notifications,
		BeforeEmit: func(i int, _ input.Notification) {
			clock.Advance(advances[i])
		},
	}
}

func TestNewRejectsEqualControlKeys(t *testing.T) {
	if _, err := New(Options{ExitKey: "pause", PauseKey: "pause"}); err == nil {
		t.Fatalf("expected error for identical exit and pause keys")
	}
}

func TestRecordSimpleSequence(t *testing.T) {
	clock := newFakeClock()
	source := scripted(clock, []struct {
		advance time.Duration
		n       input.Notification
	}{
		{0, input.Notification{Kind: event.KeyDown, Key: "a"}},
		{80 * time.Millisecond, input.Notification{Kind: event.KeyUp, Key: "a"}},
		{500 * time.Millisecond, input.Notification{Kind: event.MouseMove, X: 100, Y: 200}},
		{10 * time.Millisecond, input.Notification{Kind: event.KeyDown, Key: "esc"}},
	})

	rec, err := New(Options{Source: source, Clock: clock.Now})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	log, err := rec.Record(context.Background())
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	want := event.Log{
		{Kind: event.KeyDown, Key: "a", DelayMS: 0},
		{Kind: event.KeyUp, Key: "a", DelayMS: 80},
		{Kind: event.MouseMove, X: 100, Y: 200, DelayMS: 500},
	}
	if len(log) != len(want) {
		t.Fatalf("expected %d events, got %d: %+v", len(want), len(log), log)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("event %d = %+v, want %+v", i, log[i], want[i])
		}
	}
}

func TestRecordEmptySessionOnImmediateExit(t *testing.T) {
	clock := newFakeClock()
	source := &input.Script{Notifications: []input.Notification{
		{Kind: event.KeyDown, Key: "esc"},
	}}

	rec, err := New(Options{Source: source, Clock: clock.Now})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	log, err := rec.Record(context.Background())
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if len(log) != 0 {
		t.Fatalf("expected empty log, got %+v", log)
	}
}

func TestRecordIgnoredKeyDelaySpansIgnoredInterval(t *testing.T) {
	clock := newFakeClock()
	source := scripted(clock, []struct {
		advance time.Duration
		n       input.Notification
	}{
		{0, input.Notification{Kind: event.KeyDown, Key: "a"}},
		{200 * time.Millisecond, input.Notification{Kind: event.KeyDown, Key: "f13"}},
		{300 * time.Millisecond, input.Notification{Kind: event.KeyDown, Key: "b"}},
		{0, input.Notification{Kind: event.KeyDown, Key: "esc"}},
	})

	rec, err := New(Options{Source: source, Clock: clock.Now, IgnoredKeys: []string{"f13"}})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	log, err := rec.Record(context.Background())
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	for _, ev := range log {
		if ev.Key == "f13" {
			t.Fatalf("ignored key leaked into log: %+v", log)
		}
	}
	// a-down, b-down, then held-key releases for a and b.
	if log[1].Key != "b" || log[1].DelayMS != 500 {
		t.Fatalf("expected b after full 500ms spanning the ignored key, got %+v", log[1])
	}
}

func TestRecordPauseNeutrality(t *testing.T) {
	clock := newFakeClock()
	source := scripted(clock, []struct {
		advance time.Duration
		n       input.Notification
	}{
		{0, input.Notification{Kind: event.KeyDown, Key: "a"}},
		{0, input.Notification{Kind: event.KeyUp, Key: "a"}},
		{100 * time.Millisecond, input.Notification{Kind: event.KeyDown, Key: "pause"}},
		// Paused for 10 seconds; this move must be discarded.
		{10 * time.Second, input.Notification{Kind: event.MouseMove, X: 5, Y: 5}},
		{0, input.Notification{Kind: event.KeyDown, Key: "pause"}},
		{250 * time.Millisecond, input.Notification{Kind: event.KeyDown, Key: "b"}},
		{0, input.Notification{Kind: event.KeyUp, Key: "b"}},
		{0, input.Notification{Kind: event.KeyDown, Key: "esc"}},
	})

	rec, err := New(Options{Source: source, Clock: clock.Now})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	log, err := rec.Record(context.Background())
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	kinds := log.Kinds()
	want := []event.Kind{event.KeyDown, event.KeyUp, event.KeyDown, event.KeyUp}
	if len(kinds) != len(want) {
		t.Fatalf("expected %d events, got %+v", len(want), log)
	}
	for _, ev := range log {
		if ev.Kind == event.MouseMove {
			t.Fatalf("event captured while paused: %+v", ev)
		}
	}
	// 100ms before the pause plus 250ms after resume; the 10s pause is gone.
	if log[2].Key != "b" || log[2].DelayMS != 350 {
		t.Fatalf("paused time leaked into delay: %+v", log[2])
	}
}

func TestRecordPauseKeyAutoRepeatDebounced(t *testing.T) {
	clock := newFakeClock()
	source := scripted(clock, []struct {
		advance time.Duration
		n       input.Notification
	}{
		{0, input.Notification{Kind: event.KeyDown, Key: "a"}},
		{0, input.Notification{Kind: event.KeyUp, Key: "a"}},
		{100 * time.Millisecond, input.Notification{Kind: event.KeyDown, Key: "pause"}},
		// Auto-repeat of the held pause key; must not resume capture.
		{50 * time.Millisecond, input.Notification{Kind: event.KeyDown, Key: "pause"}},
		{10 * time.Second, input.Notification{Kind: event.KeyDown, Key: "b"}},
		{0, input.Notification{Kind: event.KeyDown, Key: "pause"}},
		{200 * time.Millisecond, input.Notification{Kind: event.KeyDown, Key: "c"}},
		{0, input.Notification{Kind: event.KeyUp, Key: "c"}},
		{0, input.Notification{Kind: event.KeyDown, Key: "esc"}},
	})

	rec, err := New(Options{Source: source, Clock: clock.Now})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	log, err := rec.Record(context.Background())
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	for _, ev := range log {
		if ev.Key == "b" {
			t.Fatalf("repeated pause press resumed capture: %+v", log)
		}
	}
	// 100ms before the pause plus 200ms after the real resume.
	if len(log) != 4 || log[2].Key != "c" || log[2].DelayMS != 300 {
		t.Fatalf("unexpected log after debounced toggles: %+v", log)
	}
}

func TestRecordSuppressesAutoRepeat(t *testing.T) {
	clock := newFakeClock()
	source := scripted(clock, []struct {
		advance time.Duration
		n       input.Notification
	}{
		{0, input.Notification{Kind: event.KeyDown, Key: "a"}},
		{30 * time.Millisecond, input.Notification{Kind: event.KeyDown, Key: "a"}},
		{30 * time.Millisecond, input.Notification{Kind: event.KeyDown, Key: "a"}},
		{30 * time.Millisecond, input.Notification{Kind: event.KeyUp, Key: "a"}},
		{0, input.Notification{Kind: event.KeyDown, Key: "esc"}},
	})

	rec, err := New(Options{Source: source, Clock: clock.Now})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	log, err := rec.Record(context.Background())
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if len(log) != 2 {
		t.Fatalf("expected press and release only, got %+v", log)
	}
	// The release delay spans the swallowed repeats.
	if log[1].Kind != event.KeyUp || log[1].DelayMS != 90 {
		t.Fatalf("unexpected release event: %+v", log[1])
	}
}

func TestRecordReleasesHeldKeysAtExit(t *testing.T) {
	clock := newFakeClock()
	source := scripted(clock, []struct {
		advance time.Duration
		n       input.Notification
	}{
		{0, input.Notification{Kind: event.KeyDown, Key: "shift"}},
		{50 * time.Millisecond, input.Notification{Kind: event.KeyDown, Key: "a"}},
		{20 * time.Millisecond, input.Notification{Kind: event.KeyDown, Key: "esc"}},
	})

	rec, err := New(Options{Source: source, Clock: clock.Now})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	log, err := rec.Record(context.Background())
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	if len(log) != 4 {
		t.Fatalf("expected 2 presses and 2 synthetic releases, got %+v", log)
	}
	if log[2].Kind != event.KeyUp || log[2].Key != "a" || log[2].DelayMS != 20 {
		t.Fatalf("unexpected first release: %+v", log[2])
	}
	if log[3].Kind != event.KeyUp || log[3].Key != "shift" || log[3].DelayMS != 0 {
		t.Fatalf("unexpected second release: %+v", log[3])
	}
	if err := log.Validate(); err != nil {
		t.Fatalf("cleanup produced invalid log: %v", err)
	}
}

func TestRecordMouseClickAndScrollPayloads(t *testing.T) {
	clock := newFakeClock()
	source := scripted(clock, []struct {
		advance time.Duration
		n       input.Notification
	}{
		{0, input.Notification{Kind: event.MouseDown, Button: "right", X: 40, Y: 50}},
		{60 * time.Millisecond, input.Notification{Kind: event.MouseUp, Button: "right", X: 40, Y: 50}},
		{40 * time.Millisecond, input.Notification{Kind: event.Scroll, X: 40, Y: 50, DX: 0, DY: -2}},
		{0, input.Notification{Kind: event.KeyDown, Key: "esc"}},
	})

	rec, err := New(Options{Source: source, Clock: clock.Now})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	log, err := rec.Record(context.Background())
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	want := event.Log{
		{Kind: event.MouseDown, Button: "right", X: 40, Y: 50, DelayMS: 0},
		{Kind: event.MouseUp, Button: "right", X: 40, Y: 50, DelayMS: 60},
		{Kind: event.Scroll, X: 40, Y: 50, DY: -2, DelayMS: 40},
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("event %d = %+v, want %+v", i, log[i], want[i])
		}
	}
}

func TestRecordSurfacesHookFailure(t *testing.T) {
	hookErr := errors.New("tap refused")
	failing := input.SourceFunc(func(ctx context.Context, emit func(input.Notification) error) error {
		return hookErr
	})

	rec, err := New(Options{Source: failing})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	log, err := rec.Record(context.Background())
	if !errors.Is(err, hookErr) {
		t.Fatalf("expected hook error, got %v", err)
	}
	if log != nil {
		t.Fatalf("expected no partial log, got %+v", log)
	}
}
