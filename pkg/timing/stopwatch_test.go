package timing

import (
	"testing"
	"time"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestStopwatchLapMeasuresSinceLastLap(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)}
	sw := NewStopwatch(clock.Now)

	clock.Advance(500 * time.Millisecond)
	if got := sw.Lap(); got != 500*time.Millisecond {
		t.Fatalf("expected 500ms lap, got %v", got)
	}

	clock.Advance(80 * time.Millisecond)
	if got := sw.Lap(); got != 80*time.Millisecond {
		t.Fatalf("expected 80ms lap, got %v", got)
	}
}

func TestStopwatchExcludesPausedTime(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)}
	sw := NewStopwatch(clock.Now)

	clock.Advance(100 * time.Millisecond)
	sw.Pause()
	clock.Advance(10 * time.Second)
	sw.Resume()
	clock.Advance(200 * time.Millisecond)

	if got := sw.Lap(); got != 300*time.Millisecond {
		t.Fatalf("expected paused time to be excluded, got %v", got)
	}
}

func TestStopwatchLapWhilePausedStopsAtPauseStart(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)}
	sw := NewStopwatch(clock.Now)

	clock.Advance(250 * time.Millisecond)
	sw.Pause()
	clock.Advance(5 * time.Second)

	if got := sw.Lap(); got != 250*time.Millisecond {
		t.Fatalf("expected lap to stop at pause start, got %v", got)
	}

	// Resume mid-pause; only post-resume time counts toward the next lap.
	clock.Advance(time.Second)
	sw.Resume()
	clock.Advance(40 * time.Millisecond)
	if got := sw.Lap(); got != 40*time.Millisecond {
		t.Fatalf("expected 40ms after resume, got %v", got)
	}
}

func TestStopwatchToggle(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)}
	sw := NewStopwatch(clock.Now)

	if !sw.Toggle() {
		t.Fatalf("first toggle should pause")
	}
	if sw.Toggle() {
		t.Fatalf("second toggle should resume")
	}
}
