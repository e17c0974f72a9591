package timing

import (
	"sync"
	"time"
)

// Stopwatch measures active (non-paused) time between laps. It is the delay
// clock behind recording: each accepted event takes the duration of the lap
// ending at its arrival, so wall time spent paused never inflates a delay.
//
// Readings come from the injected clock (time.Now by default, which carries
// a monotonic reading), so laps never go backward when the system wall clock
// is adjusted.
type Stopwatch struct {
	mu          sync.Mutex
	clock       func() time.Time
	last        time.Time
	paused      bool
	pausedAt    time.Time
	pausedInLap time.Duration
}

// NewStopwatch starts a stopwatch with its first lap beginning now.
func NewStopwatch(clock func() time.Time) *Stopwatch {
	if clock == nil {
		clock = time.Now
	}
	return &Stopwatch{clock: clock, last: clock()}
}

// Lap returns the active duration since the previous lap and starts the next
// lap. Calling Lap while paused measures up to the moment the pause began.
func (s *Stopwatch) Lap() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	if s.paused {
		now = s.pausedAt
	}
	active := now.Sub(s.last) - s.pausedInLap
	if active < 0 {
		active = 0
	}
	s.last = now
	s.pausedInLap = 0
	return active
}

// Pause stops active time from accruing. Pausing twice is a no-op.
func (s *Stopwatch) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paused {
		return
	}
	s.paused = true
	s.pausedAt = s.clock()
}

// Resume restarts active time accrual, folding the pause just ended into the
// excluded portion of the current lap.
func (s *Stopwatch) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.paused {
		return
	}
	s.pausedInLap += s.clock().Sub(s.pausedAt)
	s.paused = false
	s.pausedAt = time.Time{}
}

// Toggle flips the paused state and reports the new state.
func (s *Stopwatch) Toggle() bool {
	s.mu.Lock()
	paused := s.paused
	s.mu.Unlock()
	if paused {
		s.Resume()
		return false
	}
	s.Pause()
	return true
}
