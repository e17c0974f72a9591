package control

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultDebounce is how long further pause presses are ignored after a
// toggle, so a key held a beat too long cannot immediately undo itself.
const DefaultDebounce = 3 * time.Second

// Listener translates key-down signals into controller mutations. It holds
// no business logic; the input layer calls Handle for every key press it
// observes and the listener flips the matching flag.
type Listener struct {
	PauseKey  string
	CancelKey string
	// Debounce suppresses repeated pause toggles. Zero means
	// DefaultDebounce; a negative value disables debouncing.
	Debounce time.Duration
	Clock    func() time.Time
	Logger   *slog.Logger

	mu         sync.Mutex
	lastToggle time.Time
}

// Handle routes one key-down signal. It reports whether the key was consumed
// as a control signal.
func (l *Listener) Handle(ctrl *Controller, key string) bool {
	if ctrl == nil || key == "" {
		return false
	}
	clock := l.Clock
	if clock == nil {
		clock = time.Now
	}

	switch key {
	case l.CancelKey:
		ctrl.Cancel(nil)
		if l.Logger != nil {
			l.Logger.Info("cancel signal received", "key", key)
		}
		return true
	case l.PauseKey:
		debounce := l.Debounce
		if debounce == 0 {
			debounce = DefaultDebounce
		}
		if debounce < 0 {
			debounce = 0
		}
		now := clock()
		l.mu.Lock()
		if !l.lastToggle.IsZero() && now.Sub(l.lastToggle) < debounce {
			l.mu.Unlock()
			return true
		}
		l.lastToggle = now
		l.mu.Unlock()

		paused := ctrl.Toggle()
		if l.Logger != nil {
			l.Logger.Info("pause signal received", "key", key, "paused", paused)
		}
		return true
	}
	return false
}
