package event

import (
	"fmt"
	"time"
)

// Kind identifies the type of a captured input event.
type Kind string

const (
	KeyDown   Kind = "key_down"
	KeyUp     Kind = "key_up"
	MouseMove Kind = "mouse_move"
	MouseDown Kind = "mouse_down"
	MouseUp   Kind = "mouse_up"
	Scroll    Kind = "scroll"
)

// Valid reports whether the kind is one of the recognised event kinds.
func (k Kind) Valid() bool {
	switch k {
	case KeyDown, KeyUp, MouseMove, MouseDown, MouseUp, Scroll:
		return true
	}
	return false
}

// IsKey reports whether the kind carries a key payload.
func (k Kind) IsKey() bool {
	return k == KeyDown || k == KeyUp
}

// IsMouse reports whether the kind carries screen coordinates.
func (k Kind) IsMouse() bool {
	return k == MouseMove || k == MouseDown || k == MouseUp || k == Scroll
}

// Event is one captured input action together with the delay since the
// previous accepted event. The first event of a session measures its delay
// from recording start.
//
// Delays are persisted as integer milliseconds; that resolution is the
// documented precision bound of the recording format.
type Event struct {
	Kind    Kind   `json:"kind"`
	Key     string `json:"key,omitempty"`
	Button  string `json:"button,omitempty"`
	X       int    `json:"x,omitempty"`
	Y       int    `json:"y,omitempty"`
	DX      int    `json:"dx,omitempty"`
	DY      int    `json:"dy,omitempty"`
	DelayMS int64  `json:"delay_ms"`
}

// Delay returns the inter-event delay as a duration.
func (e Event) Delay() time.Duration {
	return time.Duration(e.DelayMS) * time.Millisecond
}

// Validate checks the single-event invariants.
func (e Event) Validate() error {
	if !e.Kind.Valid() {
		return fmt.Errorf("unknown event kind %q", e.Kind)
	}
	if e.DelayMS < 0 {
		return fmt.Errorf("negative delay %dms on %s event", e.DelayMS, e.Kind)
	}
	if e.Kind.IsKey() && e.Key == "" {
		return fmt.Errorf("%s event missing key", e.Kind)
	}
	if (e.Kind == MouseDown || e.Kind == MouseUp) && e.Button == "" {
		return fmt.Errorf("%s event missing button", e.Kind)
	}
	return nil
}

// Log is the ordered sequence of events for one recording session.
// Insertion order is temporal capture order and also replay order.
type Log []Event

// Validate rejects logs that violate the data-model invariants.
func (l Log) Validate() error {
	for i, ev := range l {
		if err := ev.Validate(); err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
	}
	return nil
}

// Duration returns the sum of all inter-event delays.
func (l Log) Duration() time.Duration {
	var total int64
	for _, ev := range l {
		total += ev.DelayMS
	}
	return time.Duration(total) * time.Millisecond
}

// Kinds returns the event kinds in capture order.
func (l Log) Kinds() []Kind {
	kinds := make([]Kind, len(l))
	for i, ev := range l {
		kinds[i] = ev.Kind
	}
	return kinds
}
