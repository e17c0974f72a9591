package store

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/offlinefirst/replaykit/pkg/event"
	"github.com/offlinefirst/replaykit/pkg/input"
)

// legacyEntry mirrors one record of the old bare-array format: absolute
// session timestamps in fractional seconds and pynput-style key names.
type legacyEntry struct {
	Time   float64   `json:"time"`
	Type   string    `json:"type"`
	Button string    `json:"button"`
	Pos    []float64 `json:"pos"`
	DX     float64   `json:"dx"`
	DY     float64   `json:"dy"`
}

// convertLegacy rewrites a legacy event array into the current model:
// absolute timestamps become millisecond deltas, click entries expand into a
// press/release pair, and key names fold to their canonical form. Exit-key
// presses embedded by the old recorder are dropped.
func convertLegacy(data []byte) (event.Log, error) {
	var entries []legacyEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecording, err)
	}

	log := make(event.Log, 0, len(entries))
	prev := 0.0
	for i, entry := range entries {
		delta := entry.Time - prev
		if delta < 0 {
			return nil, fmt.Errorf("%w: entry %d timestamp moves backwards", ErrInvalidRecording, i)
		}
		delayMS := int64(math.Round(delta * 1000))

		switch entry.Type {
		case "keyDown", "keyUp":
			key := input.NormalizeKey(entry.Button)
			if key == "esc" {
				// The old recorder kept its own exit key in the log.
				continue
			}
			kind := event.KeyDown
			if entry.Type == "keyUp" {
				kind = event.KeyUp
			}
			log = append(log, event.Event{Kind: kind, Key: key, DelayMS: delayMS})
		case "move":
			x, y, err := position(entry, i)
			if err != nil {
				return nil, err
			}
			log = append(log, event.Event{Kind: event.MouseMove, X: x, Y: y, DelayMS: delayMS})
		case "click":
			x, y, err := position(entry, i)
			if err != nil {
				return nil, err
			}
			button := input.NormalizeButton(entry.Button)
			log = append(log,
				event.Event{Kind: event.MouseDown, Button: button, X: x, Y: y, DelayMS: delayMS},
				event.Event{Kind: event.MouseUp, Button: button, X: x, Y: y, DelayMS: 0},
			)
		case "scroll":
			x, y, err := position(entry, i)
			if err != nil {
				return nil, err
			}
			log = append(log, event.Event{
				Kind: event.Scroll,
				X:    x, Y: y,
				DX:      int(math.Round(entry.DX)),
				DY:      int(math.Round(entry.DY)),
				DelayMS: delayMS,
			})
		default:
			return nil, fmt.Errorf("%w: entry %d has unknown type %q", ErrInvalidRecording, i, entry.Type)
		}
		prev = entry.Time
	}
	return log, nil
}

func position(entry legacyEntry, i int) (int, int, error) {
	if len(entry.Pos) != 2 {
		return 0, 0, fmt.Errorf("%w: entry %d missing pointer position", ErrInvalidRecording, i)
	}
	return int(math.Round(entry.Pos[0])), int(math.Round(entry.Pos[1])), nil
}
