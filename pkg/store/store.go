// Package store persists recordings as schema-versioned JSON files and loads
// them back with full invariant validation. It also understands the legacy
// bare-array format produced by the original recorder.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/offlinefirst/replaykit/pkg/event"
)

// SchemaVersion captures the recording format version for compatibility
// checks.
const SchemaVersion = 1

// DefaultDirName is the recordings directory created next to the working
// directory when no path is configured.
const DefaultDirName = "recordings"

// ErrInvalidRecording indicates a malformed recording file or one whose
// event log violates the data-model invariants. Such files are rejected,
// never coerced.
var ErrInvalidRecording = errors.New("invalid recording")

// Recording wraps one session's event log with identity and provenance. The
// events array is the replay contract: order in the list is replay order and
// delays are integer milliseconds.
type Recording struct {
	SchemaVersion int       `json:"schema_version"`
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	CreatedAt     time.Time `json:"created_at"`
	Events        event.Log `json:"events"`
}

// New wraps an event log in a fresh recording envelope.
func New(name string, events event.Log, now time.Time) Recording {
	return Recording{
		SchemaVersion: SchemaVersion,
		ID:            uuid.NewString(),
		Name:          name,
		CreatedAt:     now.UTC(),
		Events:        events,
	}
}

// Validate checks the envelope and every contained event.
func (r Recording) Validate() error {
	if r.SchemaVersion != SchemaVersion {
		return fmt.Errorf("%w: unsupported schema version %d", ErrInvalidRecording, r.SchemaVersion)
	}
	if err := r.Events.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecording, err)
	}
	return nil
}

// Save writes the recording into dir, creating the directory if needed, and
// returns the file path. Sanitizing the name can make distinct recordings
// collide on the same file, so an existing file is never overwritten; the
// new recording gets an ID suffix instead.
func Save(dir string, rec Recording) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", errors.New("recordings directory must not be empty")
	}
	if err := rec.Validate(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure recordings directory: %w", err)
	}

	base := fileName(rec)
	path := filepath.Join(dir, base+".json")
	if _, err := os.Stat(path); err == nil {
		suffix := rec.ID
		if len(suffix) > 8 {
			suffix = suffix[:8]
		}
		path = filepath.Join(dir, base+"_"+suffix+".json")
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("recording file %s already exists", path)
		}
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal recording: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write recording: %w", err)
	}
	return path, nil
}

// Load reads a recording file, converting legacy bare-array files on the
// fly, and rejects anything violating the format contract.
func Load(path string) (Recording, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Recording{}, fmt.Errorf("read recording: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		events, err := convertLegacy(trimmed)
		if err != nil {
			return Recording{}, err
		}
		rec := Recording{
			SchemaVersion: SchemaVersion,
			Name:          baseName(path),
			Events:        events,
		}
		return rec, rec.Validate()
	}

	var rec Recording
	if err := json.Unmarshal(trimmed, &rec); err != nil {
		return Recording{}, fmt.Errorf("%w: %v", ErrInvalidRecording, err)
	}
	if err := rec.Validate(); err != nil {
		return Recording{}, err
	}
	return rec, nil
}

// Info summarises one stored recording for listings.
type Info struct {
	Path      string
	Name      string
	CreatedAt time.Time
	Events    int
	Duration  time.Duration
}

// List scans dir for recording files, oldest first. Unreadable or invalid
// files are skipped rather than failing the whole listing.
func List(dir string) ([]Info, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read recordings directory: %w", err)
	}

	infos := make([]Info, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		rec, err := Load(path)
		if err != nil {
			continue
		}
		infos = append(infos, Info{
			Path:      path,
			Name:      rec.Name,
			CreatedAt: rec.CreatedAt,
			Events:    len(rec.Events),
			Duration:  rec.Events.Duration(),
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].CreatedAt.Before(infos[j].CreatedAt)
	})
	return infos, nil
}

func fileName(rec Recording) string {
	name := strings.TrimSpace(rec.Name)
	if name == "" {
		name = rec.ID
	}
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ':
			return '_'
		default:
			return -1
		}
	}, name)
	if name == "" {
		name = rec.ID
	}
	return name
}

func baseName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
