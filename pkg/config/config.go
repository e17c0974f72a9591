// Package config loads the user-adjustable knobs for recording, playback,
// and scheduling from YAML, layering file values over built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const DefaultFileName = "config.yaml"

// Config captures the user-adjustable knobs for the record and replay
// workflows.
type Config struct {
	Paths    PathsConfig    `yaml:"paths"`
	Record   RecordConfig   `yaml:"record"`
	Playback PlaybackConfig `yaml:"playback"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Logging  LoggingConfig  `yaml:"logging"`

	// Source indicates where the configuration originated (defaults or a file path).
	Source string `yaml:"-"`
}

// PathsConfig controls filesystem locations used by the CLI.
type PathsConfig struct {
	RecordingsDir string `yaml:"recordings_dir"`
}

// RecordConfig tunes a capture session.
type RecordConfig struct {
	ExitKey          string   `yaml:"exit_key"`
	PauseKey         string   `yaml:"pause_key"`
	IgnoredKeys      []string `yaml:"ignored_keys"`
	CountdownSeconds int      `yaml:"countdown_seconds"`
}

// PlaybackConfig tunes a replay session.
type PlaybackConfig struct {
	PauseKey         string  `yaml:"pause_key"`
	CancelKey        string  `yaml:"cancel_key"`
	Speed            float64 `yaml:"speed"`
	ScrollStep       int     `yaml:"scroll_step"`
	FailSafe         bool    `yaml:"fail_safe"`
	CountdownSeconds int     `yaml:"countdown_seconds"`
}

// ScheduleConfig lists the cron timetable for the schedule daemon.
type ScheduleConfig struct {
	Jobs []ScheduledJob `yaml:"jobs"`
}

// ScheduledJob pairs a cron spec with the recording it replays.
type ScheduledJob struct {
	Spec      string `yaml:"spec"`
	Recording string `yaml:"recording"`
}

// MetricsConfig controls the optional Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// LoggingConfig defines log verbosity and formatting.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the baseline configuration used when no overrides are supplied.
func Default() Config {
	return Config{
		Paths: PathsConfig{
			RecordingsDir: "recordings",
		},
		Record: RecordConfig{
			ExitKey:          "esc",
			PauseKey:         "pause",
			CountdownSeconds: 3,
		},
		Playback: PlaybackConfig{
			PauseKey:         "pause",
			CancelKey:        "esc",
			Speed:            1,
			ScrollStep:       120,
			FailSafe:         true,
			CountdownSeconds: 3,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Listen:  ":9090",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Source: "<defaults>",
	}
}

// Load reads configuration from disk if present, otherwise returning defaults.
// When path is empty, the loader attempts to read ./config.yaml but tolerates a missing file.
func Load(path string) (Config, error) {
	cfg := Default()

	candidate := strings.TrimSpace(path)
	explicit := candidate != ""
	if !explicit {
		candidate = DefaultFileName
	}

	file, err := os.Open(candidate)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if explicit {
				return cfg, fmt.Errorf("config file %q not found", candidate)
			}
			return cfg, nil
		}
		return cfg, fmt.Errorf("open config file %q: %w", candidate, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config file %q: %w", candidate, err)
	}
	cfg.Source = candidate
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate ensures essential configuration values are present and sensible.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Paths.RecordingsDir) == "" {
		return errors.New("paths.recordings_dir must not be empty")
	}

	if _, err := NormalizeLogLevel(c.Logging.Level); err != nil {
		return err
	}
	if _, err := NormalizeFormat(c.Logging.Format); err != nil {
		return err
	}

	if strings.TrimSpace(c.Record.ExitKey) == "" {
		return errors.New("record.exit_key must not be empty")
	}
	if strings.TrimSpace(c.Record.PauseKey) == "" {
		return errors.New("record.pause_key must not be empty")
	}
	if c.Record.CountdownSeconds < 0 {
		return errors.New("record.countdown_seconds must not be negative")
	}

	if strings.TrimSpace(c.Playback.PauseKey) == "" {
		return errors.New("playback.pause_key must not be empty")
	}
	if strings.TrimSpace(c.Playback.CancelKey) == "" {
		return errors.New("playback.cancel_key must not be empty")
	}
	if c.Playback.Speed <= 0 {
		return errors.New("playback.speed must be positive")
	}
	if c.Playback.ScrollStep <= 0 {
		return errors.New("playback.scroll_step must be positive")
	}
	if c.Playback.CountdownSeconds < 0 {
		return errors.New("playback.countdown_seconds must not be negative")
	}

	for i, job := range c.Schedule.Jobs {
		if strings.TrimSpace(job.Spec) == "" {
			return fmt.Errorf("schedule.jobs[%d].spec must not be empty", i)
		}
		if strings.TrimSpace(job.Recording) == "" {
			return fmt.Errorf("schedule.jobs[%d].recording must not be empty", i)
		}
	}

	if c.Metrics.Enabled && strings.TrimSpace(c.Metrics.Listen) == "" {
		return errors.New("metrics.listen must not be empty when metrics are enabled")
	}

	return nil
}

func (c *Config) normalize() {
	c.Paths.RecordingsDir = filepath.Clean(strings.TrimSpace(c.Paths.RecordingsDir))

	defaults := Default()

	if c.Paths.RecordingsDir == "." || c.Paths.RecordingsDir == "" {
		c.Paths.RecordingsDir = defaults.Paths.RecordingsDir
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
	}
	if c.Logging.Format == "" {
		c.Logging.Format = defaults.Logging.Format
	}

	if strings.TrimSpace(c.Record.ExitKey) == "" {
		c.Record.ExitKey = defaults.Record.ExitKey
	}
	if strings.TrimSpace(c.Record.PauseKey) == "" {
		c.Record.PauseKey = defaults.Record.PauseKey
	}

	if strings.TrimSpace(c.Playback.PauseKey) == "" {
		c.Playback.PauseKey = defaults.Playback.PauseKey
	}
	if strings.TrimSpace(c.Playback.CancelKey) == "" {
		c.Playback.CancelKey = defaults.Playback.CancelKey
	}
	if c.Playback.Speed == 0 {
		c.Playback.Speed = defaults.Playback.Speed
	}
	if c.Playback.ScrollStep == 0 {
		c.Playback.ScrollStep = defaults.Playback.ScrollStep
	}

	if strings.TrimSpace(c.Metrics.Listen) == "" {
		c.Metrics.Listen = defaults.Metrics.Listen
	}
}

// NormalizeLogLevel validates and lowercases known logging levels.
func NormalizeLogLevel(level string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return "info", nil
	case "debug":
		return "debug", nil
	case "warn", "warning":
		return "warn", nil
	case "error":
		return "error", nil
	default:
		return "", fmt.Errorf("unsupported log level %q", level)
	}
}

// NormalizeFormat validates and canonicalizes logging format identifiers.
func NormalizeFormat(format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		return "json", nil
	case "console", "text":
		return "console", nil
	default:
		return "", fmt.Errorf("unsupported log format %q", format)
	}
}
