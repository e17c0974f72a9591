package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	defer os.Chdir(cwd)

	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir temp dir: %v", err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.RecordingsDir != "recordings" {
		t.Fatalf("expected default recordings dir, got %q", cfg.Paths.RecordingsDir)
	}
	if cfg.Source != "<defaults>" {
		t.Fatalf("expected default source marker, got %q", cfg.Source)
	}
	if cfg.Record.ExitKey != "esc" || cfg.Record.PauseKey != "pause" {
		t.Fatalf("unexpected default record keys: %+v", cfg.Record)
	}
	if cfg.Playback.Speed != 1 || cfg.Playback.ScrollStep != 120 {
		t.Fatalf("unexpected default playback tuning: %+v", cfg.Playback)
	}
	if !cfg.Playback.FailSafe {
		t.Fatalf("expected fail-safe enabled by default")
	}
	if cfg.Metrics.Enabled {
		t.Fatalf("expected metrics disabled by default")
	}
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for explicitly named missing file")
	}
}

func TestLoadFromFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	content := `paths:
  recordings_dir: macros
record:
  exit_key: f12
  pause_key: scrolllock
  ignored_keys:
    - f13
    - f14
  countdown_seconds: 5
playback:
  pause_key: scrolllock
  cancel_key: f12
  speed: 2.5
  scroll_step: 40
  fail_safe: false
  countdown_seconds: 0
schedule:
  jobs:
    - spec: "*/5 * * * *"
      recording: morning_routine
metrics:
  enabled: true
  listen: 127.0.0.1:9101
logging:
  level: DEBUG
  format: console
`

	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Paths.RecordingsDir != "macros" {
		t.Fatalf("unexpected recordings dir: %q", cfg.Paths.RecordingsDir)
	}
	if cfg.Record.ExitKey != "f12" || cfg.Record.PauseKey != "scrolllock" {
		t.Fatalf("unexpected record keys: %+v", cfg.Record)
	}
	if len(cfg.Record.IgnoredKeys) != 2 {
		t.Fatalf("unexpected ignored keys: %v", cfg.Record.IgnoredKeys)
	}
	if cfg.Record.CountdownSeconds != 5 {
		t.Fatalf("unexpected record countdown: %d", cfg.Record.CountdownSeconds)
	}
	if cfg.Playback.Speed != 2.5 || cfg.Playback.ScrollStep != 40 {
		t.Fatalf("unexpected playback tuning: %+v", cfg.Playback)
	}
	if cfg.Playback.FailSafe {
		t.Fatalf("expected fail-safe disabled")
	}
	if cfg.Playback.CountdownSeconds != 0 {
		t.Fatalf("unexpected playback countdown: %d", cfg.Playback.CountdownSeconds)
	}
	if len(cfg.Schedule.Jobs) != 1 || cfg.Schedule.Jobs[0].Recording != "morning_routine" {
		t.Fatalf("unexpected schedule: %+v", cfg.Schedule)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Listen != "127.0.0.1:9101" {
		t.Fatalf("unexpected metrics config: %+v", cfg.Metrics)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected log level: %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("unexpected log format: %q", cfg.Logging.Format)
	}
	if cfg.Source != cfgPath {
		t.Fatalf("expected source to equal path, got %q", cfg.Source)
	}
}

func TestUnknownKeyReturnsError(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	content := "record:\n  unsupported: true\n"

	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(cfgPath); err == nil {
		t.Fatalf("expected error for unsupported key")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty recordings dir", func(c *Config) { c.Paths.RecordingsDir = " " }},
		{"negative speed", func(c *Config) { c.Playback.Speed = -1 }},
		{"zero scroll step", func(c *Config) { c.Playback.ScrollStep = 0 }},
		{"empty exit key", func(c *Config) { c.Record.ExitKey = "" }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
		{"job without spec", func(c *Config) {
			c.Schedule.Jobs = []ScheduledJob{{Recording: "demo"}}
		}},
		{"metrics without listen", func(c *Config) {
			c.Metrics.Enabled = true
			c.Metrics.Listen = ""
		}},
	}
	for _, tc := range cases {
		cfg := Default()
		tc.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}
