package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `database:
  path: /tmp/test-dispatch.db
engine:
  strict_skills: true
  event_buffer: 64
log:
  debug_path: /tmp/dispatch-debug.log
watch:
  inbox: /tmp/inbox
  sweep_interval: 30s
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}

	if cfg.Database.Path != "/tmp/test-dispatch.db" {
		t.Errorf("database.path = %q", cfg.Database.Path)
	}
	if !cfg.Engine.StrictSkills {
		t.Error("engine.strict_skills should be true")
	}
	if cfg.Engine.EventBuffer != 64 {
		t.Errorf("engine.event_buffer = %d, want 64", cfg.Engine.EventBuffer)
	}
	if cfg.Log.DebugPath != "/tmp/dispatch-debug.log" {
		t.Errorf("log.debug_path = %q", cfg.Log.DebugPath)
	}
	if cfg.Watch.Inbox != "/tmp/inbox" {
		t.Errorf("watch.inbox = %q", cfg.Watch.Inbox)
	}
	if cfg.Watch.SweepInterval != 30*time.Second {
		t.Errorf("watch.sweep_interval = %v, want 30s", cfg.Watch.SweepInterval)
	}
}

func TestLoadFromPathDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("database:\n  path: /tmp/only.db\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}

	// Unset keys fall back to defaults.
	if cfg.Engine.StrictSkills {
		t.Error("strict_skills should default to false")
	}
	if cfg.Engine.EventBuffer != 0 {
		t.Errorf("event_buffer = %d, want 0", cfg.Engine.EventBuffer)
	}
	if cfg.Watch.SweepInterval != time.Minute {
		t.Errorf("sweep_interval = %v, want 1m", cfg.Watch.SweepInterval)
	}
}

func TestLoadFromPathExpandsEnv(t *testing.T) {
	t.Setenv("DISPATCH_TEST_DIR", "/var/data")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("database:\n  path: ${DISPATCH_TEST_DIR}/dispatch.db\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Database.Path != "/var/data/dispatch.db" {
		t.Errorf("database.path = %q, want env-expanded path", cfg.Database.Path)
	}
}

func TestLoadFromPathMissingFile(t *testing.T) {
	if _, err := LoadFromPath(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected an error for a missing config file")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Database.Path == "" {
		t.Error("default database path should not be empty")
	}
	if cfg.Watch.SweepInterval != time.Minute {
		t.Errorf("sweep_interval = %v, want 1m", cfg.Watch.SweepInterval)
	}
}

func TestLoadHonorsEnvOverride(t *testing.T) {
	t.Setenv("DISPATCH_DB", "/tmp/env-override.db")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Path != "/tmp/env-override.db" {
		t.Errorf("database.path = %q, want DISPATCH_DB override", cfg.Database.Path)
	}
}
