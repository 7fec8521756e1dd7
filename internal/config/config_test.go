package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := defaults()

	if cfg.Web.Port != 8000 {
		t.Errorf("expected web port 8000, got %d", cfg.Web.Port)
	}
	if cfg.NATS.Port != 4222 {
		t.Errorf("expected nats port 4222, got %d", cfg.NATS.Port)
	}
	if cfg.Store.Path != "data/agentgpt.db" {
		t.Errorf("expected store path data/agentgpt.db, got %s", cfg.Store.Path)
	}
	if cfg.Simulator.MinTaskDelay != 2*time.Second {
		t.Errorf("expected min task delay 2s, got %v", cfg.Simulator.MinTaskDelay)
	}
	if cfg.Simulator.MaxTaskDelay != 5*time.Second {
		t.Errorf("expected max task delay 5s, got %v", cfg.Simulator.MaxTaskDelay)
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	// Point config to a non-existent file so we use defaults
	t.Setenv("AGENTGPT_CONFIG", "/nonexistent/config.yaml")
	t.Setenv("AGENTGPT_WEB_PORT", "9090")
	t.Setenv("AGENTGPT_STORE_PATH", "/tmp/custom.db")
	t.Setenv("AGENTGPT_VAULT_PASSPHRASE", "hunter2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Web.Port != 9090 {
		t.Errorf("expected web port 9090, got %d", cfg.Web.Port)
	}
	if cfg.Store.Path != "/tmp/custom.db" {
		t.Errorf("expected store path /tmp/custom.db, got %s", cfg.Store.Path)
	}
	if cfg.Vault.Passphrase != "hunter2" {
		t.Errorf("expected vault passphrase hunter2, got %s", cfg.Vault.Passphrase)
	}
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	// Durations decode as integer nanoseconds
	yaml := `
web:
  port: 3000
store:
  path: "/custom/agentgpt.db"
simulator:
  min_task_delay: 10000000
  max_task_delay: 50000000
`
	if err := os.WriteFile(cfgPath, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("AGENTGPT_CONFIG", cfgPath)
	t.Setenv("AGENTGPT_WEB_PORT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Web.Port != 3000 {
		t.Errorf("expected web port 3000, got %d", cfg.Web.Port)
	}
	if cfg.Store.Path != "/custom/agentgpt.db" {
		t.Errorf("expected /custom/agentgpt.db, got %s", cfg.Store.Path)
	}
	if cfg.Simulator.MinTaskDelay != 10*time.Millisecond {
		t.Errorf("expected min delay 10ms, got %v", cfg.Simulator.MinTaskDelay)
	}
}

func TestLoadRejectsInvertedDelays(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	yaml := `
simulator:
  min_task_delay: 5000000000
  max_task_delay: 1000000000
`
	if err := os.WriteFile(cfgPath, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("AGENTGPT_CONFIG", cfgPath)

	if _, err := Load(); err == nil {
		t.Error("expected error for min_task_delay > max_task_delay")
	}
}
