package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.WorkerCommand == "" || cfg.CachePath == "" {
		t.Fatalf("defaults must include a worker invocation: %+v", cfg)
	}
	if cfg.GracefulWait != 5*time.Second {
		t.Fatalf("graceful wait default = %v, want 5s", cfg.GracefulWait)
	}
	if cfg.TailLines != 20 {
		t.Fatalf("tail lines default = %d, want 20", cfg.TailLines)
	}
}

func TestLoadEmptyPathReturnsDefault(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("empty path should return defaults, got %+v", cfg)
	}
}

func TestLoadTOMLOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "soloproc.toml")
	toml := `
worker_command = "/opt/miner/worker"
cache_path = "/var/cache/worker"
reserved_cores = 2
pidfile = "/run/worker.pid"
output_file = "/var/log/worker.out"
graceful_wait = "2s"
kill_wait = "1s"
run_duration = "30m"
cooldown = "10s"
history_dsn = "sqlite:///var/lib/worker/history.db"

[log]
level = "debug"
color = false
`
	if err := os.WriteFile(path, []byte(toml), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.WorkerCommand != "/opt/miner/worker" || cfg.ReservedCores != 2 {
		t.Fatalf("worker fields not applied: %+v", cfg)
	}
	if cfg.GracefulWait != 2*time.Second || cfg.KillWait != time.Second {
		t.Fatalf("durations not parsed: %v %v", cfg.GracefulWait, cfg.KillWait)
	}
	if cfg.RunDuration != 30*time.Minute || cfg.Cooldown != 10*time.Second {
		t.Fatalf("cycle durations not parsed: %v %v", cfg.RunDuration, cfg.Cooldown)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Color {
		t.Fatalf("log config not applied: %+v", cfg.Log)
	}
	// Unset keys keep defaults.
	if cfg.SettleWait != 3*time.Second {
		t.Fatalf("settle wait should keep default, got %v", cfg.SettleWait)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestNormalized(t *testing.T) {
	c := Config{TailLines: -1, GracefulWait: 0, KillWait: -time.Second, SettleWait: -time.Second}
	n := c.normalized()
	if n.TailLines != 20 || n.GracefulWait != 5*time.Second || n.KillWait != 2*time.Second {
		t.Fatalf("normalization failed: %+v", n)
	}
	if n.SettleWait != 0 {
		t.Fatalf("negative settle wait should clamp to 0, got %v", n.SettleWait)
	}
}
