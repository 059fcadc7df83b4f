package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadAppliesEnvOverYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
server:
  port: "9090"
redis:
  addr: localhost:6379
  ttl: 5m
progression:
  timezone: Europe/Paris
  lives: 4
commit:
  max_attempts: 5
  initial_interval: 20ms
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("REDIS_ADDR", "redis:6380")
	t.Setenv("PROGRESSION_SHUFFLE", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("expected yaml port, got %q", cfg.Server.Port)
	}
	if cfg.Redis.Addr != "redis:6380" {
		t.Fatalf("expected env to override redis addr, got %q", cfg.Redis.Addr)
	}
	if !cfg.Progression.Shuffle || cfg.Progression.Lives != 4 {
		t.Fatalf("unexpected progression %+v", cfg.Progression)
	}
	if cfg.Commit.MaxAttempts != 5 || TTLDuration(cfg.Commit.InitialInterval, 0) != 20*time.Millisecond {
		t.Fatalf("unexpected commit %+v", cfg.Commit)
	}
	if got := cfg.Location().String(); got != "Europe/Paris" {
		t.Fatalf("expected Europe/Paris, got %s", got)
	}
}

func TestLoadWithoutFile(t *testing.T) {
	t.Setenv("POSTGRES_URL", "postgres://localhost/movies")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Postgres.URL != "postgres://localhost/movies" {
		t.Fatalf("expected env postgres url, got %q", cfg.Postgres.URL)
	}
	if cfg.Location() != time.UTC {
		t.Fatalf("expected UTC by default")
	}
}

func TestTTLDuration(t *testing.T) {
	if got := TTLDuration("", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback, got %v", got)
	}
	if got := TTLDuration("bogus", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback on parse error, got %v", got)
	}
	if got := TTLDuration("90s", time.Minute); got != 90*time.Second {
		t.Fatalf("expected 90s, got %v", got)
	}
}

func TestLogLevel(t *testing.T) {
	var cfg Config
	if cfg.LogLevel() != slog.LevelInfo {
		t.Fatalf("expected info by default")
	}
	cfg.Log.Level = "DEBUG"
	if cfg.LogLevel() != slog.LevelDebug {
		t.Fatalf("expected debug")
	}
}
