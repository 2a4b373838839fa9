package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
server:
  port: "9090"
redis:
  addr: localhost:6379
sound:
  assetDir: assets/sounds
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Redis.Addr != "localhost:6379" || cfg.Sound.AssetDir != "assets/sounds" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Settings.Path != "data/settings.yaml" || cfg.Redis.TTL != "30m" {
		t.Fatalf("expected defaults kept, got %+v", cfg)
	}
	if cfg.SettingsBackend() != BackendRedis {
		t.Fatalf("expected redis inferred from addr, got %s", cfg.SettingsBackend())
	}
}

func TestLoadOptionalMissingFile(t *testing.T) {
	cfg, err := LoadOptional(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load optional: %v", err)
	}
	if cfg.Server.Port != "8080" || cfg.SettingsBackend() != BackendFile {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestSettingsBackendInference(t *testing.T) {
	cfg := Config{}
	cfg.Redis.Addr = "localhost:6379"
	if got := cfg.SettingsBackend(); got != BackendRedis {
		t.Fatalf("expected redis, got %s", got)
	}
	cfg.Postgres.URL = "postgres://localhost/quiz"
	if got := cfg.SettingsBackend(); got != BackendPostgres {
		t.Fatalf("expected postgres, got %s", got)
	}
}

func TestTTLDuration(t *testing.T) {
	if got := TTLDuration("", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback, got %v", got)
	}
	if got := TTLDuration("bogus", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback for bad input, got %v", got)
	}
	if got := TTLDuration("90s", time.Minute); got != 90*time.Second {
		t.Fatalf("expected 90s, got %v", got)
	}
}
