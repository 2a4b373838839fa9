package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings backends.
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
		// PublicURL is the WebSocket address a phone should dial; encoded into /qr.
		PublicURL string `yaml:"publicURL"`
	} `yaml:"server"`
	Settings struct {
		Backend string `yaml:"backend"`
		Path    string `yaml:"path"`
	} `yaml:"settings"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Sound struct {
		AssetDir string `yaml:"assetDir"`
	} `yaml:"sound"`
	Telegram struct {
		Token string `yaml:"token"`
	} `yaml:"telegram"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	cfg := Config{}
	cfg.Server.Port = "8080"
	cfg.Settings.Path = "data/settings.yaml"
	cfg.Redis.TTL = "30m"
	return cfg
}

// Load reads YAML config from path on top of Default.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadOptional is Load, except a missing file yields Default.
func LoadOptional(path string) (Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// SettingsBackend picks the configured backend, or infers one from what is configured.
func (c Config) SettingsBackend() string {
	if c.Settings.Backend != "" {
		return c.Settings.Backend
	}
	switch {
	case c.Postgres.URL != "":
		return BackendPostgres
	case c.Redis.Addr != "":
		return BackendRedis
	default:
		return BackendFile
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
