package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port" env:"PORT"`
	} `yaml:"server"`
	Log struct {
		Level string `yaml:"level" env:"LOG_LEVEL"`
	} `yaml:"log"`
	Redis struct {
		Addr     string `yaml:"addr" env:"REDIS_ADDR"`
		Password string `yaml:"password" env:"REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"REDIS_DB"`
		TTL      string `yaml:"ttl" env:"REDIS_TTL"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url" env:"POSTGRES_URL"`
	} `yaml:"postgres"`
	SQLite struct {
		Path string `yaml:"path" env:"SQLITE_PATH"`
	} `yaml:"sqlite"`
	Content struct {
		TTL  string `yaml:"ttl" env:"CONTENT_TTL"`
		File string `yaml:"file" env:"CONTENT_FILE"`
	} `yaml:"content"`
	Progression struct {
		Timezone string `yaml:"timezone" env:"PROGRESSION_TIMEZONE"`
		Lives    int    `yaml:"lives" env:"PROGRESSION_LIVES"`
		Shuffle  bool   `yaml:"shuffle" env:"PROGRESSION_SHUFFLE"`
	} `yaml:"progression"`
	Commit struct {
		MaxAttempts     int    `yaml:"max_attempts" env:"COMMIT_MAX_ATTEMPTS"`
		InitialInterval string `yaml:"initial_interval" env:"COMMIT_INITIAL_INTERVAL"`
	} `yaml:"commit"`
}

// Load reads YAML config from path, then applies .env and environment
// overrides. A missing file is not an error; the environment alone may
// configure the service.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	_ = godotenv.Load()
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
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

// Location resolves the progression time zone, UTC when unset or unknown.
func (c Config) Location() *time.Location {
	if c.Progression.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Progression.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LogLevel maps log.level to a slog level, info by default.
func (c Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
