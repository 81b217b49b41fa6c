// Package config loads zpeople settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds runtime settings.
type Config struct {
	DataDir  string `env:"ZPEOPLE_DATA_DIR"`
	SaveDir  string `env:"ZPEOPLE_SAVE_DIR"`
	Seed     int64  `env:"ZPEOPLE_SEED" envDefault:"0"`
	LogLevel string `env:"ZPEOPLE_LOG_LEVEL" envDefault:"warn"`
	Vault    bool   `env:"ZPEOPLE_VAULT" envDefault:"false"`
}

// Load parses the environment and fills in directory defaults.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.DataDir == "" {
		cfg.DataDir = DataDir()
	}
	if cfg.SaveDir == "" {
		cfg.SaveDir = SaveDir()
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DataDir returns the default data directory for zpeople.
func DataDir() string {
	if d := os.Getenv("XDG_DATA_HOME"); d != "" {
		return d + "/zpeople"
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".zpeople"
	}
	return home + "/.local/share/zpeople"
}

// SaveDir returns where saved files land when no path is chosen.
func SaveDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Downloads")
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("parse config: log level %q: %w", s, err)
	}
	return l, nil
}

// Level returns the configured log level, defaulting to warn.
func (c Config) Level() slog.Level {
	l, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelWarn
	}
	return l
}
