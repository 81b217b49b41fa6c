package config

import (
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ZPEOPLE_DATA_DIR", "")
	t.Setenv("ZPEOPLE_SAVE_DIR", "")
	t.Setenv("XDG_DATA_HOME", "/xdg")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DataDir != "/xdg/zpeople" {
		t.Errorf("DataDir = %s", cfg.DataDir)
	}
	if cfg.SaveDir == "" {
		t.Error("SaveDir should have a default")
	}
	if cfg.Seed != 0 || cfg.Vault {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.Level() != slog.LevelWarn {
		t.Errorf("Level = %v, want warn", cfg.Level())
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ZPEOPLE_DATA_DIR", "/data")
	t.Setenv("ZPEOPLE_SAVE_DIR", "/out")
	t.Setenv("ZPEOPLE_SEED", "42")
	t.Setenv("ZPEOPLE_LOG_LEVEL", "debug")
	t.Setenv("ZPEOPLE_VAULT", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	want := Config{DataDir: "/data", SaveDir: "/out", Seed: 42, LogLevel: "debug", Vault: true}
	if cfg != want {
		t.Errorf("cfg = %+v, want %+v", cfg, want)
	}
	if cfg.Level() != slog.LevelDebug {
		t.Errorf("Level = %v", cfg.Level())
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"bad seed", "ZPEOPLE_SEED", "many"},
		{"bad level", "ZPEOPLE_LOG_LEVEL", "loud"},
		{"bad bool", "ZPEOPLE_VAULT", "perhaps"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			if _, err := Load(); err == nil {
				t.Errorf("%s=%s should fail", tt.key, tt.val)
			}
		})
	}
}

func TestDataDir(t *testing.T) {
	tests := []struct {
		name string
		xdg  string
		want string
	}{
		{
			name: "xdg set",
			xdg:  "/custom/data",
			want: "/custom/data/zpeople",
		},
		{
			name: "xdg empty falls back to home",
			xdg:  "",
			want: "/.local/share/zpeople",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XDG_DATA_HOME", tt.xdg)

			got := DataDir()
			if tt.xdg != "" {
				if got != tt.want {
					t.Errorf("DataDir() = %s, want %s", got, tt.want)
				}
			} else {
				if !strings.HasSuffix(got, tt.want) {
					t.Errorf("DataDir() = %s, want suffix %s", got, tt.want)
				}
			}
		})
	}
}

func TestSaveDir(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	if got := SaveDir(); got != filepath.Join("/home/tester", "Downloads") {
		t.Errorf("SaveDir() = %s", got)
	}
}
