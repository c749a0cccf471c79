package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/newthinker/protrade/internal/core"
)

func TestLoad_FromFile(t *testing.T) {
	content := []byte(`
server:
  host: "127.0.0.1"
  port: 9090

backend:
  api_base: "http://backend.local:8000"
  timeout: 5s

viewer:
  default_symbol: QQQ
  default_tf: 1d
`)

	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(cfgPath, content, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Backend.APIBase != "http://backend.local:8000" {
		t.Errorf("unexpected api_base %s", cfg.Backend.APIBase)
	}
	if cfg.Backend.Timeout != 5*time.Second {
		t.Errorf("expected 5s timeout, got %s", cfg.Backend.Timeout)
	}
	if cfg.Viewer.DefaultTimeframe != "1d" {
		t.Errorf("expected tf 1d, got %s", cfg.Viewer.DefaultTimeframe)
	}

	// Keys missing from the file keep their defaults
	if cfg.Metrics.Path != "/metrics" {
		t.Errorf("expected default metrics path, got %s", cfg.Metrics.Path)
	}
}

func TestLoad_IgnoresUnknownServerKeys(t *testing.T) {
	content := []byte(`
server:
  host: "127.0.0.1"
  port: 9191
  mode: debug
`)

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, content, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	want := ServerConfig{Host: "127.0.0.1", Port: 9191}
	if cfg.Server != want {
		t.Errorf("expected server %+v, got %+v", want, cfg.Server)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("PROTRADE_API_BASE", "http://10.0.0.5:8000")
	t.Setenv("PROTRADE_SERVER_PORT", "7070")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Backend.APIBase != "http://10.0.0.5:8000" {
		t.Errorf("expected env api_base, got %s", cfg.Backend.APIBase)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("expected env port 7070, got %d", cfg.Server.Port)
	}
}

func TestLoad_ExpandsEnvReferences(t *testing.T) {
	t.Setenv("MY_BACKEND", "https://strategies.example.com")

	content := []byte("backend:\n  api_base: \"${MY_BACKEND}\"\n")
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, content, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Backend.APIBase != "https://strategies.example.com" {
		t.Errorf("expected expanded api_base, got %s", cfg.Backend.APIBase)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Backend.APIBase != "http://127.0.0.1:8000" {
		t.Errorf("expected loopback api_base, got %s", cfg.Backend.APIBase)
	}
	if cfg.Viewer.DefaultSymbol != "SPY" || cfg.Viewer.DefaultTimeframe != "30m" {
		t.Errorf("unexpected viewer defaults: %+v", cfg.Viewer)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config { return *Defaults() }

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr *core.Error
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:    "invalid port - zero",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: core.ErrConfigInvalid,
		},
		{
			name:    "invalid port - too high",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: core.ErrConfigInvalid,
		},
		{
			name:    "missing api_base",
			mutate:  func(c *Config) { c.Backend.APIBase = "" },
			wantErr: core.ErrConfigMissing,
		},
		{
			name:    "relative api_base",
			mutate:  func(c *Config) { c.Backend.APIBase = "/api" },
			wantErr: core.ErrConfigInvalid,
		},
		{
			name:    "negative timeout",
			mutate:  func(c *Config) { c.Backend.Timeout = -time.Second },
			wantErr: core.ErrConfigInvalid,
		},
		{
			name:    "bad default timeframe",
			mutate:  func(c *Config) { c.Viewer.DefaultTimeframe = "4h" },
			wantErr: core.ErrConfigInvalid,
		},
		{
			name:    "zero watch interval",
			mutate:  func(c *Config) { c.Viewer.WatchInterval = 0 },
			wantErr: core.ErrConfigInvalid,
		},
		{
			name:    "metrics path without slash",
			mutate:  func(c *Config) { c.Metrics.Path = "metrics" },
			wantErr: core.ErrConfigInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
