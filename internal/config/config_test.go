package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 4000
  host: 0.0.0.0
sources:
  - ./imgs/a.png
  - https://example.com/cat.png
cache:
  backend: file_system
  dir: /tmp/imageserver-cache
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 4000 {
		t.Errorf("expected port 4000, got %d", cfg.Server.Port)
	}
	if cfg.Addr() != "0.0.0.0:4000" {
		t.Errorf("unexpected addr %s", cfg.Addr())
	}
	if len(cfg.Sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(cfg.Sources))
	}
	if cfg.Cache.Backend != "file_system" {
		t.Errorf("expected file_system backend, got %s", cfg.Cache.Backend)
	}
	// Defaults fill what the file leaves out
	if cfg.Fetch.Timeout != 10*time.Second {
		t.Errorf("expected default fetch timeout, got %s", cfg.Fetch.Timeout)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected default log level, got %s", cfg.Log.Level)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("IMAGE_SERVER_PORT", "5001")
	t.Setenv("IMAGE_SERVER_SOURCES", "./imgs/a.png,./imgs/dir")
	t.Setenv("IMAGE_SERVER_CACHE_BACKEND", "file_system")

	path := writeConfig(t, `
sources:
  - ./ignored-by-env.png
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 5001 {
		t.Errorf("expected env port 5001, got %d", cfg.Server.Port)
	}
	if len(cfg.Sources) != 2 || cfg.Sources[0] != "./imgs/a.png" || cfg.Sources[1] != "./imgs/dir" {
		t.Errorf("expected comma-split env sources, got %v", cfg.Sources)
	}
	if cfg.Cache.Backend != "file_system" {
		t.Errorf("expected env backend, got %s", cfg.Cache.Backend)
	}
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid",
			cfg: Config{
				Server:  ServerConfig{Port: 3000},
				Sources: []string{"./imgs"},
			},
		},
		{
			name: "no sources",
			cfg: Config{
				Server: ServerConfig{Port: 3000},
			},
			wantErr: true,
		},
		{
			name: "bad port",
			cfg: Config{
				Server:  ServerConfig{Port: -1},
				Sources: []string{"./imgs"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSplitSources(t *testing.T) {
	got := splitSources([]string{"a.png, b.png", "", " c.png "})
	want := []string{"a.png", "b.png", "c.png"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
		}
	}
}
