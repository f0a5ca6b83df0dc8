package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "engine.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadEngineConfig(t *testing.T) {
	path := writeConfig(t, `
version: 1
scene:
  id: gallery
  name: Gallery Installation
network:
  api_port: 9090
  base_url: https://engine.example.com
scheduler:
  tick_ms: 33
`)

	cfg, err := LoadEngineConfig(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Scene.ID != "gallery" {
		t.Errorf("scene id = %q", cfg.Scene.ID)
	}
	if cfg.APIPort() != 9090 {
		t.Errorf("api port = %d", cfg.APIPort())
	}
	if cfg.BaseURL() != "https://engine.example.com" {
		t.Errorf("base url = %q", cfg.BaseURL())
	}
	if cfg.TickInterval() != 33*time.Millisecond {
		t.Errorf("tick = %v", cfg.TickInterval())
	}
}

func TestLoadEngineConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
version: 1
scene:
  id: minimal
`)

	cfg, err := LoadEngineConfig(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.APIPort() != 8080 {
		t.Errorf("default port = %d, want 8080", cfg.APIPort())
	}
	if cfg.BaseURL() != "http://localhost:8080" {
		t.Errorf("default base url = %q", cfg.BaseURL())
	}
	if cfg.TickInterval() != 16*time.Millisecond {
		t.Errorf("default tick = %v, want 16ms", cfg.TickInterval())
	}
}

func TestLoadEngineConfigRejectsUnknownVersion(t *testing.T) {
	path := writeConfig(t, `
version: 2
scene:
  id: future
`)

	if _, err := LoadEngineConfig(path); err == nil {
		t.Error("expected version 2 to be rejected")
	}
}

func TestLoadEngineConfigMissingFile(t *testing.T) {
	if _, err := LoadEngineConfig("/nonexistent/engine.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadEngineConfigInvalidYAML(t *testing.T) {
	path := writeConfig(t, "version: [not closed")
	if _, err := LoadEngineConfig(path); err == nil {
		t.Error("expected error for invalid yaml")
	}
}
