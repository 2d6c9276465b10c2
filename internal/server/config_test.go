package server

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("HOST", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Port != DefaultPort {
		t.Errorf("Expected port %s, got %s", DefaultPort, cfg.Port)
	}
	if cfg.Addr() != ":3000" {
		t.Errorf("Unexpected addr %s", cfg.Addr())
	}
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "server.yaml")
	content := "host: 127.0.0.1\nport: \"4000\"\nallowed_origins:\n  - https://watch.example\n"
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	t.Setenv("PORT", "")
	t.Setenv("HOST", "")
	cfg, err := LoadConfig(file)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Addr() != "127.0.0.1:4000" {
		t.Errorf("Unexpected addr %s", cfg.Addr())
	}
	if !cfg.OriginAllowed("https://watch.example") || cfg.OriginAllowed("https://evil.example") {
		t.Error("Origin allow-list not applied")
	}

	t.Setenv("PORT", "5000")
	cfg, err = LoadConfig(file)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Port != "5000" {
		t.Errorf("Expected env to win, got %s", cfg.Port)
	}
}

func TestLoadConfig_InvalidPort(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	if _, err := LoadConfig(""); err == nil {
		t.Error("Expected error for invalid port")
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}
