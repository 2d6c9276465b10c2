package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"WASH2GATHER_SERVER", "STUN_SERVER", "TURN_SERVER", "TURN_USERNAME",
		"TURN_PASSWORD", "WASH2GATHER_NAME", "WASH2GATHER_SECURE", "FORCE_RELAY",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("HOME", t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(Options{})
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.WebSocketURL != "ws://localhost:3000/ws" {
		t.Errorf("Unexpected websocket URL %s", cfg.WebSocketURL)
	}
	if cfg.STUNServer != DefaultSTUN {
		t.Errorf("Unexpected STUN server %s", cfg.STUNServer)
	}
	if cfg.Room != RoomName || cfg.Name != DefaultName {
		t.Errorf("Unexpected room or name: %s %s", cfg.Room, cfg.Name)
	}
	if cfg.GetTURNServers() != nil {
		t.Error("TURN must be optional")
	}
}

func TestLoad_Precedence(t *testing.T) {
	clearEnv(t)

	file := filepath.Join(t.TempDir(), "config.yaml")
	content := "server: file.example:3000\nname: Alice\nstun_server: stun:file.example:3478\n"
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(Options{ConfigFile: file})
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Server != "file.example:3000" || cfg.Name != "Alice" {
		t.Errorf("File values not applied: %+v", cfg)
	}

	t.Setenv("WASH2GATHER_SERVER", "env.example")
	cfg, _ = Load(Options{ConfigFile: file})
	if cfg.Server != "env.example" {
		t.Errorf("Expected env to beat file, got %s", cfg.Server)
	}
	if cfg.STUNServer != "stun:file.example:3478" {
		t.Errorf("Expected file STUN server, got %s", cfg.STUNServer)
	}

	cfg, _ = Load(Options{ConfigFile: file, Server: "wss://flag.example"})
	if cfg.WebSocketURL != "wss://flag.example/ws" {
		t.Errorf("Expected flag to win, got %s", cfg.WebSocketURL)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	clearEnv(t)
	if _, err := Load(Options{ConfigFile: filepath.Join(t.TempDir(), "nope.yaml")}); err == nil {
		t.Error("Expected error for missing config file")
	}
}

func TestBuildWebSocketURL(t *testing.T) {
	tests := []struct {
		server string
		secure bool
		want   string
	}{
		{"localhost:3000", false, "ws://localhost:3000/ws"},
		{"watch.example", true, "wss://watch.example/ws"},
		{"https://watch.example", false, "wss://watch.example/ws"},
		{"ws://10.0.0.1:3000/relay", false, "ws://10.0.0.1:3000/relay"},
	}
	for _, tt := range tests {
		got, err := buildWebSocketURL(tt.server, tt.secure)
		if err != nil || got != tt.want {
			t.Errorf("buildWebSocketURL(%q) = %q, %v; want %q", tt.server, got, err, tt.want)
		}
	}

	if _, err := buildWebSocketURL("ftp://x", false); err == nil {
		t.Error("Expected error for unsupported scheme")
	}
}

func TestTURNServersAndHTTPURL(t *testing.T) {
	cfg := &Config{TURNServer: "turn.example", WebSocketURL: "wss://watch.example/ws"}
	if got := cfg.GetTURNServers(); len(got) != 3 || got[0] != "turn:turn.example:3478?transport=udp" {
		t.Errorf("Unexpected TURN servers %v", got)
	}
	cfg.TURNServer = "turn:relay.example:3478"
	if got := cfg.GetTURNServers(); len(got) != 1 {
		t.Errorf("Expected explicit TURN URL kept, got %v", got)
	}
	if cfg.HTTPURL() != "https://watch.example" {
		t.Errorf("Unexpected HTTP URL %s", cfg.HTTPURL())
	}
}

func TestSaveThenLoad(t *testing.T) {
	clearEnv(t)

	file := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Defaults()
	cfg.Name = "Bob"
	if err := Save(cfg, file); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	loaded, err := Load(Options{ConfigFile: file})
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	if loaded.Name != "Bob" || loaded.Server != DefaultServer {
		t.Errorf("Round trip mismatch: %+v", loaded)
	}
}
