package cli

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Alaminislam-stack/wash2gather/internal/config"
	"github.com/Alaminislam-stack/wash2gather/internal/relay"
	"github.com/Alaminislam-stack/wash2gather/internal/server"
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

func TestLoadConfig_RelayNeedsTURN(t *testing.T) {
	clearEnv(t)

	if _, err := LoadConfig(config.Options{ForceRelay: true}); err == nil {
		t.Fatal("expected error when forcing relay without TURN")
	}

	cfg, err := LoadConfig(config.Options{ForceRelay: true, TURNServer: "turn.example.com"})
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if !cfg.ForceRelay {
		t.Error("expected relay mode")
	}
}

func TestICEConfig_FromConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.TURNServer = "turn:turn.example.com:3478"
	cfg.TURNUser = "alice"
	cfg.TURNPass = "secret"
	cfg.ForceRelay = true

	ice := iceConfig(cfg)
	if len(ice.STUNServers) != 1 || ice.STUNServers[0] != config.DefaultSTUN {
		t.Errorf("unexpected STUN servers: %v", ice.STUNServers)
	}
	if len(ice.TURNServers) != 1 || ice.TURNUsername != "alice" || ice.TURNPassword != "secret" {
		t.Errorf("unexpected TURN settings: %+v", ice)
	}
	if !ice.ForceRelay {
		t.Error("expected relay mode to be kept")
	}
}

func TestICEConfig_NoTURNNeverForcesRelay(t *testing.T) {
	ice := iceConfig(config.Defaults())
	if ice.ForceRelay {
		t.Error("relay mode needs a TURN server")
	}
}

func TestFetchStats(t *testing.T) {
	hub := relay.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	srv := httptest.NewServer(server.NewRouter(hub, &server.Config{Port: server.DefaultPort}))
	defer srv.Close()

	stats, err := fetchStats(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("fetchStats failed: %v", err)
	}
	if stats.Rooms != 0 || stats.Connections != 0 {
		t.Errorf("expected an idle relay, got %+v", stats)
	}
}

func TestFetchStats_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if _, err := fetchStats(context.Background(), srv.URL); err == nil {
		t.Error("expected error for non-200 response")
	}
}

func TestJoin_RoomIsNotSelectable(t *testing.T) {
	if err := joinCmd.Args(joinCmd, []string{"movie-night"}); err == nil {
		t.Error("join must not accept a room name")
	}
	if err := joinCmd.Args(joinCmd, nil); err != nil {
		t.Errorf("join without arguments rejected: %v", err)
	}
}

func TestLoadConfig_DefaultsToSharedRoom(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig(config.Options{})
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Room != config.RoomName {
		t.Errorf("expected room %q, got %q", config.RoomName, cfg.Room)
	}
}
