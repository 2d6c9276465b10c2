package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/Alaminislam-stack/wash2gather/internal/relay"
)

// NewRouter registers the relay routes on a fresh mux.
func NewRouter(hub *relay.Hub, cfg *Config) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthCheckHandler)
	mux.HandleFunc("GET /stats", statsHandler(hub))
	mux.HandleFunc("/ws", ServeWs(hub, cfg))
	return mux
}

// Health Check endpoint
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Relay server is healthy."))
}

func statsHandler(hub *relay.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := hub.Stats(r.Context())
		if err != nil {
			http.Error(w, "stats unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(stats)
	}
}

// ServeWs returns an http.HandlerFunc that upgrades to a websocket and hands
// the connection to the hub.
func ServeWs(hub *relay.Hub, cfg *Config) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  64 * 1024,
		WriteBufferSize: 64 * 1024,
		CheckOrigin: func(r *http.Request) bool {
			return cfg.OriginAllowed(r.Header.Get("Origin"))
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Warn("failed to upgrade connection", "remote", r.RemoteAddr, "err", err)
			return
		}

		client := relay.NewClient(hub, conn)
		slog.Info("client connected", "conn", client.ID, "remote", r.RemoteAddr)

		select {
		case hub.Register <- client:
		case <-hub.Done():
			slog.Warn("relay stopped, refusing connection", "conn", client.ID)
			conn.Close()
			return
		}

		// The pumps own the connection from here on.
		go client.WritePump()
		go client.ReadPump()
	}
}
