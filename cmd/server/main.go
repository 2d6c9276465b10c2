package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Alaminislam-stack/wash2gather/internal/logging"
	"github.com/Alaminislam-stack/wash2gather/internal/relay"
	"github.com/Alaminislam-stack/wash2gather/internal/server"
)

func main() {
	cfg, err := server.LoadConfig(os.Getenv("WASH2GATHER_SERVER_CONFIG"))
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}
	logging.Init(logging.ParseLevel(cfg.LogLevel, slog.LevelInfo))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The hub owns every room from its own goroutine.
	hub := relay.NewHub()
	hubCtx, stopHub := context.WithCancel(context.Background())
	go hub.Run(hubCtx)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           server.NewRouter(hub, cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("relay server listening", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server stopped", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("graceful shutdown failed", "err", err)
	}
	stopHub()
}
