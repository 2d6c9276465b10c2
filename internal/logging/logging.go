package logging

import (
	"io"
	"log/slog"
	"os"
)

// Init installs the default slog logger. fallback is used when LOG_LEVEL
// is unset or unrecognised.
func Init(fallback slog.Level) {
	InitWriter(os.Stderr, fallback)
}

// InitWriter is Init with logs going to w. Full screen commands point it at
// a file.
func InitWriter(w io.Writer, fallback slog.Level) {
	level := fallback

	if l, ok := os.LookupEnv("LOG_LEVEL"); ok {
		level = ParseLevel(l, fallback)
	}

	logger := slog.New(
		slog.NewTextHandler(w, &slog.HandlerOptions{
			Level: level,
		}),
	)
	slog.SetDefault(logger)
}

// ParseLevel maps a LOG_LEVEL style name to a slog level.
func ParseLevel(name string, fallback slog.Level) slog.Level {
	switch name {
	case "dev", "development", "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "production", "prod":
		return slog.LevelError
	}
	return fallback
}
