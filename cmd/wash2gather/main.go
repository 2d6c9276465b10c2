package main

import (
	"log/slog"

	"github.com/Alaminislam-stack/wash2gather/internal/cli"
	"github.com/Alaminislam-stack/wash2gather/internal/logging"
)

func main() {
	// Initialize logging
	logging.Init(slog.LevelWarn)
	cli.Execute()
}
