// Package main is the entry point for the hostel review server.
//
// main stays minimal: load configuration, create the logger and the data
// directories, then hand off to internal/server which owns everything
// else.
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sadman/hostelreview/internal/config"
	"github.com/sadman/hostelreview/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Both backends keep their files under a data directory; create it
	// up front so first startup works from a clean checkout.
	for _, dir := range []string{filepath.Dir(cfg.DBPath), filepath.Dir(cfg.WorkbookPath)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Error("failed to create data directory",
				slog.String("dir", dir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	srv, err := server.New(*cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until SIGINT/SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
