// Package main is the entry point for the portfolio API server.
//
// main stays minimal:
//  1. load configuration (.env + environment)
//  2. build the logger
//  3. hand both to internal/server and block until shutdown
package main

import (
	"log/slog"
	"os"

	"github.com/sakif/portfolio-api/internal/config"
	"github.com/sakif/portfolio-api/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Levels from least to most severe: Debug → Info → Warn → Error.
	// LOG_LEVEL picks the minimum that gets printed.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Server.LogLevel,
	}))
	slog.SetDefault(logger)

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
