// SwapIt - Peer-to-peer barter marketplace with escrow-backed trades
package main

import (
	"context"
	"os"

	"github.com/Kripa621/swapit-io/internal/config"
	"github.com/Kripa621/swapit-io/internal/logging"
	"github.com/Kripa621/swapit-io/internal/server"
	"github.com/Kripa621/swapit-io/internal/traces"
)

// Build info - set by ldflags
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	// Create logger
	logger := logging.New("info", "text")

	logger.Info("starting swapit",
		"version", Version,
		"commit", Commit,
		"build_time", BuildTime,
	)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"env", cfg.Env,
		"escrow_rate", cfg.EscrowRate,
		"reward_amount", cfg.RewardAmount,
	)

	ctx := context.Background()

	// Tracing is a no-op unless an OTLP endpoint is configured
	shutdownTraces, err := traces.Init(ctx, cfg.OTLPEndpoint, logger)
	if err != nil {
		logger.Warn("failed to initialize tracing", "error", err)
	} else {
		defer func() { _ = shutdownTraces(context.Background()) }()
	}

	// Create and run server
	srv, err := server.New(cfg, server.WithLogger(logger))
	if err != nil {
		logger.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
