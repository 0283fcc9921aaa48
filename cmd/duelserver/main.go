// Package main runs the duel server: a telnet front door for house duels
// plus a gRPC health endpoint.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/brawl/internal/config"
	"github.com/cory-johannsen/brawl/internal/observability"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	app, cleanup, err := InitializeApp(ctx, &cfg, logger)
	if err != nil {
		logger.Fatal("initializing duel server", zap.Error(err))
	}
	defer cleanup()

	logger.Info("duel server initialized",
		zap.String("name", cfg.Server.Name),
		zap.String("storage", cfg.Storage.Driver),
		zap.Duration("choice_timeout", cfg.Match.ChoiceTimeout),
		zap.Duration("startup", time.Since(start)),
	)

	if err := app.Run(ctx); err != nil {
		logger.Error("duel server stopped with error", zap.Error(err))
	}
}
