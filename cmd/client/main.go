// Package main is the entry point for the roomlight explorer: walk a level
// while its lightmaps bake.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/roomlight/internal/config"
	"github.com/Faultbox/roomlight/internal/game"
	"github.com/Faultbox/roomlight/internal/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		return 1
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	logger.Info("starting roomlight",
		zap.String("level", cfg.Level.Path),
		zap.Int("sample_size", cfg.Bake.SampleSize),
		zap.Int("passes", cfg.Bake.Passes),
	)
	logger.Sugar.Debugf("config: %+v", cfg)

	g, err := game.New(cfg)
	if err != nil {
		logger.Error("failed to start", zap.Error(err))
		return 1
	}
	defer g.Close()

	if err := g.Run(); err != nil {
		logger.Error("main loop failed", zap.Error(err))
		return 1
	}

	logger.Info("closed normally")
	return 0
}
