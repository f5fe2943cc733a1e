package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"fundingintake/internal/server/app"
	"fundingintake/internal/server/config"
	"fundingintake/internal/shared/logging"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	application, err := app.New(version, buildDate, cfg, logger)
	if err != nil {
		logger.Fatal("failed to init server", zap.Error(err))
	}
	if err := application.Run(); err != nil {
		logger.Fatal("server stopped with error", zap.Error(err))
	}
}
