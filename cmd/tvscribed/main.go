package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"tvscribe/internal/config"
	"tvscribe/internal/daemon"
	"tvscribe/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "configuration file path")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, resolvedPath, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	logger.Info("configuration loaded", logging.String("path", resolvedPath))

	d, err := daemon.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("assemble daemon", logging.Error(err))
		log.Fatalf("assemble daemon: %v", err)
	}

	if err := d.Run(ctx); err != nil {
		logger.Error("daemon exited", logging.Error(err))
		log.Fatalf("daemon: %v", err)
	}
}
