package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"catalog/feedsync/internal/config"
	"catalog/feedsync/internal/container"
	"catalog/feedsync/internal/domain"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "path to the YAML config file (default ./config.yaml)")
	pflag.Parse()

	log.Info("Starting feedsync...")

	// Load configuration using viper
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Errorf("Failed to load configuration: %v", err)
		os.Exit(domain.OutcomeFailed.ExitCode())
	}
	log.Info("Configuration loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	// Initialize container with all dependencies
	app, err := container.New(ctx, cfg)
	if err != nil {
		stop()
		log.Errorf("Failed to initialize container: %v", err)
		os.Exit(domain.OutcomeFailed.ExitCode())
	}

	outcome := app.Run(ctx)
	stop()

	os.Exit(outcome.ExitCode())
}
