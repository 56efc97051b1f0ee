package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/PityulevichArtyom/atm-service/internal/cli"
	"github.com/PityulevichArtyom/atm-service/internal/config"
	"github.com/PityulevichArtyom/atm-service/internal/repository"
	"github.com/PityulevichArtyom/atm-service/internal/service"
)

func main() {
	// Optional .env next to the binary; plain environment variables win.
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			logger.Fatalf("Failed to open log file: %v", err)
		}
		defer f.Close()
		logger.SetOutput(f)
	}

	// Initialize layers
	repo := repository.NewRepository(cfg.StoreFile, logger)
	svc, err := service.NewService(repo, logger, cfg)
	if err != nil {
		logger.Fatalf("Failed to load card store: %v", err)
	}

	cli.New(svc, cfg, os.Stdin, os.Stdout).Run()
}
