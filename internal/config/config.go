package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	StoreFile   string
	LogLevel    string
	LogFile     string
	PINAttempts int
}

// NewConfig loads configuration from environment variables with defaults
func NewConfig() (*Config, error) {
	v := viper.New()
	v.SetDefault("STORE_FILE", "cards.txt")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("PIN_ATTEMPTS", 3)
	v.AutomaticEnv()

	cfg := &Config{
		StoreFile:   v.GetString("STORE_FILE"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		LogFile:     v.GetString("LOG_FILE"),
		PINAttempts: v.GetInt("PIN_ATTEMPTS"),
	}

	if cfg.StoreFile == "" {
		return nil, fmt.Errorf("STORE_FILE is required")
	}
	if cfg.PINAttempts <= 0 {
		return nil, fmt.Errorf("PIN_ATTEMPTS must be positive, got %d", cfg.PINAttempts)
	}

	return cfg, nil
}
