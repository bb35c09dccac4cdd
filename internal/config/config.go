package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is loaded from .env / environment variables.
type Config struct {
	DiscordToken     string `env:"DISCORD_TOKEN"`
	CouncilChannelID string `env:"COUNCIL_CHANNEL_ID"`
	AIProvider       string `env:"AI_PROVIDER" envDefault:"pollinations"`
	StoragePath      string `env:"STORAGE_PATH" envDefault:"data/voices.json"`
	VoicesPath       string `env:"VOICES_PATH" envDefault:"data/voices.yaml"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile          string `env:"LOG_FILE" envDefault:"logs/voiceloom.log"`
}

// New loads .env (if present) and parses the environment into Config.
func New() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
