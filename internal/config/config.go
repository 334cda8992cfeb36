package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds server configuration, loaded from the environment
type Config struct {
	Host string `env:"ROSTERQUIZ_HOST" envDefault:""`
	Port int    `env:"ROSTERQUIZ_PORT" envDefault:"8080"`

	// Path to the roster CSV file
	RosterPath string `env:"ROSTERQUIZ_ROSTER_PATH" envDefault:"data/players.csv"`

	// Storage backend: "memory" or "redis"
	StorageType string `env:"STORAGE_TYPE" envDefault:"memory"`
	RedisURL    string `env:"REDIS_URL"`

	PauseBetweenRounds time.Duration `env:"ROSTERQUIZ_PAUSE_BETWEEN_ROUNDS" envDefault:"10s"`
	BotThinkDelay      time.Duration `env:"ROSTERQUIZ_BOT_THINK_DELAY" envDefault:"500ms"`
	SessionDuration    time.Duration `env:"ROSTERQUIZ_SESSION_DURATION" envDefault:"24h"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load parses configuration from environment variables
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
