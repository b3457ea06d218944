// Package config loads runtime configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds everything the server needs at startup. The JWT secret is
// deliberately plain configuration: it is injected into the token service at
// construction and read from nowhere else, so tests and multiple instances
// can each run with their own secret. It must never be committed or logged.
type Config struct {
	Port        int           `env:"PORT" envDefault:"8080"`
	DBPath      string        `env:"DB_PATH" envDefault:"data/friendcircle.db"`
	JWTSecret   string        `env:"JWT_SECRET"`
	TokenTTL    time.Duration `env:"TOKEN_TTL" envDefault:"1h"`
	CORSOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing environment: %w", err)
	}

	if cfg.JWTSecret == "" {
		return Config{}, errors.New("config: JWT_SECRET is required")
	}
	if cfg.TokenTTL <= 0 {
		return Config{}, errors.New("config: TOKEN_TTL must be positive")
	}

	return cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
