package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Env      string     `env:"APP_ENV" envDefault:"development"`
	Addr     string     `env:"ADDR" envDefault:":8080"`
	LogLevel slog.Level `env:"LOG_LEVEL"`

	// Empty DatabaseURL keeps state in memory; fine for development, not for
	// anything that handles real balances.
	DatabaseURL string `env:"DATABASE_URL"`

	RedisAddr     string `env:"REDIS_URL" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB"`

	JWTSecret string `env:"JWT_SECRET,required"`

	SettleInterval time.Duration `env:"SETTLE_INTERVAL" envDefault:"1s"`
}

func Load() (*Config, error) {
	// Missing .env is fine; values then come from the environment.
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}
