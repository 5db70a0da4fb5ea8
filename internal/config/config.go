// Package config aggregates the application configuration loaded from the
// environment at startup.
package config

import (
	"time"

	"github.com/slotlist/slotlist-backend-sub000/pkg/config"
	"github.com/slotlist/slotlist-backend-sub000/pkg/email"
	"github.com/slotlist/slotlist-backend-sub000/pkg/pg"
	"github.com/slotlist/slotlist-backend-sub000/pkg/redis"
)

// Config is the full application configuration.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":4000"`

	JWTSecret string        `env:"JWT_SECRET,required"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"24h"`

	Postgres pg.Config
	Redis    redis.Config
	Email    email.Config
}

// Load reads the configuration from the environment. Nested sections are
// parsed recursively, so the postgres, redis and email env tags apply as-is.
func Load() (Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
