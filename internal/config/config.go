package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config carries every runtime knob of the service. Values come from the
// environment; defaults suit local development.
type Config struct {
	Addr        string `env:"MAPLE_ADDR" envDefault:":8080"`
	DatabaseURL string `env:"MAPLE_PG_DSN"`

	// AuthSecret signs access tokens. The process refuses to start without it.
	AuthSecret  string        `env:"MAPLE_AUTH_SECRET"`
	TokenIssuer string        `env:"MAPLE_TOKEN_ISSUER" envDefault:"maplecms"`
	AccessTTL   time.Duration `env:"MAPLE_ACCESS_TTL" envDefault:"15m"`
	RefreshTTL  time.Duration `env:"MAPLE_REFRESH_TTL" envDefault:"168h"`

	SweepInterval time.Duration `env:"MAPLE_SWEEP_INTERVAL" envDefault:"10m"`

	RateBurst     int   `env:"MAPLE_RATE_BURST" envDefault:"20"`
	RatePerSecond int   `env:"MAPLE_RATE_PER_SECOND" envDefault:"10"`
	MaxBodyBytes  int64 `env:"MAPLE_MAX_BODY_BYTES" envDefault:"1048576"`

	// Optional bootstrap admin created on first start when the user table is
	// empty. Both values must be set together.
	AdminEmail    string `env:"MAPLE_ADMIN_EMAIL"`
	AdminPassword string `env:"MAPLE_ADMIN_PASSWORD"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.AuthSecret == "" {
		return Config{}, errors.New("config: MAPLE_AUTH_SECRET is required")
	}
	if (cfg.AdminEmail == "") != (cfg.AdminPassword == "") {
		return Config{}, errors.New("config: MAPLE_ADMIN_EMAIL and MAPLE_ADMIN_PASSWORD must be set together")
	}
	return cfg, nil
}
