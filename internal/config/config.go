package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	AppPort string `env:"APP_PORT" envDefault:"8080"`

	DatabaseDSN string `env:"DATABASE_DSN,required"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	AppleClientID string `env:"APPLE_CLIENT_ID,required"`
	AppleIssuer   string `env:"APPLE_ISSUER" envDefault:"https://appleid.apple.com"`
	AppleJWKSURL  string `env:"APPLE_JWKS_URL" envDefault:"https://appleid.apple.com/auth/keys"`

	GoogleClientID string `env:"GOOGLE_CLIENT_ID,required"`
	GoogleIssuer   string `env:"GOOGLE_ISSUER" envDefault:"https://accounts.google.com"`
	GoogleJWKSURL  string `env:"GOOGLE_JWKS_URL" envDefault:"https://www.googleapis.com/oauth2/v3/certs"`

	// SessionTTL bounds how long a stashed nonce stays usable.
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"1h"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
