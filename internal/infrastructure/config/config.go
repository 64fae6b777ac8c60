package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// CookieSecret signs the browser session cookie. Required.
	CookieSecret string        `env:"COOKIE_SECRET, required"`
	SessionTTL   time.Duration `env:"SESSION_TTL,  default=12h"`

	Upstream UpstreamConfig
	Redis    RedisConfig
	Mongo    MongoConfig
	Throttle ThrottleConfig
}

type UpstreamConfig struct {
	// BaseURL is the single fixed origin of the astrology platform API; all
	// request paths are relative to it.
	BaseURL string        `env:"UPSTREAM_BASE_URL, default=https://api.astroline.example.com"`
	Timeout time.Duration `env:"UPSTREAM_TIMEOUT,  default=15s"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=astro_admin"`
}

type ThrottleConfig struct {
	MaxFailures int           `env:"LOGIN_MAX_FAILURES,    default=5"`
	Window      time.Duration `env:"LOGIN_FAILURE_WINDOW, default=15m"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	return &cfg, nil
}

// IsProduction reports whether the gateway runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
