package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// App holds the runtime configuration loaded from environment variables.
type App struct {
	Env      string `env:"APP_ENV" env-default:"dev"`
	HTTPPort string `env:"HTTP_PORT" env-default:"8081"`

	RosterAPIURL     string        `env:"ROSTER_API_URL" env-description:"base URL of the roster service"`
	RosterAPITimeout time.Duration `env:"ROSTER_API_TIMEOUT" env-default:"10s"`

	QueueBackend string `env:"QUEUE_BACKEND" env-default:"memory"`
	RedisURL     string `env:"REDIS_URL" env-default:"redis://localhost:6379/0"`
	FeedKey      string `env:"FEED_KEY" env-default:"admin:status-changes"`

	RateLimitPerMin int      `env:"RATE_LIMIT_PER_MIN" env-default:"120"`
	CORSOrigins     []string `env:"CORS_ORIGINS" env-default:"*"`
}

// RequireRoster fails when the roster service URL is missing.
func (a App) RequireRoster() error {
	if a.RosterAPIURL == "" {
		return errors.New("ROSTER_API_URL is required")
	}
	return nil
}

// Production reports whether the app runs with production settings.
func (a App) Production() bool {
	return a.Env == "production" || a.Env == "prod"
}

// Load reads an optional .env file and then the process environment.
func Load(envFiles ...string) (App, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return App{}, fmt.Errorf("load env file: %w", err)
	}

	var cfg App
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return App{}, fmt.Errorf("read env: %w", err)
	}

	switch cfg.QueueBackend {
	case "none", "memory", "redis":
	default:
		return App{}, fmt.Errorf("unknown QUEUE_BACKEND %q", cfg.QueueBackend)
	}
	if cfg.RosterAPITimeout <= 0 {
		return App{}, errors.New("ROSTER_API_TIMEOUT must be positive")
	}
	return cfg, nil
}

// MustLoad is Load for process entry points.
func MustLoad() App {
	cfg, err := Load()
	if err != nil {
		panic("failed to read config from environment: " + err.Error())
	}
	return cfg
}

// Usage describes every supported variable, for -h output.
func Usage() string {
	var cfg App
	text, err := cleanenv.GetDescription(&cfg, nil)
	if err != nil {
		return err.Error()
	}
	return text
}
