package main

import (
	"strings"
	"time"

	pkgconfig "github.com/iflis7/iyuc-store/pkg/config"
)

const defaultAdminBase = "http://medusa:9000"

// Config holds the seeding CLI settings. Values come from the environment,
// optionally primed from a .env file.
type Config struct {
	InternalURL string `env:"MEDUSA_API_INTERNAL_URL"`
	BackendURL  string `env:"MEDUSA_BACKEND_URL"`
	AdminAPIKey string `env:"MEDUSA_ADMIN_API_KEY"`
	UseBasic    bool   `env:"MEDUSA_USE_BASIC" envDefault:"false"`

	RequestsPerSecond float64       `env:"SEED_RPS" envDefault:"10"`
	Timeout           time.Duration `env:"SEED_TIMEOUT" envDefault:"30s"`
	LogLevel          string        `env:"LOG_LEVEL" envDefault:"info"`
}

func loadConfig(envFile string) (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.LoadDotenv(cfg, envFile); err != nil {
		return nil, err
	}
	return cfg, nil
}

// BaseURL prefers the internal URL, which is reachable from one-off
// containers, over the public backend URL.
func (c *Config) BaseURL() string {
	base := c.InternalURL
	if base == "" {
		base = c.BackendURL
	}
	if base == "" {
		base = defaultAdminBase
	}
	return strings.TrimRight(base, "/")
}
