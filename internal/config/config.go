package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// DefaultJWTSecret is only meant for local development.
const DefaultJWTSecret = "devboard-secret-key-change-me"

type Config struct {
	Port            string        `env:"PORT, default=8080"`
	GinMode         string        `env:"GIN_MODE, default=debug"`
	LogLevel        string        `env:"LOG_LEVEL, default=info"`
	LogPretty       bool          `env:"LOG_PRETTY, default=false"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=10s"`

	TaskUpdatePolicy string `env:"TASK_UPDATE_POLICY, default=any"`
	SeedSampleData   bool   `env:"SEED_SAMPLE_DATA, default=false"`
	OpenAIAPIKey     string `env:"OPENAI_API_KEY"`

	Database  DatabaseConfig
	JWT       JWTConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
}

type DatabaseConfig struct {
	Driver   string `env:"DB_DRIVER, default=mysql"`
	DSN      string `env:"DB_DSN"`
	Host     string `env:"DB_HOST, default=localhost"`
	Port     string `env:"DB_PORT, default=3306"`
	User     string `env:"DB_USER, default=devboard"`
	Password string `env:"DB_PASSWORD, default=devboard"`
	Name     string `env:"DB_NAME, default=devboard"`
	LogLevel string `env:"DB_LOG_LEVEL, default=warn"`
}

type JWTConfig struct {
	Secret     string        `env:"JWT_SECRET, default=devboard-secret-key-change-me"`
	Expiration time.Duration `env:"JWT_EXPIRATION, default=24h"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

// Enabled reports whether a Redis address was configured.
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

type RateLimitConfig struct {
	LoginRate  float64 `env:"LOGIN_RATE_LIMIT, default=0.2"`
	LoginBurst float64 `env:"LOGIN_RATE_BURST, default=5"`
}

// Load reads configuration from the process environment.
func Load() (*Config, error) {
	return LoadWith(envconfig.OsLookuper())
}

// LoadWith reads configuration from the given lookuper.
func LoadWith(l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(context.Background(), &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("config: unsupported DB_DRIVER %q", c.Database.Driver)
	}
	switch c.TaskUpdatePolicy {
	case "any", "participants":
	default:
		return fmt.Errorf("config: unsupported TASK_UPDATE_POLICY %q", c.TaskUpdatePolicy)
	}
	if c.JWT.Expiration <= 0 {
		return fmt.Errorf("config: JWT_EXPIRATION must be positive")
	}
	return nil
}

// UsesDefaultSecret reports whether the JWT key was left at its development default.
func (c *Config) UsesDefaultSecret() bool {
	return c.JWT.Secret == DefaultJWTSecret
}
