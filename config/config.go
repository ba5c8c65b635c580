// Package config loads service configuration from the environment.
//
// A .env file is read first when present (local development), then the
// process environment takes over. Secrets such as the token signing key
// are never defaulted — Validate fails fast when they are missing.
package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Token delivery modes supported by the login endpoint.
const (
	DeliveryBearer = "bearer"
	DeliveryCookie = "cookie"
)

// Config is the process-wide configuration, immutable after Load.
type Config struct {
	Service   ServiceConfig
	Logging   LoggingConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Tracing   TracingConfig
	Profiling ProfilingConfig
	Server    ServerConfig
}

type ServiceConfig struct {
	Name    string `env:"SERVICE_NAME" env-default:"auth-service"`
	Version string `env:"SERVICE_VERSION" env-default:"dev"`
	Env     string `env:"SERVICE_ENV" env-default:"dev"`
	Port    string `env:"SERVICE_PORT" env-default:"8080"`
}

type LoggingConfig struct {
	Level string `env:"LOG_LEVEL" env-default:"info"`
}

type DatabaseConfig struct {
	DSN string `env:"DATABASE_DSN"`
}

// AuthConfig holds the signing key and token delivery settings.
// TokenSecret must come from the environment or a secret store;
// there is no default on purpose.
type AuthConfig struct {
	TokenSecret   string        `env:"AUTH_TOKEN_SECRET"`
	TokenTTL      time.Duration `env:"AUTH_TOKEN_TTL" env-default:"30m"`
	TokenDelivery string        `env:"AUTH_TOKEN_DELIVERY" env-default:"bearer"`
	CookieDomain  string        `env:"AUTH_COOKIE_DOMAIN" env-default:""`
	CookieSecure  bool          `env:"AUTH_COOKIE_SECURE" env-default:"false"`
}

type TracingConfig struct {
	Enabled    bool    `env:"TRACING_ENABLED" env-default:"false"`
	Endpoint   string  `env:"TRACING_ENDPOINT" env-default:"localhost:4318"`
	SampleRate float64 `env:"TRACING_SAMPLE_RATE" env-default:"1.0"`
}

type ProfilingConfig struct {
	Enabled  bool   `env:"PROFILING_ENABLED" env-default:"false"`
	Endpoint string `env:"PROFILING_ENDPOINT" env-default:"http://localhost:4040"`
}

type ServerConfig struct {
	ReadTimeout         time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout        time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"10s"`
	IdleTimeout         time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout     time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"15s"`
	ReadinessDrainDelay time.Duration `env:"READINESS_DRAIN_DELAY" env-default:"0s"`
}

// Load reads configuration from .env (best effort) and the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}
	return cfg, nil
}

// Validate checks settings that have no safe default.
func (c Config) Validate() error {
	if c.Database.DSN == "" {
		return fmt.Errorf("DATABASE_DSN is required")
	}
	if c.Auth.TokenSecret == "" {
		return fmt.Errorf("AUTH_TOKEN_SECRET is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("AUTH_TOKEN_TTL must be positive, got %s", c.Auth.TokenTTL)
	}
	switch c.Auth.TokenDelivery {
	case DeliveryBearer, DeliveryCookie:
	default:
		return fmt.Errorf("AUTH_TOKEN_DELIVERY must be %q or %q, got %q",
			DeliveryBearer, DeliveryCookie, c.Auth.TokenDelivery)
	}
	if c.Tracing.Enabled && (c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1) {
		return fmt.Errorf("TRACING_SAMPLE_RATE must be in [0,1], got %v", c.Tracing.SampleRate)
	}
	return nil
}

// GetShutdownTimeoutDuration returns the graceful shutdown timeout.
func (c Config) GetShutdownTimeoutDuration() time.Duration {
	return c.Server.ShutdownTimeout
}

// GetReadinessDrainDelayDuration returns how long to fail readiness
// before the HTTP server starts shutting down.
func (c Config) GetReadinessDrainDelayDuration() time.Duration {
	return c.Server.ReadinessDrainDelay
}
