// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Cache (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// Public base URL for checkout return links (e.g. https://northpoledirect.com).
	// When empty the base URL is inferred per request: PublicHost first,
	// then the inbound Host header.
	BaseURL string `env:"BASE_URL" envDefault:""`

	// PublicHost is the platform-provided hostname (no scheme), used as a
	// fallback when BASE_URL is unset.
	PublicHost string `env:"PUBLIC_HOST" envDefault:""`

	// Stripe
	StripeSecretKey     string `env:"STRIPE_SECRET_KEY,required"`
	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET,required"`

	// Credit pack sold at checkout
	CreditPackSize       int   `env:"CREDIT_PACK_SIZE" envDefault:"5"`
	CreditPackPriceCents int64 `env:"CREDIT_PACK_PRICE_CENTS" envDefault:"500"`

	// Artificial "Santa is thinking" delay on the chat endpoint
	SantaDelay time.Duration `env:"SANTA_DELAY" envDefault:"2s"`

	// Auth token lifetimes
	LoginTokenTTL time.Duration `env:"LOGIN_TOKEN_TTL" envDefault:"15m"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"720h"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"15s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Rate limiting for the chat endpoint (per session)
	RateLimitChatEnabled bool `env:"RATE_LIMIT_CHAT_ENABLED" envDefault:"true"`
	RateLimitChatRPM     int  `env:"RATE_LIMIT_CHAT_RPM" envDefault:"10"`
	RateLimitChatBurst   int  `env:"RATE_LIMIT_CHAT_BURST" envDefault:"3"`

	// Request body size limit in bytes (payloads here are tiny)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"65536"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.CreditPackSize <= 0 {
		return nil, fmt.Errorf("CREDIT_PACK_SIZE must be positive, got %d", cfg.CreditPackSize)
	}
	if cfg.CreditPackPriceCents <= 0 {
		return nil, fmt.Errorf("CREDIT_PACK_PRICE_CENTS must be positive, got %d", cfg.CreditPackPriceCents)
	}
	return cfg, nil
}
