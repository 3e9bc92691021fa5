package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/Aphidet6/earth-bettashop/pkg/config"
)

// devJWTSecret is the fallback secret for local development. It must never
// reach a non-development deployment; Load rejects it there.
const devJWTSecret = "change-this-to-a-secure-secret"

// ProviderCredentials holds one OAuth provider's client credentials.
type ProviderCredentials struct {
	Name         string
	ClientID     string
	ClientSecret string
	CallbackURL  string
}

// Config holds all configuration for the storefront API.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"PORT" envDefault:"4000"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"storefront"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"storefront_secret"`
	PostgresDB   string `env:"POSTGRES_DB" envDefault:"storefront_db"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
	DBMaxConns   int32  `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns   int32  `env:"DB_MIN_CONNS" envDefault:"5"`

	// JWT
	JWTSecret     string        `env:"JWT_SECRET" envDefault:"change-this-to-a-secure-secret"`
	TokenLifetime time.Duration `env:"TOKEN_LIFETIME" envDefault:"12h"`

	// Login rate limiting
	LoginRateWindow time.Duration `env:"LOGIN_RATE_WINDOW" envDefault:"15m"`
	LoginRateMax    int           `env:"LOGIN_RATE_MAX" envDefault:"10"`

	// OAuth providers. A provider's routes are only registered when both its
	// client id and secret are present.
	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleCallbackURL  string `env:"GOOGLE_CALLBACK_URL" envDefault:"http://localhost:4000/api/auth/google/callback"`
	GithubClientID     string `env:"GITHUB_CLIENT_ID"`
	GithubClientSecret string `env:"GITHUB_CLIENT_SECRET"`
	GithubCallbackURL  string `env:"GITHUB_CALLBACK_URL" envDefault:"http://localhost:4000/api/auth/github/callback"`

	// Where provider callbacks redirect browsers after issuing a token.
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg, err := pkgconfig.Load[Config]()
	if err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if cfg.HTTPPort < 1 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid HTTP port: %d", cfg.HTTPPort)
	}
	if cfg.TokenLifetime <= 0 {
		return nil, fmt.Errorf("token lifetime must be positive, got %s", cfg.TokenLifetime)
	}
	if cfg.LoginRateMax < 1 || cfg.LoginRateWindow <= 0 {
		return nil, fmt.Errorf("invalid login rate limit: %d per %s", cfg.LoginRateMax, cfg.LoginRateWindow)
	}

	// Outside development, the signing secret must be explicitly set and strong.
	if cfg.Environment != "development" {
		if cfg.JWTSecret == devJWTSecret {
			return nil, fmt.Errorf("JWT_SECRET must be explicitly set via environment variable in %q mode", cfg.Environment)
		}
		if len(cfg.JWTSecret) < 32 {
			return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters long, got %d", len(cfg.JWTSecret))
		}
	}

	return cfg, nil
}

// EnabledProviders enumerates the OAuth providers whose credentials are
// configured. Route registration consumes this once at startup instead of
// branching on ambient environment state.
func (c *Config) EnabledProviders() []ProviderCredentials {
	var providers []ProviderCredentials
	if c.GoogleClientID != "" && c.GoogleClientSecret != "" {
		providers = append(providers, ProviderCredentials{
			Name:         "google",
			ClientID:     c.GoogleClientID,
			ClientSecret: c.GoogleClientSecret,
			CallbackURL:  c.GoogleCallbackURL,
		})
	}
	if c.GithubClientID != "" && c.GithubClientSecret != "" {
		providers = append(providers, ProviderCredentials{
			Name:         "github",
			ClientID:     c.GithubClientID,
			ClientSecret: c.GithubClientSecret,
			CallbackURL:  c.GithubCallbackURL,
		})
	}
	return providers
}
