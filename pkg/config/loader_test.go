package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type storefrontSettings struct {
	Port          int           `env:"LOADER_TEST_PORT" envDefault:"4000"`
	TokenLifetime time.Duration `env:"LOADER_TEST_TOKEN_LIFETIME" envDefault:"12h"`
	FrontendURL   string        `env:"LOADER_TEST_FRONTEND_URL" envDefault:"http://localhost:3000"`
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load[storefrontSettings]()

	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Port)
	assert.Equal(t, 12*time.Hour, cfg.TokenLifetime)
	assert.Equal(t, "http://localhost:3000", cfg.FrontendURL)
}

func TestLoad_FromEnvVars(t *testing.T) {
	t.Setenv("LOADER_TEST_PORT", "8081")
	t.Setenv("LOADER_TEST_TOKEN_LIFETIME", "30m")

	cfg, err := Load[storefrontSettings]()

	require.NoError(t, err)
	assert.Equal(t, 8081, cfg.Port)
	assert.Equal(t, 30*time.Minute, cfg.TokenLifetime)
}

type requiredSettings struct {
	SigningSecret string `env:"LOADER_TEST_JWT_SECRET,required"`
}

func TestLoad_RequiredFieldMissing(t *testing.T) {
	_, err := Load[requiredSettings]()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse environment")
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("LOADER_TEST_PORT", "not-a-port")

	_, err := Load[storefrontSettings]()
	require.Error(t, err)
}
