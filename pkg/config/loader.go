// Package config populates settings structs from the process environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load builds a settings struct of type T from environment variables
// declared through `env` tags and returns it. Parse failures (missing
// required variables, malformed values) abort startup.
//
//	type Settings struct {
//	    Port          int           `env:"PORT" envDefault:"4000"`
//	    TokenLifetime time.Duration `env:"TOKEN_LIFETIME" envDefault:"12h"`
//	}
func Load[T any]() (*T, error) {
	cfg := new(T)
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
