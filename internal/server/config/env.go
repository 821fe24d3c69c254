package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// parseEnv overlays variables from the process environment. A .env file in
// the working directory, when present, is loaded first; variables already
// set in the environment take precedence over it. Unset variables leave the
// current values untouched.
func parseEnv(cfg *Config) error {
	_ = godotenv.Load()

	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// FromEnv returns the defaults overlaid with the environment. Tools with
// their own flags use it instead of LoadConfig.
func FromEnv() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
