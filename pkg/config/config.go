// Package config loads hexcede's process settings from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the settings shared by the CLI and the HTTP server.
type Config struct {
	Addr           string        `env:"HEXCEDE_ADDR" envDefault:":8080"`
	Padding        float64       `env:"HEXCEDE_PADDING" envDefault:"32"`
	EvalTimeout    time.Duration `env:"HEXCEDE_EVAL_TIMEOUT" envDefault:"5s"`
	MaxScriptBytes int           `env:"HEXCEDE_MAX_SCRIPT_BYTES" envDefault:"65536"`
}

// Load reads Config from the environment and checks it.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate rejects settings no component can run with.
func (c Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr is empty"))
	}
	if c.Padding < 0 {
		errs = append(errs, fmt.Errorf("padding %v is negative", c.Padding))
	}
	if c.EvalTimeout <= 0 {
		errs = append(errs, fmt.Errorf("eval timeout %s must be positive", c.EvalTimeout))
	}
	if c.MaxScriptBytes < 0 {
		errs = append(errs, fmt.Errorf("max script bytes %d is negative", c.MaxScriptBytes))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
