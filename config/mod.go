// Package config reads the defaults of the command-line tool from the
// environment. Flags always take precedence over these values.
package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
	"golang.org/x/xerrors"
)

// Config is the environment configuration.
type Config struct {
	// DB is the path of the suite library.
	DB string `env:"SCTESTER_DB" envDefault:"suites.db"`

	// LogLevel is the level of the global logger.
	LogLevel string `env:"LLVL" envDefault:"info"`

	// Protocol is pinned to the suites that do not set one.
	Protocol string `env:"SCTESTER_PROTOCOL"`
}

// Load returns the configuration of the process environment.
func Load() (Config, error) {
	return LoadFrom(nil)
}

// LoadFrom returns the configuration of the given environment. A nil map reads
// the process environment.
func LoadFrom(environ map[string]string) (Config, error) {
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}

	var cfg Config

	err := env.ParseWithOptions(&cfg, opts)
	if err != nil {
		return Config{}, xerrors.Errorf("failed to parse environment: %v", err)
	}

	_, err = zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return Config{}, xerrors.Errorf("invalid log level: %v", err)
	}

	return cfg, nil
}
