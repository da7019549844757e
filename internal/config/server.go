// Package config loads the server settings from the environment and the
// client profile from a TOML file.
package config

import (
	"fmt"
	"strconv"

	"github.com/caarlos0/env/v11"

	"github.com/julianstephens/littlesteps/internal/logger"
	"github.com/julianstephens/littlesteps/internal/storage"
)

// Server holds the settings of the API server.
type Server struct {
	Port int `env:"PORT" envDefault:"3001"`
	// State is a .json path, a SQLite path or a postgres:// URL
	State        string `env:"LITTLESTEPS_STATE" envDefault:"/data/state.json"`
	DefaultState string `env:"LITTLESTEPS_DEFAULT_STATE"`
	Backups      bool   `env:"LITTLESTEPS_BACKUPS" envDefault:"true"`
	Debug        bool   `env:"LITTLESTEPS_DEBUG"`
	LogDir       string `env:"LITTLESTEPS_LOG_DIR"`
}

// LoadServer reads the server settings from the environment.
func LoadServer() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (s Server) Validate() error {
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("invalid port %d", s.Port)
	}
	if s.State == "" {
		return fmt.Errorf("state location cannot be empty")
	}
	return nil
}

// Addr is the listen address for the port.
func (s Server) Addr() string {
	return ":" + strconv.Itoa(s.Port)
}

func (s Server) StoreOptions() storage.Options {
	return storage.Options{
		DefaultStatePath: s.DefaultState,
		Backups:          s.Backups,
	}
}

func (s Server) LoggerConfig() logger.Config {
	return logger.Config{
		Debug:  s.Debug,
		LogDir: s.LogDir,
		Stderr: true,
	}
}
