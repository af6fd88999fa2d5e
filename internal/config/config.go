// Package config layers daemon configuration: defaults, then an optional
// YAML file, then OPERATOR_* environment variables.
package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// #region config

// Config is the daemon configuration.
type Config struct {
	DBPath             string        `koanf:"db_path"`
	Addr               string        `koanf:"addr"`
	DataDir            string        `koanf:"data_dir"`
	Model              string        `koanf:"model"`
	GenerationEnabled  bool          `koanf:"generation_enabled"`
	RefreshInterval    time.Duration `koanf:"refresh_interval"`
	BaselineWindowDays int           `koanf:"baseline_window_days"`
}

// New returns the defaults.
func New() *Config {
	return &Config{
		DBPath:             "operator-state.db",
		Addr:               ":8321",
		DataDir:            "data",
		Model:              "",
		GenerationEnabled:  true,
		RefreshInterval:    30 * time.Minute,
		BaselineWindowDays: 30,
	}
}

// #endregion config

// #region load

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if OPERATOR_CONFIG is set
//  3. env (prefix OPERATOR_)
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("OPERATOR_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// OPERATOR_DB_PATH -> db_path, OPERATOR_REFRESH_INTERVAL -> refresh_interval
	envProvider := env.Provider("OPERATOR_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "operator_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if cfg.Addr == "" {
		return nil, errors.New("addr must not be empty")
	}
	if cfg.DBPath == "" {
		return nil, errors.New("db_path must not be empty")
	}
	if cfg.BaselineWindowDays < 7 {
		return nil, errors.New("baseline_window_days must be at least 7")
	}
	return &cfg, nil
}

// #endregion load
