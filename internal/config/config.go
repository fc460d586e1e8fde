// Package config loads the pin-mapper configuration file.
//
//	storage:
//	  backend: file        # file | sqlite
//	  path: ./composites   # directory for file, database file for sqlite
//	  format: json         # json | yaml, file backend only
//	numbering: index       # index | ordinal
//	strict_types: false
//	log:
//	  level: info
//	  development: false
package config

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"pin-mapper/internal/engine"
	"pin-mapper/internal/store"
)

// Storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Defaults.
const (
	DefaultStoragePath = "composites"
	DefaultSQLitePath  = "composites.db"
	DefaultLogLevel    = "info"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the root of the configuration file.
type Config struct {
	Storage     Storage                `yaml:"storage"`
	Numbering   engine.NumberingScheme `yaml:"numbering"`
	StrictTypes bool                   `yaml:"strict_types"`
	Log         Log                    `yaml:"log"`
}

// Storage selects where composite definitions are kept.
type Storage struct {
	Backend string       `yaml:"backend"`
	Path    string       `yaml:"path"`
	Format  store.Format `yaml:"format"`
}

// Log configures the zap logger.
type Log struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config

	applyDefaults(&cfg)

	return &cfg
}

// LoadFile loads and parses a YAML configuration file from the given path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML data into a Config and validates it.
func Parse(data []byte) (*Config, error) {
	var cfg Config

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(cfg *Config) {
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = BackendFile
	}

	if cfg.Storage.Path == "" {
		cfg.Storage.Path = DefaultStoragePath
		if cfg.Storage.Backend == BackendSQLite {
			cfg.Storage.Path = DefaultSQLitePath
		}
	}

	if cfg.Storage.Format == "" {
		cfg.Storage.Format = store.FormatJSON
	}

	if cfg.Numbering == "" {
		cfg.Numbering = engine.NumberByIndex
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.Storage.Backend {
	case BackendFile, BackendSQLite:
	default:
		errs = append(errs, fmt.Errorf("storage.backend: unknown backend %q", c.Storage.Backend))
	}

	if !c.Storage.Format.IsValid() {
		errs = append(errs, fmt.Errorf("storage.format: unknown format %q", c.Storage.Format))
	}

	if !c.Numbering.IsValid() {
		errs = append(errs, fmt.Errorf("numbering: unknown scheme %q", c.Numbering))
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	if len(errs) == 0 {
		return nil
	}

	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

// Marshal serializes a Config to YAML.
func Marshal(cfg *Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}
