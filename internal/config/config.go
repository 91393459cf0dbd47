// Package config holds the engine and CLI configuration, loaded from a YAML
// file with sensible defaults for everything omitted.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config configures a surface engine session.
type Config struct {
	// Snapshot is the path of the serialized semantic snapshot database.
	Snapshot string `yaml:"snapshot"`

	// Package is the published package name used for package-relative import
	// specifiers and ranking hints.
	Package string `yaml:"package"`

	// RootDir is the configured root that import specifiers are computed
	// against, ahead of the conventional source directory.
	RootDir string `yaml:"root_dir"`

	// Entrypoints lists files treated as package entrypoints by the ranker.
	Entrypoints []string `yaml:"entrypoints"`

	// PreferredNames lists export names the ranker favors as roots.
	PreferredNames []string `yaml:"preferred_names"`

	// InternalMembers lists member names penalized as internal-client hops.
	InternalMembers []string `yaml:"internal_members"`

	// Concurrency bounds the worker pool used when iterating declarations.
	Concurrency int `yaml:"concurrency"`

	// MaxDepth overrides the defensive recursion limit for deep walks.
	MaxDepth int `yaml:"max_depth"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Snapshot:    "surface.db",
		Concurrency: 4,
	}
}

// Load reads and parses a configuration file. A missing file yields the
// defaults; a present but malformed file is an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Snapshot == "" {
		return fmt.Errorf("snapshot path must not be empty")
	}
	if cfg.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", cfg.Concurrency)
	}
	if cfg.MaxDepth < 0 {
		return fmt.Errorf("max_depth must be non-negative, got %d", cfg.MaxDepth)
	}
	return nil
}
