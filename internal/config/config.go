// Package config loads disviz settings from an optional YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"disviz/internal/layout"
	"disviz/internal/pager"
)

// Config represents configuration for the disviz tool
type Config struct {
	SystemPrefixes []string `yaml:"systemPrefixes" json:"systemPrefixes" jsonschema:"title=System Prefixes,description=Source path prefixes treated as built-in code"`
	BlocksPerPage  int      `yaml:"blocksPerPage" json:"blocksPerPage" jsonschema:"title=Blocks Per Page,description=Number of blocks served per page,minimum=1"`
	Workers        int      `yaml:"workers" json:"workers" jsonschema:"title=Workers,description=Functions laid out concurrently,minimum=1"`
	Debug          bool     `yaml:"debug" json:"debug" jsonschema:"title=Debug,description=Enable debug logging"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		SystemPrefixes: append([]string(nil), layout.DefaultSystemPrefixes...),
		BlocksPerPage:  pager.DefaultBlocksPerPage,
		Workers:        runtime.GOMAXPROCS(0),
	}
}

// Load builds a configuration from defaults, the YAML file at path (if path is
// non-empty) and environment overrides, in that order.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("DISVIZ_SYSTEM_PREFIXES"); v != "" {
		c.SystemPrefixes = strings.Split(v, ":")
	}
	for _, e := range []struct {
		key string
		dst *int
	}{
		{"DISVIZ_BLOCKS_PER_PAGE", &c.BlocksPerPage},
		{"DISVIZ_WORKERS", &c.Workers},
	} {
		v := os.Getenv(e.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", e.key, err)
		}
		*e.dst = n
	}
	return nil
}

// Validate reports settings the layout core cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.BlocksPerPage <= 0 {
		errs = append(errs, fmt.Errorf("blocksPerPage must be positive, got %d", c.BlocksPerPage))
	}
	if c.Workers <= 0 {
		errs = append(errs, fmt.Errorf("workers must be positive, got %d", c.Workers))
	}
	return errors.Join(errs...)
}

// LayoutOptions converts the configuration for layout.Build.
func (c Config) LayoutOptions() layout.Options {
	return layout.Options{SystemPrefixes: c.SystemPrefixes, Workers: c.Workers}
}
