// Package config loads pool configuration from YAML or JSON files and
// assembles configured pools.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jaredcasper/DALI/affinity"
	"github.com/jaredcasper/DALI/threadpool"
)

// Config holds the tunable parameters of a pool deployment. Load it once
// at startup; the struct is plain data and safe to share read-only.
type Config struct {
	// Workers is the number of pool workers. Zero means one per CPU.
	Workers int `yaml:"workers" json:"workers"`

	// SetAffinity pins each worker's OS thread to a CPU at startup.
	SetAffinity bool `yaml:"set_affinity" json:"set_affinity"`
}

// Default returns a Config with one worker per CPU and no thread pinning.
func Default() *Config {
	return &Config{
		Workers: runtime.NumCPU(),
	}
}

// Load reads a config file, picking the format by extension (.yaml, .yml
// or .json), and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	cfg := &Config{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %q: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %q: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("config: unsupported format %q", ext)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate normalizes the config: zero workers become one per CPU,
// negative counts are rejected.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("config: workers must not be negative, got %d", c.Workers)
	}
	if c.Workers == 0 {
		c.Workers = runtime.NumCPU()
	}
	return nil
}

// Build assembles a pool from the config. Additional options (logger,
// driver) are passed through to threadpool.New; a SetAffinity config
// installs the affinity initializer.
func (c *Config) Build(opts ...threadpool.Option) (*threadpool.Pool, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.SetAffinity {
		opts = append(opts, threadpool.WithInitializer(affinity.Pin()))
	}
	return threadpool.New(c.Workers, opts...)
}
