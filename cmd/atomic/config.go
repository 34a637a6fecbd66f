package main

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is read from the working directory when --config is not
// given
const DefaultConfigFile = "atomic.yaml"

// Output formats for query solutions
const (
	FormatBlocks = "blocks"
	FormatTable  = "table"
)

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{FormatBlocks, FormatTable}

// Config holds the settings of the atomic CLI
type Config struct {
	// Store is the BadgerDB directory journaling facts and rules. Empty
	// keeps the database in memory.
	Store string `yaml:"store"`

	Color    bool   `yaml:"color"`
	Verbose  bool   `yaml:"verbose"`
	MaxDepth int    `yaml:"max_depth"`
	Format   string `yaml:"format"` // blocks | table
	// Page asks for confirmation before each further solution in the REPL
	Page bool `yaml:"page"`
}

// DefaultConfig returns the settings used when no file is present
func DefaultConfig() *Config {
	return &Config{
		Color:  true,
		Format: FormatBlocks,
		Page:   true,
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment variables override the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration as YAML
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if store := os.Getenv("ATOMIC_STORE"); store != "" {
		c.Store = store
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		c.Color = false
	}
	if v := os.Getenv("ATOMIC_NO_COLOR"); v != "" {
		if off, err := strconv.ParseBool(v); err == nil {
			c.Color = !off
		}
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	valid := false
	for _, f := range ValidFormats {
		if c.Format == f {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid format %q: must be one of %v", c.Format, ValidFormats)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("invalid max_depth %d: must not be negative", c.MaxDepth)
	}
	return nil
}
