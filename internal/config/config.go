// Package config holds docmd's persistent CLI settings.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/renameio"
)

// Config is the full settings file; zero values fall back to defaults
// on load so a hand-edited partial file still works.
type Config struct {
	// OutputFormat is the default list/get presentation: table or json.
	OutputFormat string `json:"output_format"`
	// DefaultLimit caps list results when --limit is not given.
	DefaultLimit int `json:"default_limit"`
}

const (
	DefaultOutputFormat = "table"
	DefaultLimit        = 20
)

// Default returns the settings used before anything is configured.
func Default() Config {
	return Config{OutputFormat: DefaultOutputFormat, DefaultLimit: DefaultLimit}
}

// Path returns the settings file location under the user config dir.
func Path() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config directory: %w", err)
	}
	return filepath.Join(base, "docmd", "config.json"), nil
}

// Load reads settings from path; a missing file yields defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parsing %s: %w", path, err)
	}
	if cfg.OutputFormat == "" {
		cfg.OutputFormat = DefaultOutputFormat
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = DefaultLimit
	}
	return cfg, nil
}

// Save writes settings atomically, creating the directory as needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return renameio.WriteFile(path, append(data, '\n'), 0600)
}

// Get reads one setting by its file key.
func (c Config) Get(key string) (string, error) {
	switch key {
	case "output_format":
		return c.OutputFormat, nil
	case "default_limit":
		return strconv.Itoa(c.DefaultLimit), nil
	}
	return "", fmt.Errorf("unknown setting %q", key)
}

// Set updates one setting by its file key, validating the value.
func (c *Config) Set(key, value string) error {
	switch key {
	case "output_format":
		if value != "table" && value != "json" {
			return fmt.Errorf("output_format must be table or json, got %q", value)
		}
		c.OutputFormat = value
		return nil
	case "default_limit":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("default_limit must be a positive integer, got %q", value)
		}
		c.DefaultLimit = n
		return nil
	}
	return fmt.Errorf("unknown setting %q", key)
}
