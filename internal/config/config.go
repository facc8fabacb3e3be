// Package config loads the pldexport configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"
)

// Config holds the defaults the CLI falls back to when flags are not given.
type Config struct {
	DefaultTarget string `toml:"default_target"`
	CatalogDir    string `toml:"catalog_dir"` // extra device descriptors, may be empty
	LogLevel      string `toml:"log_level"`
	Parallel      int    `toml:"parallel"` // concurrent exports, 0 = GOMAXPROCS
	Title         string `toml:"title"`    // header title override, empty = project name
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DefaultTarget: "tt2",
		LogLevel:      "info",
	}
}

// DefaultPath returns ~/.config/pldexport/config.toml (or the platform
// equivalent).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: %w", err)
	}
	return filepath.Join(dir, "pldexport", "config.toml"), nil
}

// Load reads path on top of the defaults and applies PLDEXPORT_*
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		md, err := toml.DecodeFile(path, cfg)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("config: decode %s: %w", path, err)
		default:
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				return nil, fmt.Errorf("config: %s: unknown key %s", path, undecoded[0])
			}
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from PLDEXPORT_TARGET, PLDEXPORT_CATALOG,
// PLDEXPORT_LOG_LEVEL and PLDEXPORT_PARALLEL.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("PLDEXPORT_TARGET"); ok && v != "" {
		c.DefaultTarget = v
	}
	if v, ok := lookup("PLDEXPORT_CATALOG"); ok {
		c.CatalogDir = v
	}
	if v, ok := lookup("PLDEXPORT_LOG_LEVEL"); ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := lookup("PLDEXPORT_PARALLEL"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: PLDEXPORT_PARALLEL: %w", err)
		}
		c.Parallel = n
	}
	return nil
}

// Validate checks field ranges and the log level name.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DefaultTarget) == "" {
		return errors.New("config: default_target is empty")
	}
	if c.Parallel < 0 {
		return fmt.Errorf("config: parallel must not be negative, got %d", c.Parallel)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (logrus.Level, error) {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return 0, fmt.Errorf("config: log_level: %w", err)
	}
	return lvl, nil
}
