// Package config loads the loamcal application configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/loamcal/pkg/calendar"
)

const (
	defaultVault          = "."
	defaultAdapter        = "fs"
	defaultSystemDir      = ".loam"
	defaultListen         = "127.0.0.1:8080"
	defaultTimeTextFormat = "%H:%M"
	defaultHorizonDays    = 31
)

// Config is the top-level application configuration.
type Config struct {
	// Vault is the adapter URI: a directory for "fs", a database file for "sqlite".
	Vault     string `yaml:"vault" json:"vault"`
	Adapter   string `yaml:"adapter" json:"adapter"`
	SystemDir string `yaml:"system_dir" json:"system_dir"`

	// Listen is the HTTP listen address of the serve command.
	Listen string `yaml:"listen" json:"listen"`

	// TimeTextFormat is the strftime layout of the time text shown in event cells.
	TimeTextFormat string `yaml:"time_text_format" json:"time_text_format"`

	// HorizonDays is the default window of the events and export commands.
	HorizonDays int `yaml:"horizon_days" json:"horizon_days"`

	Calendar calendar.Context `yaml:"calendar" json:"calendar"`
}

// envOverrides lists the settings that can be overridden from the environment.
// Only variables that are set replace the loaded values.
type envOverrides struct {
	Vault          string   `env:"LOAMCAL_VAULT"`
	Adapter        string   `env:"LOAMCAL_ADAPTER"`
	SystemDir      string   `env:"LOAMCAL_SYSTEM_DIR"`
	Listen         string   `env:"LOAMCAL_LISTEN"`
	TimeTextFormat string   `env:"LOAMCAL_TIME_TEXT_FORMAT"`
	HorizonDays    int      `env:"LOAMCAL_HORIZON_DAYS"`
	ReadOnly       bool     `env:"LOAMCAL_READ_ONLY"`
	Mobile         bool     `env:"LOAMCAL_MOBILE"`
	Filter         string   `env:"LOAMCAL_FILTER"`
	DefaultTags    []string `env:"LOAMCAL_DEFAULT_TAGS" envSeparator:","`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Normalize()
	return cfg
}

// Normalize fills in missing values with defaults.
func (c *Config) Normalize() {
	if c.Vault == "" {
		c.Vault = defaultVault
	}
	switch c.Adapter {
	case "fs", "sqlite":
	default:
		c.Adapter = defaultAdapter
	}
	if c.SystemDir == "" {
		c.SystemDir = defaultSystemDir
	}
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.TimeTextFormat == "" {
		c.TimeTextFormat = defaultTimeTextFormat
	}
	if c.HorizonDays <= 0 {
		c.HorizonDays = defaultHorizonDays
	}
	c.Calendar.Normalize()
}

// Load reads the YAML file at path, then applies LOAMCAL_* environment
// overrides. An empty path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.Normalize()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	o := envOverrides{
		Vault:          c.Vault,
		Adapter:        c.Adapter,
		SystemDir:      c.SystemDir,
		Listen:         c.Listen,
		TimeTextFormat: c.TimeTextFormat,
		HorizonDays:    c.HorizonDays,
		ReadOnly:       c.Calendar.ReadOnly,
		Mobile:         c.Calendar.Mobile,
		Filter:         c.Calendar.Filter,
		DefaultTags:    c.Calendar.DefaultTags,
	}
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	c.Vault = o.Vault
	c.Adapter = o.Adapter
	c.SystemDir = o.SystemDir
	c.Listen = o.Listen
	c.TimeTextFormat = o.TimeTextFormat
	c.HorizonDays = o.HorizonDays
	c.Calendar.ReadOnly = o.ReadOnly
	c.Calendar.Mobile = o.Mobile
	c.Calendar.Filter = o.Filter
	c.Calendar.DefaultTags = o.DefaultTags
	return nil
}

// Save writes cfg to path atomically with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}
	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".loamcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save delegates to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
