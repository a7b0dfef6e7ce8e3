// Package config loads the screenstack configuration from YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/halvard/screenstack/pkg/errors"
)

// Default configuration values exported for documentation and validation.
const (
	DefaultPollInterval = 50 * time.Millisecond
	DefaultLogLevel     = "info"
	DefaultShell        = "/bin/sh"
)

// Config represents the complete screenstack configuration.
type Config struct {
	Input InputConfig `yaml:"input"`
	Shell string      `yaml:"shell"`
	Log   LogConfig   `yaml:"log"`
	Theme ThemeConfig `yaml:"theme"`
}

// InputConfig controls the input polling loop.
type InputConfig struct {
	// PollIntervalMS is the input poll timeout in milliseconds.
	PollIntervalMS int `yaml:"poll_interval_ms"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Dir   string `yaml:"dir"`
	Level string `yaml:"level"`
}

// ThemeConfig overrides individual theme colors; empty values keep defaults.
type ThemeConfig struct {
	StatusFG        string `yaml:"status_fg"`
	StatusBG        string `yaml:"status_bg"`
	FocusedStatusFG string `yaml:"focused_status_fg"`
	FocusedStatusBG string `yaml:"focused_status_bg"`
	FlashFG         string `yaml:"flash_fg"`
	FlashBG         string `yaml:"flash_bg"`
}

// Default returns a config with all defaults applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// PollInterval returns the configured poll timeout.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Input.PollIntervalMS) * time.Millisecond
}

func (c *Config) applyDefaults() {
	if c.Input.PollIntervalMS <= 0 {
		c.Input.PollIntervalMS = int(DefaultPollInterval / time.Millisecond)
	}
	if c.Shell == "" {
		c.Shell = os.Getenv("SHELL")
	}
	if c.Shell == "" {
		c.Shell = DefaultShell
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}

// Load reads a config file. A missing file is not an error: defaults apply.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyDefaults()
			return cfg, nil
		}
		return nil, errors.Wrap(err, errors.ErrCodeConfigLoad,
			fmt.Sprintf("failed to read config %s", path))
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigParse,
			fmt.Sprintf("failed to parse config %s", path))
	}

	cfg.applyDefaults()
	return cfg, nil
}

// LoadDefault loads from $SCREENSTACK_CONFIG if set, otherwise from
// ~/.config/screenstack/config.yaml.
func LoadDefault() (*Config, error) {
	if path := os.Getenv("SCREENSTACK_CONFIG"); path != "" {
		return Load(path)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return Default(), nil
	}
	return Load(filepath.Join(home, ".config", "screenstack", "config.yaml"))
}
