// Package config loads and persists cleankeys settings, including the
// configured unlock trigger.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cleankeys/cleankeys/pkg/hotkey"
)

// Config holds all configuration for cleankeys.
type Config struct {
	// Hotkey is the persisted unlock trigger record. Absent means the
	// built-in default: double press of Shift.
	Hotkey *hotkey.Record `yaml:"hotkey,omitempty"`

	// DoublePressWindow is how long a second press may trail the first
	// for the double-press gesture.
	DoublePressWindow time.Duration `yaml:"double_press_window"`

	// Quiet disables notifications and the status line.
	Quiet bool `yaml:"quiet"`

	// NotifyOnUnlock posts a notification when input is unlocked.
	NotifyOnUnlock bool `yaml:"notify_on_unlock"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		DoublePressWindow: 500 * time.Millisecond,
		NotifyOnUnlock:    true,
	}
}

// Load loads configuration from file and environment. A missing or
// damaged config file degrades to defaults; locking must never be
// blocked by bad settings.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if path := Path(); path != "" {
		if err := loadFromFile(cfg, path); err != nil && !os.IsNotExist(err) {
			cfg = DefaultConfig()
		}
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	normalize(cfg)
	return cfg, nil
}

// Path returns the config file path.
func Path() string {
	if path := os.Getenv("CLEANKEYS_CONFIG"); path != "" {
		return path
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "cleankeys", "config.yaml")
	}

	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "cleankeys", "config.yaml")
	}

	return ""
}

// Save writes the configuration to path, creating the directory if
// needed. This is how a reconfigured trigger is persisted.
func (c *Config) Save(path string) error {
	if path == "" {
		return fmt.Errorf("no config path available")
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Trigger returns the configured unlock trigger, falling back to the
// built-in default when nothing usable is stored.
func (c *Config) Trigger() hotkey.Trigger {
	if c.Hotkey == nil {
		return hotkey.Default()
	}

	t, err := hotkey.FromRecord(*c.Hotkey)
	if err != nil {
		return hotkey.Default()
	}
	return t
}

// SetTrigger stores t as the persisted trigger record.
func (c *Config) SetTrigger(t hotkey.Trigger) {
	r := t.Record()
	c.Hotkey = &r
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(cfg *Config, path string) error {
	// #nosec G304 - The config file path comes from trusted sources (env var or standard locations)
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// loadFromEnv loads configuration from environment variables.
func loadFromEnv(cfg *Config) error {
	if window := os.Getenv("CLEANKEYS_WINDOW"); window != "" {
		d, err := time.ParseDuration(window)
		if err != nil {
			return fmt.Errorf("invalid CLEANKEYS_WINDOW: %w", err)
		}
		cfg.DoublePressWindow = d
	}

	if quiet := os.Getenv("CLEANKEYS_QUIET"); quiet != "" {
		v, err := parseBool("CLEANKEYS_QUIET", quiet)
		if err != nil {
			return err
		}
		cfg.Quiet = v
	}

	if notify := os.Getenv("CLEANKEYS_NOTIFY"); notify != "" {
		v, err := parseBool("CLEANKEYS_NOTIFY", notify)
		if err != nil {
			return err
		}
		cfg.NotifyOnUnlock = v
	}

	return nil
}

func parseBool(name, value string) (bool, error) {
	switch value {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	default:
		return false, fmt.Errorf("invalid %s value: %q (use true/false)", name, value)
	}
}

// normalize clamps values that could never work back to defaults.
func normalize(cfg *Config) {
	if cfg.DoublePressWindow <= 0 {
		cfg.DoublePressWindow = 500 * time.Millisecond
	}
}
