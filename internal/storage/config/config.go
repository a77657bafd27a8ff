package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"penumbra/internal/domain"

	"gopkg.in/yaml.v3"
)

// LogConfig controls the rotated log file
type LogConfig struct {
	File       string `yaml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb,omitempty"`
	MaxBackups int    `yaml:"max_backups,omitempty"`
}

// HookConfig holds scripts run around an operation
type HookConfig struct {
	Before string `yaml:"before,omitempty"`
	After  string `yaml:"after,omitempty"`
}

// HooksConfig holds the deploy and undeploy hooks
type HooksConfig struct {
	Deploy   HookConfig `yaml:"deploy,omitempty"`
	Undeploy HookConfig `yaml:"undeploy,omitempty"`
	Timeout  int        `yaml:"timeout_seconds,omitempty"` // Per script; 0 uses the default
}

// Config holds global application settings
type Config struct {
	ModDirectory          string            `yaml:"mod_directory"`
	DefaultCollection     string            `yaml:"default_collection"`
	DisableSoundStreaming bool              `yaml:"disable_sound_streaming"`
	ItemTable             string            `yaml:"item_table,omitempty"`
	DefaultLinkMethod     domain.LinkMethod `yaml:"default_link_method"`
	Keybindings           string            `yaml:"keybindings"`
	Log                   LogConfig         `yaml:"log,omitempty"`
	Hooks                 HooksConfig       `yaml:"hooks,omitempty"`
}

// Load reads configuration from the given directory
func Load(configDir string) (*Config, error) {
	cfg := &Config{
		DefaultCollection: "Default",
		DefaultLinkMethod: domain.LinkSymlink,
		Keybindings:       "vim",
	}

	configPath := filepath.Join(configDir, "config.yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil // Return defaults
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.DefaultCollection == "" {
		cfg.DefaultCollection = "Default"
	}

	return cfg, nil
}

// Save writes configuration to the given directory
func (c *Config) Save(configDir string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	configPath := filepath.Join(configDir, "config.yaml")
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// ModPath returns the mod directory, defaulting to <dataDir>/mods
func (c *Config) ModPath(dataDir string) string {
	if c.ModDirectory != "" {
		return c.ModDirectory
	}
	return filepath.Join(dataDir, "mods")
}
