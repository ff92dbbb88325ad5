// Package config handles reading and writing .atelier/config.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level structure for .atelier/config.yaml.
type Config struct {
	Version  int                     `yaml:"version"`
	Provider ProviderConfig          `yaml:"provider"`
	Modes    map[string]ModeOverride `yaml:"modes,omitempty"`
	UI       UIConfig                `yaml:"ui"`
}

// ProviderConfig holds the global provider selection and credentials.
type ProviderConfig struct {
	Selected string            `yaml:"selected"`
	Model    string            `yaml:"model"`
	APIKeys  map[string]string `yaml:"api_keys,omitempty"`
}

// ModeOverride is a per-mode provider preference. Empty fields inherit
// the global selection.
type ModeOverride struct {
	Provider string `yaml:"provider,omitempty"`
	Model    string `yaml:"model,omitempty"`
}

// UIConfig controls workspace display behaviour.
type UIConfig struct {
	ShowThinking bool   `yaml:"show_thinking"`
	Theme        string `yaml:"theme"`
}

const configDir = ".atelier"
const configFile = "config.yaml"

// Dir returns the path of the .atelier directory under root.
func Dir(root string) string {
	return filepath.Join(root, configDir)
}

// ReadConfig reads .atelier/config.yaml from the given workspace directory.
// dir is the workspace root (not .atelier/ itself).
// Returns an error if the file is not found or YAML is malformed.
func ReadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, configDir, configFile)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}

// WriteConfig writes cfg to .atelier/config.yaml in the given directory.
// Creates the .atelier/ directory if it does not exist.
func WriteConfig(dir string, cfg *Config) error {
	dirPath := filepath.Join(dir, configDir)
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	path := filepath.Join(dirPath, configFile)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Provider: ProviderConfig{
			Selected: "google",
		},
		UI: UIConfig{
			ShowThinking: true,
			Theme:        "dark",
		},
	}
}

// APIKey returns the stored credential for a provider name, or "".
func (c *Config) APIKey(providerName string) string {
	return c.Provider.APIKeys[providerName]
}

// SetAPIKey stores a credential for a provider name.
func (c *Config) SetAPIKey(providerName, key string) {
	if c.Provider.APIKeys == nil {
		c.Provider.APIKeys = make(map[string]string)
	}
	c.Provider.APIKeys[providerName] = key
}
