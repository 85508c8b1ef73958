/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the dbkey configuration
type Config struct {
	DataDir    string   `yaml:"data_dir"`
	SchemaPath string   `yaml:"schema"`
	Port       int      `yaml:"port"`
	Bind       string   `yaml:"bind"`
	Storage    Storage  `yaml:"storage"`
	Security   Security `yaml:"security"`
	Display    Display  `yaml:"display"`
	Logging    Logging  `yaml:"logging"`
}

// Storage selects the engine that holds values
type Storage struct {
	// Engine is pebble, log or memory.
	Engine string `yaml:"engine"`
	Sync   bool   `yaml:"sync"`
}

// Security contains security-related configuration
type Security struct {
	// APIKey guards the HTTP API. Empty disables authentication.
	APIKey string `yaml:"api_key"`
	// MaxValueSize caps the size of values accepted over HTTP.
	MaxValueSize int64 `yaml:"max_value_size"`
}

// Display controls how keys are printed
type Display struct {
	// Format is one of compact, std, lower_hex, upper_hex,
	// pretty_lower_hex or pretty_upper_hex.
	Format string `yaml:"format"`
}

// Logging contains logging configuration
type Logging struct {
	Level string `yaml:"level"`
}

// RequestLog reports whether HTTP requests should be logged.
func (l Logging) RequestLog() bool {
	return l.Level == "debug"
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		DataDir:    "./data",
		SchemaPath: "./schema.yaml",
		Port:       8080,
		Bind:       "127.0.0.1",
		Storage: Storage{
			Engine: "pebble",
		},
		Security: Security{
			APIKey:       "auto",
			MaxValueSize: 1 << 20,
		},
		Display: Display{
			Format: "compact",
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from the specified path
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Fields missing from the file keep their defaults.
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves the configuration to the specified path with secure permissions
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// The file holds the API key.
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateSecureKey generates a cryptographically secure random key
func GenerateSecureKey(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure key: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// BootstrapConfig creates a new configuration with a generated API key and
// saves it to configPath. The schema path defaults to schema.yaml next to the
// config file.
func BootstrapConfig(configPath string, dataDir string) (*Config, error) {
	config := DefaultConfig()
	if dataDir != "" {
		config.DataDir = dataDir
	}
	config.SchemaPath = filepath.Join(filepath.Dir(configPath), "schema.yaml")

	apiKey, err := GenerateSecureKey(32) // 256 bits
	if err != nil {
		return nil, fmt.Errorf("failed to generate API key: %w", err)
	}
	config.Security.APIKey = apiKey

	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save bootstrap config: %w", err)
	}

	return config, nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./dbkey.yaml"
	}

	// ~/.config/dbkey/config.yaml on Linux and macOS
	configDir := filepath.Join(homeDir, ".config", "dbkey")
	return filepath.Join(configDir, "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
