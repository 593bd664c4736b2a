package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	AWSProfile  string `yaml:"aws_profile,omitempty"`
	AWSRegion   string `yaml:"aws_region,omitempty"`
	Environment string `yaml:"environment,omitempty"`
	VPCCIDR     string `yaml:"vpc_cidr,omitempty"`
}

// configDir can be overridden in tests.
var configDir = defaultConfigDir

// defaultConfigDir returns the config directory path (~/.vpcctl)
func defaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".vpcctl"
	}
	return filepath.Join(home, ".vpcctl")
}

// GetConfigPath returns the config file path (~/.vpcctl/config.yaml)
func GetConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// Load loads the configuration from ~/.vpcctl/config.yaml. A missing
// file yields an empty config.
func Load() (*Config, error) {
	data, err := os.ReadFile(GetConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// Save saves the configuration to ~/.vpcctl/config.yaml
func Save(cfg *Config) error {
	dir := configDir()

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(GetConfigPath(), data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SetDefaults persists the given defaults, leaving empty fields as they
// were.
func SetDefaults(profile, region, environment, cidr string) error {
	cfg, err := Load()
	if err != nil {
		cfg = &Config{}
	}

	if profile != "" {
		cfg.AWSProfile = profile
	}
	if region != "" {
		cfg.AWSRegion = region
	}
	if environment != "" {
		cfg.Environment = environment
	}
	if cidr != "" {
		cfg.VPCCIDR = cidr
	}

	return Save(cfg)
}

// GetSavedProfile returns the saved AWS profile from config
func GetSavedProfile() string {
	cfg, err := Load()
	if err != nil {
		return ""
	}
	return cfg.AWSProfile
}

// GetSavedRegion returns the saved AWS region from config
func GetSavedRegion() string {
	cfg, err := Load()
	if err != nil {
		return ""
	}
	return cfg.AWSRegion
}
