package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	defaultPort     = 4055
	defaultLogLevel = "warn"
	defaultMaxDepth = 64
)

// Config represents the service configuration
type Config struct {
	Port     int    `yaml:"port,omitempty"`
	LogLevel string `yaml:"loglevel,omitempty"`

	// Store is the path of the YAML dataset catalog to serve
	Store string `yaml:"store,omitempty"`

	// MaxQueryDepth bounds the nesting of parsed query expressions
	MaxQueryDepth int `yaml:"maxQueryDepth,omitempty"`
}

// LoadFile loads the configuration from a YAML file and applies defaults.
// An empty path yields the default configuration.
func LoadFile(file string) (*Config, error) {
	cfg := &Config{}

	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", file, err)
		}

		if len(data) == 0 {
			return nil, fmt.Errorf("EOF: config file '%s' is empty", file)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config file '%s': %w", file, err)
		}
	}

	ApplyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyDefaults sets default values for configuration fields if they are empty
func ApplyDefaults(cfg *Config) {
	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	if cfg.MaxQueryDepth == 0 {
		cfg.MaxQueryDepth = defaultMaxDepth
	}
}

func validate(cfg *Config) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("invalid port %d", cfg.Port)
	}
	if cfg.MaxQueryDepth < 1 {
		return fmt.Errorf("invalid maximum query depth %d", cfg.MaxQueryDepth)
	}
	return nil
}
