// Package config loads client settings from an optional YAML file with
// environment variable overrides layered on top.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds everything the client needs to reach the quiz service.
type Config struct {
	Server struct {
		BaseURL string `yaml:"baseUrl" env:"BELLRING_SERVER"`
	} `yaml:"server"`
	Auth struct {
		TokenFile string `yaml:"tokenFile" env:"BELLRING_TOKEN_FILE"`
	} `yaml:"auth"`
	Cache struct {
		Path string `yaml:"path" env:"BELLRING_DB"`
	} `yaml:"cache"`
	Quiz struct {
		DefaultCount int    `yaml:"defaultCount" env:"BELLRING_QUIZ_COUNT"`
		ModeOverride string `yaml:"modeOverride" env:"BELLRING_MODE"`
	} `yaml:"quiz"`
}

const defaultBaseURL = "http://localhost:8080"

// Load reads the YAML file at path (missing file is fine, not an error),
// applies environment overrides, and fills in defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// No config file; env and defaults carry it.
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = defaultBaseURL
	}
	if cfg.Quiz.DefaultCount <= 0 {
		cfg.Quiz.DefaultCount = 5
	}
	return cfg, nil
}

// DefaultPath resolves the config file location:
// $XDG_CONFIG_HOME/bellring/config.yaml, falling back to
// ~/.config/bellring/config.yaml.
func DefaultPath() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "bellring", "config.yaml"), nil
}
