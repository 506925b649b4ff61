package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration.
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	Gemini struct {
		APIKey     string        `yaml:"api_key"`
		Model      string        `yaml:"model"`
		DeepModel  string        `yaml:"deep_model"`
		MaxRetries int           `yaml:"max_retries"`
		RetryDelay time.Duration `yaml:"retry_delay"`
	} `yaml:"gemini"`
}

// LoadConfig loads configuration from a YAML file.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	// Set defaults
	if config.Server.Port == "" {
		config.Server.Port = "8080"
	}
	if config.Gemini.Model == "" {
		config.Gemini.Model = "gemini-2.5-flash"
	}
	if config.Gemini.DeepModel == "" {
		config.Gemini.DeepModel = "gemini-2.5-pro"
	}
	if config.Gemini.MaxRetries == 0 {
		config.Gemini.MaxRetries = 3
	}
	if config.Gemini.RetryDelay == 0 {
		config.Gemini.RetryDelay = 2 * time.Second
	}

	// Expand environment variables so the key never lives in the file
	config.Gemini.APIKey = os.ExpandEnv(config.Gemini.APIKey)

	return config, nil
}
