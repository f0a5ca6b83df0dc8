package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type EngineConfig struct {
	Version int `yaml:"version"`
	Scene   struct {
		ID          string `yaml:"id"`
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
	} `yaml:"scene"`
	Network struct {
		APIPort int    `yaml:"api_port"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"network"`
	Scheduler struct {
		TickMS int `yaml:"tick_ms"`
	} `yaml:"scheduler"`
}

// APIPort returns the configured API port, defaulting to 8080 if not set.
func (c *EngineConfig) APIPort() int {
	if c.Network.APIPort == 0 {
		return 8080
	}
	return c.Network.APIPort
}

// BaseURL returns the externally visible base URL used when minting webhook
// endpoint URLs.
func (c *EngineConfig) BaseURL() string {
	if c.Network.BaseURL != "" {
		return c.Network.BaseURL
	}
	return fmt.Sprintf("http://localhost:%d", c.APIPort())
}

// TickInterval returns the tween tick interval, defaulting to 16ms.
func (c *EngineConfig) TickInterval() time.Duration {
	if c.Scheduler.TickMS <= 0 {
		return 16 * time.Millisecond
	}
	return time.Duration(c.Scheduler.TickMS) * time.Millisecond
}

func LoadEngineConfig(path string) (*EngineConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg EngineConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}

	if cfg.Version != 1 {
		return nil, fmt.Errorf("unsupported engine.yaml version: %d", cfg.Version)
	}

	return &cfg, nil
}
