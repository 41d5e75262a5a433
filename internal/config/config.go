// Package config models sprintline.yml, the server's single configuration
// file.
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config models sprintline.yml.
type Config struct {
	Server struct {
		Addr            string `yaml:"addr"`
		ShutdownSeconds int    `yaml:"shutdown_seconds"`
	} `yaml:"server"`
	Journal struct {
		Path string `yaml:"path"`
	} `yaml:"journal"`
	Game struct {
		JoinTokens int64 `yaml:"join_tokens"`
	} `yaml:"game"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Addr = ":8080"
	cfg.Server.ShutdownSeconds = 10
	cfg.Journal.Path = "sprintline.db"
	cfg.Game.JoinTokens = 0
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	return cfg
}

// Load reads and validates the config at path. A missing file yields the
// defaults; a present but malformed or unknown-keyed file is an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// FromYAML parses and validates config from raw YAML bytes. Unknown keys
// are rejected so typos fail loudly instead of silently falling back to a
// default.
func FromYAML(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("config.server.addr is required")
	}
	if c.Server.ShutdownSeconds <= 0 {
		return fmt.Errorf("config.server.shutdown_seconds must be positive")
	}
	if c.Journal.Path == "" {
		return fmt.Errorf("config.journal.path is required")
	}
	if c.Game.JoinTokens < 0 {
		return fmt.Errorf("config.game.join_tokens must not be negative")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config.log.level must be one of debug, info, warn, error")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config.log.format must be text or json")
	}
	return nil
}
