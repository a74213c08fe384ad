package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// MaxConfigSize is the largest override file Load accepts.
const MaxConfigSize = 1 << 20

// Load returns the defaults overlaid with the runner environment and the YAML
// file at path (if any). The result is validated.
func Load(path string) (Config, error) {
	cfg := Default().WithEnv(os.Getenv)

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := cfg.Merge(data); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Merge overlays the fields present in a YAML document onto c.
// Unknown fields are rejected so typos do not silently fall back to defaults.
func (c *Config) Merge(data []byte) error {
	if len(data) > MaxConfigSize {
		return fmt.Errorf("config too large (%d bytes, max %d)", len(data), MaxConfigSize)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return err
	}

	return nil
}

// WithEnv returns a copy of c with runner environment overrides applied.
func (c Config) WithEnv(getenv func(string) string) Config {
	if server := strings.TrimSpace(getenv("GITHUB_SERVER_URL")); server != "" {
		c.ServerURL = strings.TrimRight(server, "/")
	}
	return c
}
