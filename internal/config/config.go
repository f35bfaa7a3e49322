// Package config loads the proxy's endpoint configuration from YAML, with
// environment-variable overrides layered on top.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config is the top-level configuration document: one or more endpoints,
// each with its own listening socket, upstream, and rule strings.
type Config struct {
	Endpoints []EndpointConfig `yaml:"endpoints"`
	Log       LogConfig        `yaml:"log"`
	Metrics   MetricsConfig    `yaml:"metrics"`
}

// EndpointConfig describes one local listening endpoint.
type EndpointConfig struct {
	Name         string   `yaml:"name"`
	SocketPath   string   `yaml:"socket_path"`
	UpstreamPath string   `yaml:"upstream_path"`
	Rules        []string `yaml:"rules"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the diagnostics HTTP listener exposing Prometheus metrics.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Load reads and parses a YAML configuration file at path, then applies
// AUTHSOCK_* environment variable overrides.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: opening %s: %w", path, err)
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("config: decoding %s: %w", path, err)
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnvOverrides applies environment variable overrides on top of the
// YAML-decoded document. Per-endpoint fields are not overridden this way —
// the endpoint list's shape varies per deployment and belongs in the file —
// but the ambient logging and metrics settings commonly need host-specific
// tweaks without editing the checked-in config.
func (c *Config) applyEnvOverrides() {
	c.Log.Level = getEnv("AUTHSOCK_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("AUTHSOCK_LOG_FORMAT", c.Log.Format)
	c.Metrics.Enabled = getEnvBool("AUTHSOCK_METRICS_ENABLED", c.Metrics.Enabled)
	c.Metrics.Addr = getEnv("AUTHSOCK_METRICS_ADDR", c.Metrics.Addr)
}

// Validate checks structural requirements Load cannot express in the YAML
// schema: at least one endpoint, and every endpoint has the fields a
// Mediator needs to run.
func (c *Config) Validate() error {
	if len(c.Endpoints) == 0 {
		return fmt.Errorf("config: no endpoints configured")
	}
	seen := make(map[string]struct{}, len(c.Endpoints))
	for _, ep := range c.Endpoints {
		if ep.SocketPath == "" {
			return fmt.Errorf("config: endpoint %q: socket_path is required", ep.Name)
		}
		if ep.UpstreamPath == "" {
			return fmt.Errorf("config: endpoint %q: upstream_path is required", ep.Name)
		}
		if _, dup := seen[ep.SocketPath]; dup {
			return fmt.Errorf("config: duplicate socket_path %q", ep.SocketPath)
		}
		seen[ep.SocketPath] = struct{}{}
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1"
	}
	return defaultVal
}

