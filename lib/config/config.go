// Copyright 2026 The Kiosk Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the configuration for the kiosk server.
type Config struct {
	// Server configures the HTTP listener.
	Server ServerConfig `yaml:"server"`

	// Resources configures how registered resources are served.
	Resources ResourcesConfig `yaml:"resources"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	// Address is the TCP listen address. Port 0 binds a free port.
	// Default: 127.0.0.1:0
	Address string `yaml:"address"`

	// ProxyPrefix is a base URL template used when the server sits
	// behind a reverse proxy. The literal {port} is replaced with the
	// bound port, so a JupyterHub deployment can set
	// "${JUPYTERHUB_SERVICE_PREFIX}proxy/{port}".
	// Default: "" (direct http://host:port URLs)
	ProxyPrefix string `yaml:"proxy_prefix"`

	// AllowedOrigins lists the origins accepted by the CORS layer.
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// ShutdownTimeout is how long graceful shutdown may run before
	// open connections are dropped.
	// Default: 5s
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// ResourcesConfig configures how registered resources are served.
type ResourcesConfig struct {
	// Manifest is the path to a JSONC resource manifest loaded at
	// startup.
	// Default: "" (no manifest)
	Manifest string `yaml:"manifest"`

	// BlockSize is the streaming block size in bytes for file and
	// directory resources.
	// Default: 65536
	BlockSize int `yaml:"block_size"`
}

// Default returns the default configuration. The defaults stand on
// their own: a kiosk started without a config file serves loopback
// traffic on a free port.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Address:         "127.0.0.1:0",
			AllowedOrigins:  []string{"*"},
			ShutdownTimeout: "5s",
		},
		Resources: ResourcesConfig{
			BlockSize: 64 * 1024,
		},
	}
}

// Load loads configuration from the KIOSK_CONFIG environment variable.
//
// This is the only way to load configuration without an explicit path.
// There are no fallbacks or automatic discovery - if KIOSK_CONFIG is
// not set, this fails. This ensures deterministic, auditable
// configuration with no hidden overrides.
func Load() (*Config, error) {
	configPath := os.Getenv("KIOSK_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("KIOSK_CONFIG environment variable not set; " +
			"set it to the path of your kiosk.yaml config file, or use --config flag")
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path.
//
// The config file is the single source of truth. Environment variables
// do not override config values. The only expansion performed is
// ${VAR} and ${VAR:-default} patterns in the proxy prefix and manifest
// path, so proxied deployments can reference variables such as
// JUPYTERHUB_SERVICE_PREFIX.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	cfg.expandVariables()

	return cfg, nil
}

// loadFile loads a single configuration file, merging into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, c)
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in the
// fields that commonly reference the environment.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}

	c.Server.ProxyPrefix = expandVars(c.Server.ProxyPrefix, vars)
	c.Resources.Manifest = expandVars(c.Resources.Manifest, vars)
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Address == "" {
		errs = append(errs, fmt.Errorf("server.address is required"))
	}

	if len(c.Server.AllowedOrigins) == 0 {
		errs = append(errs, fmt.Errorf("server.allowed_origins must list at least one origin"))
	}

	if _, err := time.ParseDuration(c.Server.ShutdownTimeout); err != nil {
		errs = append(errs, fmt.Errorf("server.shutdown_timeout: %w", err))
	}

	if c.Resources.BlockSize <= 0 {
		errs = append(errs, fmt.Errorf("resources.block_size must be positive"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// ShutdownTimeout returns the parsed graceful shutdown bound.
func (c *Config) ShutdownTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Server.ShutdownTimeout)
}
