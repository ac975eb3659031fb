// Package config provides loading and parsing of the nurichat configuration
// file using Viper. It defines the full configuration schema and a writer
// for a commented default file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/nurichat/nurichat/internal/logging"
	"github.com/nurichat/nurichat/protocol"
)

// Config represents the full structure of the nurichat configuration file.
type Config struct {
	Listen   ListenConfig     `mapstructure:"listen" yaml:"listen"`
	Timeouts TimeoutConfig    `mapstructure:"timeouts" yaml:"timeouts"`
	Dialect  protocol.Dialect `mapstructure:"dialect" yaml:"dialect"`
	Logging  logging.Config   `mapstructure:"logging" yaml:"logging"`
}

// ListenConfig defines where the daemon binds.
type ListenConfig struct {
	// Address in host:port form; an empty host binds all interfaces.
	Address string `mapstructure:"address" yaml:"address"`
}

// TimeoutConfig bounds per-connection IO so one stalled peer cannot hold
// a worker or a broadcast forever.
type TimeoutConfig struct {
	// Write is the deadline applied to every outbound write. A write that
	// misses it fails the recipient, which is then dropped.
	Write time.Duration `mapstructure:"write" yaml:"write"`
	// Handshake bounds how long a new connection may take to send its
	// nickname line. Zero disables the deadline.
	Handshake time.Duration `mapstructure:"handshake" yaml:"handshake"`
}

// Default returns the configuration used when no file overrides anything.
func Default() *Config {
	return &Config{
		Listen: ListenConfig{
			Address: ":5000",
		},
		Timeouts: TimeoutConfig{
			Write:     10 * time.Second,
			Handshake: 60 * time.Second,
		},
		Dialect: protocol.Default(),
		Logging: logging.Config{
			Level:    "info",
			ToStdout: true,
		},
	}
}

// Load reads the nurichat configuration from disk using Viper.
// It searches for a file named nurichat.yaml in the user config directory,
// the current working directory and common fallback paths, and unmarshals
// the content over the defaults. A missing file is not an error; the
// defaults already describe a working server.
func Load() (*Config, error) {
	viper.SetConfigName("nurichat")
	viper.SetConfigType("yaml")

	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".nurichat"))
	}

	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/nurichat")

	cfg := Default()
	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); notFound {
			return cfg, nil
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	return cfg, nil
}

// WriteDefault writes the default configuration to the given path as YAML,
// creating parent directories as needed. It refuses to overwrite an
// existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	out, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("unable to encode default config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("unable to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("unable to write config file: %w", err)
	}
	return nil
}
