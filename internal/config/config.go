// Package config loads the server configuration from defaults, an optional
// YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/systemshift/minddump/internal/logger"
)

// Config holds the server configuration.
type Config struct {
	Addr         string        `yaml:"addr"`
	FixturesPath string        `yaml:"fixtures"`
	Watch        bool          `yaml:"watch"`
	LogLevel     string        `yaml:"log_level"`
	LogPretty    bool          `yaml:"log_pretty"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// Default returns the configuration used when nothing else is set.
func Default() Config {
	return Config{
		Addr:         ":8000",
		LogLevel:     "info",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Load builds the configuration: defaults, then the YAML file at path (when
// non-empty), then MINDDUMP_* environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Addr = getEnv("MINDDUMP_ADDR", c.Addr)
	c.FixturesPath = getEnv("MINDDUMP_FIXTURES", c.FixturesPath)
	c.LogLevel = getEnv("MINDDUMP_LOG_LEVEL", c.LogLevel)

	var err error
	if c.Watch, err = getEnvBool("MINDDUMP_WATCH", c.Watch); err != nil {
		return err
	}
	if c.LogPretty, err = getEnvBool("MINDDUMP_LOG_PRETTY", c.LogPretty); err != nil {
		return err
	}
	return nil
}

// Validate checks the values that would otherwise fail late at startup.
func (c Config) Validate() error {
	var errs []error
	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		errs = append(errs, fmt.Errorf("invalid addr %q: %w", c.Addr, err))
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.Watch && c.FixturesPath == "" {
		errs = append(errs, errors.New("watch requires a fixtures file"))
	}
	for name, d := range map[string]time.Duration{
		"read_timeout":  c.ReadTimeout,
		"write_timeout": c.WriteTimeout,
		"idle_timeout":  c.IdleTimeout,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", name))
		}
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("parsing %s: %w", key, err)
	}
	return b, nil
}
