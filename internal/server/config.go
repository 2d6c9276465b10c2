package server

import (
	"fmt"
	"net"
	"os"
	"slices"
	"strconv"

	"github.com/golobby/config/v3"
	"github.com/golobby/config/v3/pkg/feeder"
	"github.com/joho/godotenv"

	"github.com/Alaminislam-stack/wash2gather/internal/utils"
)

// Default configuration values
const (
	DefaultPort     = "3000"
	DefaultLogLevel = "info"
)

// Config holds the relay server configuration.
type Config struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	LogLevel string `yaml:"log_level"`

	// AllowedOrigins restricts websocket upgrades. Empty allows every origin.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// LoadConfig reads configuration with the following priority:
// 1. Environment variables (a local .env file is loaded first)
// 2. The YAML file, when file is not empty
// 3. Hardcoded defaults
func LoadConfig(file string) (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{}

	if file != "" {
		if _, err := os.Stat(file); err != nil {
			return nil, fmt.Errorf("config file %s: %w", file, err)
		}
		if err := config.New().AddFeeder(feeder.Yaml{Path: file}).AddStruct(cfg).Feed(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	cfg.Host = utils.Env("HOST", cfg.Host)
	cfg.Port = utils.FirstNonEmpty(os.Getenv("PORT"), cfg.Port, DefaultPort)
	cfg.LogLevel = utils.FirstNonEmpty(os.Getenv("LOG_LEVEL"), cfg.LogLevel, DefaultLogLevel)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the listen port.
func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 0 || port > 65535 {
		return fmt.Errorf("invalid port: %q", c.Port)
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// OriginAllowed reports whether a websocket upgrade from origin is accepted.
func (c *Config) OriginAllowed(origin string) bool {
	if len(c.AllowedOrigins) == 0 || origin == "" {
		return true
	}
	return slices.Contains(c.AllowedOrigins, origin)
}
