package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/golobby/config/v3"
	"github.com/golobby/config/v3/pkg/feeder"
	"github.com/joho/godotenv"
	"go.yaml.in/yaml/v3"

	"github.com/Alaminislam-stack/wash2gather/internal/utils"
)

// Default configuration values
const (
	DefaultServer = "localhost:3000"
	DefaultSTUN   = "stun:stun.l.google.com:19302"
	DefaultName   = "You"

	// RoomName is the room every peer joins.
	RoomName = "watch-together-room"
)

// Config holds the peer configuration
type Config struct {
	// Server is the relay address, either host[:port] or a ws:// or wss:// URL
	Server string `yaml:"server"`

	// Secure selects wss:// when Server carries no scheme
	Secure bool `yaml:"secure"`

	// WebSocketURL is constructed from Server
	WebSocketURL string `yaml:"-"`

	// ICE servers for WebRTC
	STUNServer string `yaml:"stun_server"`
	TURNServer string `yaml:"turn_server,omitempty"`
	TURNUser   string `yaml:"turn_username,omitempty"`
	TURNPass   string `yaml:"turn_password,omitempty"`
	ForceRelay bool   `yaml:"force_relay"`

	// Name labels our own chat messages locally
	Name string `yaml:"name"`

	// Room is the room to join
	Room string `yaml:"room"`
}

// Options carries CLI flag overrides
type Options struct {
	ConfigFile string
	Server     string
	STUNServer string
	TURNServer string
	TURNUser   string
	TURNPass   string
	Name       string
	Room       string
	ForceRelay bool
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Server:     DefaultServer,
		STUNServer: DefaultSTUN,
		Name:       DefaultName,
		Room:       RoomName,
	}
}

// DefaultPath returns ~/.config/wash2gather/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "wash2gather", "config.yaml"), nil
}

// Load reads configuration with the following priority:
// 1. CLI flags (passed via Options) - highest priority
// 2. Environment variables (a local .env file is loaded first)
// 3. The YAML config file
// 4. Hardcoded defaults - lowest priority
func Load(opts Options) (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := Defaults()

	file, explicit := opts.ConfigFile, opts.ConfigFile != ""
	if !explicit {
		file, _ = DefaultPath()
	}
	if err := feed(cfg, file, explicit); err != nil {
		return nil, err
	}

	cfg.Server = utils.FirstNonEmpty(opts.Server, os.Getenv("WASH2GATHER_SERVER"), cfg.Server)
	cfg.STUNServer = utils.FirstNonEmpty(opts.STUNServer, os.Getenv("STUN_SERVER"), cfg.STUNServer)
	cfg.TURNServer = utils.FirstNonEmpty(opts.TURNServer, os.Getenv("TURN_SERVER"), cfg.TURNServer)
	cfg.TURNUser = utils.FirstNonEmpty(opts.TURNUser, os.Getenv("TURN_USERNAME"), cfg.TURNUser)
	cfg.TURNPass = utils.FirstNonEmpty(opts.TURNPass, os.Getenv("TURN_PASSWORD"), cfg.TURNPass)
	cfg.Name = utils.FirstNonEmpty(opts.Name, os.Getenv("WASH2GATHER_NAME"), cfg.Name)
	cfg.Room = utils.FirstNonEmpty(opts.Room, cfg.Room, RoomName)
	cfg.Secure = utils.EnvBool("WASH2GATHER_SECURE", cfg.Secure)
	cfg.ForceRelay = opts.ForceRelay || utils.EnvBool("FORCE_RELAY", cfg.ForceRelay)

	wsURL, err := buildWebSocketURL(cfg.Server, cfg.Secure)
	if err != nil {
		return nil, err
	}
	cfg.WebSocketURL = wsURL

	return cfg, nil
}

// feed layers the YAML file over cfg. A missing default file is not an error.
func feed(cfg *Config, file string, explicit bool) error {
	if file == "" {
		return nil
	}
	if _, err := os.Stat(file); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config file %s: %w", file, err)
	}
	if err := config.New().AddFeeder(feeder.Yaml{Path: file}).AddStruct(cfg).Feed(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", file, err)
	}
	return nil
}

func buildWebSocketURL(server string, secure bool) (string, error) {
	if server == "" {
		return "", errors.New("server address is empty")
	}

	if !strings.Contains(server, "://") {
		scheme := "ws"
		if secure {
			scheme = "wss"
		}
		server = scheme + "://" + server
	}

	u, err := url.Parse(server)
	if err != nil {
		return "", fmt.Errorf("invalid server address %q: %w", server, err)
	}
	switch u.Scheme {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid server address %q", server)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/ws"
	}
	return u.String(), nil
}

// HTTPURL returns the relay's base HTTP URL, used for /stats.
func (c *Config) HTTPURL() string {
	u, err := url.Parse(c.WebSocketURL)
	if err != nil {
		return ""
	}
	if u.Scheme == "wss" {
		u.Scheme = "https"
	} else {
		u.Scheme = "http"
	}
	u.Path = ""
	return u.String()
}

// GetSTUNServers returns STUN server URLs as strings
func (c *Config) GetSTUNServers() []string {
	if c.STUNServer == "" {
		return nil
	}
	return []string{c.STUNServer}
}

// GetTURNServers returns TURN server URLs if configured
func (c *Config) GetTURNServers() []string {
	if c.TURNServer == "" {
		return nil
	}
	if strings.HasPrefix(c.TURNServer, "turn:") || strings.HasPrefix(c.TURNServer, "turns:") {
		return []string{c.TURNServer}
	}
	return []string{
		fmt.Sprintf("turn:%s:3478?transport=udp", c.TURNServer),
		fmt.Sprintf("turn:%s:3478?transport=tcp", c.TURNServer),
		fmt.Sprintf("turns:%s:5349?transport=tcp", c.TURNServer),
	}
}

// GetTURNCredentials returns TURN username and password
func (c *Config) GetTURNCredentials() (string, string) {
	return c.TURNUser, c.TURNPass
}

// Save writes cfg as YAML to path, creating parent directories.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
