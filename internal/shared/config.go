package shared

import (
	_ "embed"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

//go:embed config.example.toml
var exampleConf []byte

// Session store backends.
const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

// Config represents the application configuration loaded from a TOML (or YAML) file.
//
// It replaces the filter module that used to be loaded by path: credentials, the Reddit user and the
// filter rules are all declared here and injected at startup.
type Config struct {
	Reddit  RedditConfig  `toml:"reddit" yaml:"reddit"`
	Server  ServerConfig  `toml:"server" yaml:"server"`
	Session SessionConfig `toml:"session" yaml:"session"`
	HTTP    HTTPConfig    `toml:"http" yaml:"http"`
	Log     LogConfig     `toml:"log" yaml:"log"`
	Rules   []RuleConfig  `toml:"rules" yaml:"rules"`
}

// RedditConfig contains Reddit API credentials and endpoints.
type RedditConfig struct {
	User         string   `toml:"user" yaml:"user"`
	ClientID     string   `toml:"client_id" yaml:"client_id"`
	ClientSecret string   `toml:"client_secret" yaml:"client_secret"`
	UserAgent    string   `toml:"user_agent" yaml:"user_agent"`
	Scopes       []string `toml:"scopes" yaml:"scopes"`
	AuthURL      string   `toml:"auth_url" yaml:"auth_url"`
	TokenURL     string   `toml:"token_url" yaml:"token_url"`
	APIBase      string   `toml:"api_base" yaml:"api_base"`
	RateLimit    *float64 `toml:"rate_limit" yaml:"rate_limit"`
	RateBurst    int      `toml:"rate_burst" yaml:"rate_burst"`
}

// RequestRate returns the Reddit API requests per second. Zero disables pacing.
func (r RedditConfig) RequestRate() float64 {
	if r.RateLimit == nil {
		return 0
	}
	return *r.RateLimit
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host         string            `toml:"host" yaml:"host"`
	Port         int               `toml:"port" yaml:"port"`
	PublicURL    string            `toml:"public_url" yaml:"public_url"`
	ScriptName   string            `toml:"script_name" yaml:"script_name"`
	Users        map[string]string `toml:"users" yaml:"users"`
	SessionTTL   time.Duration     `toml:"session_ttl" yaml:"session_ttl"`
	CookieSecure bool              `toml:"cookie_secure" yaml:"cookie_secure"`
}

// SessionConfig selects where per-user session state lives.
type SessionConfig struct {
	Backend       string `toml:"backend" yaml:"backend"`
	RedisAddr     string `toml:"redis_addr" yaml:"redis_addr"`
	RedisPassword string `toml:"redis_password" yaml:"redis_password"`
	RedisDB       int    `toml:"redis_db" yaml:"redis_db"`
	Prefix        string `toml:"prefix" yaml:"prefix"`
}

// HTTPConfig applies to every outbound request.
type HTTPConfig struct {
	Timeout time.Duration `toml:"timeout" yaml:"timeout"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level" yaml:"level"`
}

// RuleConfig declares one filter rule. See package filters for the handler and match names.
type RuleConfig struct {
	Domain       string   `toml:"domain" yaml:"domain"`
	Handler      string   `toml:"handler" yaml:"handler"`
	Match        string   `toml:"match" yaml:"match"`
	ExcludeNSFW  bool     `toml:"exclude_nsfw" yaml:"exclude_nsfw"`
	TitlePattern string   `toml:"title_pattern" yaml:"title_pattern"`
	Subreddits   []string `toml:"subreddits" yaml:"subreddits"`
}

// Addr returns the host:port the server listens on.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// LoadConfig reads and parses a configuration file from the specified path.
//
// Files ending in .yaml or .yml are decoded as YAML, everything else as TOML.
// Fields left unset fall back to the embedded defaults, except rules.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	default:
		if err := toml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	config.applyDefaults(DefaultConfig())
	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate reports missing credentials and malformed sections.
func (c *Config) Validate() error {
	if c.Reddit.User == "" {
		return fmt.Errorf("%w: reddit.user", ErrMissingCredentials)
	}
	if c.Reddit.ClientID == "" || c.Reddit.ClientSecret == "" {
		return fmt.Errorf("%w: reddit.client_id and reddit.client_secret must be set", ErrMissingCredentials)
	}

	switch c.Session.Backend {
	case SessionBackendMemory:
	case SessionBackendRedis:
		if c.Session.RedisAddr == "" {
			return fmt.Errorf("%w: session.redis_addr is required for the redis backend", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown session backend %q", ErrInvalidConfig, c.Session.Backend)
	}

	if c.Reddit.RequestRate() < 0 {
		return fmt.Errorf("%w: reddit.rate_limit must not be negative", ErrInvalidConfig)
	}

	for i, r := range c.Rules {
		if r.Domain == "" {
			return fmt.Errorf("%w: rules[%d] has no domain", ErrInvalidConfig, i)
		}
	}

	return nil
}

func (c *Config) applyDefaults(d *Config) {
	if c.Reddit.UserAgent == "" {
		c.Reddit.UserAgent = d.Reddit.UserAgent
	}
	if len(c.Reddit.Scopes) == 0 {
		c.Reddit.Scopes = d.Reddit.Scopes
	}
	if c.Reddit.AuthURL == "" {
		c.Reddit.AuthURL = d.Reddit.AuthURL
	}
	if c.Reddit.TokenURL == "" {
		c.Reddit.TokenURL = d.Reddit.TokenURL
	}
	if c.Reddit.APIBase == "" {
		c.Reddit.APIBase = d.Reddit.APIBase
	}
	if c.Reddit.RateLimit == nil {
		c.Reddit.RateLimit = d.Reddit.RateLimit
	}
	if c.Reddit.RateBurst <= 0 {
		c.Reddit.RateBurst = d.Reddit.RateBurst
	}

	if c.Server.Host == "" {
		c.Server.Host = d.Server.Host
	}
	if c.Server.Port == 0 {
		c.Server.Port = d.Server.Port
	}
	if c.Server.SessionTTL <= 0 {
		c.Server.SessionTTL = d.Server.SessionTTL
	}

	if c.Session.Backend == "" {
		c.Session.Backend = d.Session.Backend
	}
	if c.Session.Prefix == "" {
		c.Session.Prefix = d.Session.Prefix
	}

	if c.HTTP.Timeout <= 0 {
		c.HTTP.Timeout = d.HTTP.Timeout
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}
