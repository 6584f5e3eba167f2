// Package config loads watchlist settings from embedded defaults, an optional
// TOML file, and environment variables, in that order.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// MinSecretLength is the shortest accepted HMAC secret for session tokens.
const MinSecretLength = 32

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Auth     AuthConfig     `toml:"auth"`
	Log      LogConfig      `toml:"log"`
}

type ServerConfig struct {
	Port              string   `toml:"port"`
	ReadHeaderTimeout Duration `toml:"read_header_timeout"`
	IdleTimeout       Duration `toml:"idle_timeout"`
	ShutdownTimeout   Duration `toml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type AuthConfig struct {
	SecretKey    string   `toml:"secret_key"`
	BcryptCost   int      `toml:"bcrypt_cost"`
	CookieSecure bool     `toml:"cookie_secure"`
	SessionTTL   Duration `toml:"session_ttl"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Duration lets TOML files spell durations as strings like "10s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// DefaultConfig returns the settings from the embedded example file.
func DefaultConfig() *Config {
	var cfg Config
	if err := toml.Unmarshal(exampleConf, &cfg); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &cfg
}

// Load builds a Config from defaults, then the TOML file at path, then
// environment overrides. A missing file is an error only when mustExist is
// set, i.e. when the caller named the file explicitly.
func Load(path string, mustExist bool) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
			if mustExist {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("PORT"); ok && v != "" {
		c.Server.Port = v
	}
	if v, ok := lookup("DATABASE_PATH"); ok && v != "" {
		c.Database.Path = v
	}
	if v, ok := lookup("SECRET_KEY"); ok && v != "" {
		c.Auth.SecretKey = v
	}
	// Secure cookies stay on unless explicitly disabled for local development.
	if v, ok := lookup("COOKIE_SECURE"); ok && v != "" {
		c.Auth.CookieSecure = v != "false"
	}
	if v, ok := lookup("BCRYPT_COST"); ok && v != "" {
		cost, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid BCRYPT_COST: %w", err)
		}
		c.Auth.BcryptCost = cost
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup("LOG_FORMAT"); ok && v != "" {
		c.Log.Format = v
	}
	return nil
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 14 {
		return fmt.Errorf("bcrypt cost must be between 4 and 14, got %d", c.Auth.BcryptCost)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// ValidateServer checks the additional settings needed to serve HTTP.
func (c *Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Server.Port == "" {
		return errors.New("server port is required")
	}
	if c.Auth.SecretKey == "" {
		return errors.New("SECRET_KEY is required")
	}
	if len(c.Auth.SecretKey) < MinSecretLength {
		return fmt.Errorf("SECRET_KEY must be at least %d characters for HMAC-SHA256 security", MinSecretLength)
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Server.Port
}

// DSN returns the SQLite file URI for the configured database path.
func (c *Config) DSN() (string, error) {
	return DSN(c.Database.Path, runtime.GOOS)
}

// DSN converts a database file path to a SQLite file URI. Windows paths
// carry a drive letter, so the URI path gets a leading slash before it
// (file:///C:/data.db); elsewhere the absolute path supplies its own.
// Characters with URI meaning (#, ?, %) are percent-encoded.
func DSN(path, goos string) (string, error) {
	abs := path
	if !isAbs(path, goos) {
		var err error
		abs, err = filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("resolve database path: %w", err)
		}
	}

	if goos == "windows" {
		abs = "/" + strings.ReplaceAll(abs, `\`, "/")
	}
	return (&url.URL{Scheme: "file", Path: abs}).String(), nil
}

func isAbs(path, goos string) bool {
	if goos == "windows" {
		return len(path) >= 3 && path[1] == ':' && (path[2] == '\\' || path[2] == '/')
	}
	return strings.HasPrefix(path, "/")
}
