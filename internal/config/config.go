// ABOUTME: Configuration loading and parsing for the swavik portal client
// ABOUTME: Supports YAML or TOML files with environment variable expansion and duration parsing

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable that points at a config file.
const EnvConfigPath = "SWAVIK_CONFIG"

// Config represents the complete portal configuration
type Config struct {
	App     AppConfig     `yaml:"app" toml:"app"`
	Backend BackendConfig `yaml:"backend" toml:"backend"`
	Storage StorageConfig `yaml:"storage" toml:"storage"`
	Auth    AuthConfig    `yaml:"auth" toml:"auth"`
	Export  ExportConfig  `yaml:"export" toml:"export"`
	Render  RenderConfig  `yaml:"render" toml:"render"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// AppConfig holds branding and display settings
type AppConfig struct {
	Name       string `yaml:"name" toml:"name"`               // transcript filename prefix
	TimeLayout string `yaml:"time_layout" toml:"time_layout"` // Go layout for message times
}

// BackendConfig holds the answer backend address
type BackendConfig struct {
	BaseURL        string        `yaml:"base_url" toml:"base_url"`
	RequestTimeout time.Duration `yaml:"-" toml:"-"`

	// Raw string value for unmarshaling; "0s" means no timeout
	RequestTimeoutRaw string `yaml:"request_timeout" toml:"request_timeout"`
}

// StorageConfig selects the local key-value store
type StorageConfig struct {
	Driver string `yaml:"driver" toml:"driver"` // sqlite or memory
	Path   string `yaml:"path" toml:"path"`
}

// AuthConfig holds sign-in configuration
type AuthConfig struct {
	// SessionSecret signs session tokens. When empty one is generated and
	// kept in the local store.
	SessionSecret     string        `yaml:"session_secret" toml:"session_secret"`
	SessionTTL        time.Duration `yaml:"-" toml:"-"`
	MinPasswordLength int           `yaml:"min_password_length" toml:"min_password_length"`

	SessionTTLRaw string `yaml:"session_ttl" toml:"session_ttl"`
}

// ExportConfig holds transcript export settings
type ExportConfig struct {
	Dir    string `yaml:"dir" toml:"dir"`
	Format string `yaml:"format" toml:"format"` // text or html
}

// RenderConfig holds terminal rendering settings
type RenderConfig struct {
	Markdown bool   `yaml:"markdown" toml:"markdown"`
	Style    string `yaml:"style" toml:"style"` // glamour style name
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Default returns a working configuration for a local backend.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Name:       "Swavik",
			TimeLayout: "03:04 PM",
		},
		Backend: BackendConfig{
			BaseURL:           "http://127.0.0.1:8000",
			RequestTimeoutRaw: "0s",
		},
		Storage: StorageConfig{
			Driver: "sqlite",
			Path:   DefaultDataPath(),
		},
		Auth: AuthConfig{
			SessionTTL:        24 * time.Hour,
			SessionTTLRaw:     "24h",
			MinPasswordLength: 4,
		},
		Export: ExportConfig{
			Dir:    ".",
			Format: "text",
		},
		Render: RenderConfig{
			Markdown: true,
			Style:    "dark",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Files ending in .toml are decoded as TOML, anything else as YAML. Values
// missing from the file keep their defaults.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw content
	expandedData := expandEnvVars(string(data))

	cfg := Default()
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(expandedData, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal([]byte(expandedData), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := finish(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads path, falling back to Default when the file does not
// exist and was not explicitly requested.
func LoadOrDefault(path string, explicit bool) (*Config, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		cfg = Default()
		if err := finish(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return nil, err
}

// Resolve parses the raw duration strings and validates, as Load does for
// file contents. Use it after editing a Config in code.
func (c *Config) Resolve() error {
	return finish(c)
}

func finish(cfg *Config) error {
	// Parse duration fields
	if err := parseDurations(cfg); err != nil {
		return fmt.Errorf("parsing durations: %w", err)
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}
	return nil
}

// ResolvePath picks the config file location: the flag value, then
// $SWAVIK_CONFIG, then $XDG_CONFIG_HOME/swavik/config.yaml, then
// ~/.config/swavik/config.yaml. explicit reports whether the user named the
// file.
func ResolvePath(flagValue string) (path string, explicit bool) {
	if flagValue != "" {
		return flagValue, true
	}
	if env := os.Getenv(EnvConfigPath); env != "" {
		return env, true
	}
	return filepath.Join(configDir(), "swavik", "config.yaml"), false
}

// DefaultDataPath returns $XDG_DATA_HOME/swavik/portal.db, or
// ~/.local/share/swavik/portal.db when XDG_DATA_HOME is unset.
func DefaultDataPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".", "portal.db")
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}
	return filepath.Join(dataDir, "swavik", "portal.db")
}

func configDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(homeDir, ".config")
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	// Match ${VAR_NAME} pattern
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}
	if c.App.TimeLayout == "" {
		return fmt.Errorf("app.time_layout is required")
	}

	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url is required")
	}
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil {
		return fmt.Errorf("backend.base_url is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("backend.base_url must use http or https scheme")
	}
	if c.Backend.RequestTimeout < 0 {
		return fmt.Errorf("backend.request_timeout must not be negative")
	}

	switch c.Storage.Driver {
	case "sqlite":
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the sqlite driver")
		}
	case "memory":
	default:
		return fmt.Errorf("storage.driver must be sqlite or memory, got %q", c.Storage.Driver)
	}

	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("auth.session_ttl must be positive")
	}
	if c.Auth.MinPasswordLength < 1 {
		return fmt.Errorf("auth.min_password_length must be at least 1")
	}

	if c.Export.Format != "text" && c.Export.Format != "html" {
		return fmt.Errorf("export.format must be text or html, got %q", c.Export.Format)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Backend.RequestTimeoutRaw != "" {
		cfg.Backend.RequestTimeout, err = time.ParseDuration(cfg.Backend.RequestTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing request_timeout %q: %w", cfg.Backend.RequestTimeoutRaw, err)
		}
	}

	if cfg.Auth.SessionTTLRaw != "" {
		cfg.Auth.SessionTTL, err = time.ParseDuration(cfg.Auth.SessionTTLRaw)
		if err != nil {
			return fmt.Errorf("parsing session_ttl %q: %w", cfg.Auth.SessionTTLRaw, err)
		}
	}

	return nil
}
