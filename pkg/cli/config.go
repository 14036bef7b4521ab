package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

const (
	// DefaultBaseDir is the base configuration directory name
	DefaultBaseDir = ".sringbuf"
	// DefaultConfigFile is the default configuration filename
	DefaultConfigFile = "config.yaml"
)

// Config represents the main configuration structure for a CLI app
type Config struct {
	// AppName is the application name
	AppName string `yaml:"-" json:"-"`

	// Format is the default output format (yaml, json, msgpack, table, raw)
	Format OutputFormat `yaml:"format,omitempty" json:"format,omitempty"`

	// LogLevel is the slog level name (debug, info, warn, error)
	LogLevel string `yaml:"log_level,omitempty" json:"log_level,omitempty"`

	// NoColor disables styled table output
	NoColor bool `yaml:"no_color,omitempty" json:"no_color,omitempty"`

	// StoreDir is where saved reports live. Empty means <config dir>/reports.
	StoreDir string `yaml:"store_dir,omitempty" json:"store_dir,omitempty"`

	// configPath is the path to the config file
	configPath string
}

// LoadConfig loads or creates configuration for the specified app
func LoadConfig(appName string) (*Config, error) {
	return LoadConfigWithPath(appName, "")
}

// LoadConfigWithPath loads configuration from a custom path
func LoadConfigWithPath(appName, customPath string) (*Config, error) {
	var configPath string

	if customPath != "" {
		configPath = customPath
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = filepath.Join(home, DefaultBaseDir, appName, DefaultConfigFile)
	}

	// Ensure config directory exists
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	cfg := &Config{
		AppName:    appName,
		configPath: configPath,
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Create empty config file
			return cfg, cfg.Save()
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}

	cfg.AppName = appName
	cfg.configPath = configPath

	return cfg, nil
}

// Save saves the configuration to disk
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(c.configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Path returns the config file path
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the config directory path
func (c *Config) Dir() string {
	return filepath.Dir(c.configPath)
}

// Set updates a single setting by key and saves the file
func (c *Config) Set(key, value string) error {
	next := *c
	switch key {
	case "format":
		next.Format = OutputFormat(value)
	case "log_level":
		next.LogLevel = value
	case "no_color":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("no_color: %w", err)
		}
		next.NoColor = b
	case "store_dir":
		next.StoreDir = value
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	if err := next.validate(); err != nil {
		return err
	}
	*c = next
	return c.Save()
}

// OutputFormat returns the configured output format, defaulting to YAML
func (c *Config) OutputFormat() OutputFormat {
	if c.Format == "" {
		return FormatYAML
	}
	return c.Format
}

// ReportDir returns the report store directory
func (c *Config) ReportDir() string {
	if c.StoreDir != "" {
		return c.StoreDir
	}
	return filepath.Join(c.Dir(), "reports")
}

// SlogLevel returns the configured log level, defaulting to warn
func (c *Config) SlogLevel() slog.Level {
	lvl, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelWarn
	}
	return lvl
}

// ParseLevel parses a slog level name. Empty means warn.
func ParseLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelWarn, nil
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return lvl, nil
}

func (c *Config) validate() error {
	if c.Format != "" && !c.Format.IsValid() {
		return fmt.Errorf("unsupported output format: %s", c.Format)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}
