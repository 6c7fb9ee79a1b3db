// Package config loads the recall configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Backend names.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Log formats.
const (
	LogConsole = "console"
	LogJSON    = "json"
)

// DefaultFile is the config file name under the default data directory.
const DefaultFile = "config.yaml"

// Config is the on-disk configuration.
type Config struct {
	DataDir  string         `yaml:"data_dir"`
	Backend  string         `yaml:"backend"`
	Commands SnapshotConfig `yaml:"commands"`
	Contexts SnapshotConfig `yaml:"contexts"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Log      LogConfig      `yaml:"log"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// SnapshotConfig locates the JSON snapshot of one record kind.
type SnapshotConfig struct {
	Path string `yaml:"path"`
}

// SQLiteConfig configures the shared SQLite database.
type SQLiteConfig struct {
	Path        string `yaml:"path"`
	BusyTimeout int    `yaml:"busy_timeout"` // milliseconds
}

// LogConfig configures the logger.
type LogConfig struct {
	Format  string `yaml:"format"`
	Verbose bool   `yaml:"verbose"`
}

// MetricsConfig configures the Prometheus endpoint of `recall serve`.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// DefaultDataDir returns ~/.recall, or .recall when the home directory is
// unknown.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".recall"
	}
	return filepath.Join(home, ".recall")
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(DefaultDataDir(), DefaultFile)
}

// Default returns a config with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.defaults()
	return cfg
}

func (c *Config) defaults() {
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir()
	}
	if c.Backend == "" {
		c.Backend = BackendJSON
	}
	if c.Commands.Path == "" {
		c.Commands.Path = "commands.json"
	}
	if c.Contexts.Path == "" {
		c.Contexts.Path = "contexts.json"
	}
	if c.SQLite.Path == "" {
		c.SQLite.Path = "recall.db"
	}
	if c.SQLite.BusyTimeout == 0 {
		c.SQLite.BusyTimeout = 5000
	}
	if c.Log.Format == "" {
		c.Log.Format = LogConsole
	}
}

// Validate reports every invalid field.
func (c *Config) Validate() error {
	var errs []error
	switch c.Backend {
	case BackendJSON, BackendSQLite:
	default:
		errs = append(errs, fmt.Errorf("backend must be %q or %q, got %q", BackendJSON, BackendSQLite, c.Backend))
	}
	switch c.Log.Format {
	case LogConsole, LogJSON:
	default:
		errs = append(errs, fmt.Errorf("log.format must be %q or %q, got %q", LogConsole, LogJSON, c.Log.Format))
	}
	if c.SQLite.BusyTimeout < 0 {
		errs = append(errs, fmt.Errorf("sqlite.busy_timeout must be >= 0, got %d", c.SQLite.BusyTimeout))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Resolve expands a leading ~/ and places relative paths under the data
// directory.
func (c *Config) Resolve(path string) string {
	path = expandHome(path)
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(expandHome(c.DataDir), path)
}

// CommandsPath is the resolved commands snapshot path.
func (c *Config) CommandsPath() string { return c.Resolve(c.Commands.Path) }

// ContextsPath is the resolved contexts snapshot path.
func (c *Config) ContextsPath() string { return c.Resolve(c.Contexts.Path) }

// SQLitePath is the resolved database path.
func (c *Config) SQLitePath() string { return c.Resolve(c.SQLite.Path) }

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
