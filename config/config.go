// Package config loads the payroll server configuration from YAML.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Config is the whole application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Payroll PayrollConfig `yaml:"payroll"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// ServerConfig covers the HTTP listener.
type ServerConfig struct {
	ListenAddr      string        `yaml:"listen_addr"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	ReadTimeout     time.Duration `yaml:"-"`
	WriteTimeout    time.Duration `yaml:"-"`
	ReadTimeoutRaw  string        `yaml:"read_timeout"`
	WriteTimeoutRaw string        `yaml:"write_timeout"`
}

// StorageConfig selects the payroll.Store backend.
type StorageConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

// PayrollConfig tunes pay runs.
type PayrollConfig struct {
	Workers int `yaml:"workers"`

	// AutoPayday runs payday for each new date without an API call.
	AutoPayday       bool          `yaml:"auto_payday"`
	CheckInterval    time.Duration `yaml:"-"`
	CheckIntervalRaw string        `yaml:"check_interval"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr:      ":8080",
			AllowedOrigins:  []string{"http://localhost:*", "http://127.0.0.1:*"},
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ReadTimeoutRaw:  "15s",
			WriteTimeoutRaw: "15s",
		},
		Storage: StorageConfig{Driver: DriverMemory, Path: "payroll.db"},
		Payroll: PayrollConfig{Workers: 1, CheckInterval: time.Hour, CheckIntervalRaw: "1h"},
		Log:     LogConfig{Level: "info", Format: "text"},
		Metrics: MetricsConfig{Enabled: true},
	}
}

// Load reads path over the defaults. Keys absent from the file keep their
// default value.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}
	return Parse(b)
}

// Parse decodes YAML bytes over the defaults.
func Parse(b []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validateAndNormalize() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("config: server.listen_addr must be set")
	}

	read, err := parseDurationAllowEmpty(c.Server.ReadTimeoutRaw)
	if err != nil {
		return fmt.Errorf("config: server.read_timeout: %w", err)
	}
	c.Server.ReadTimeout = read

	write, err := parseDurationAllowEmpty(c.Server.WriteTimeoutRaw)
	if err != nil {
		return fmt.Errorf("config: server.write_timeout: %w", err)
	}
	c.Server.WriteTimeout = write

	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	switch c.Storage.Driver {
	case "":
		c.Storage.Driver = DriverMemory
	case DriverMemory:
	case DriverSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("config: storage.path must be set for the sqlite driver")
		}
	default:
		return fmt.Errorf("config: storage.driver %q is not one of memory, sqlite", c.Storage.Driver)
	}

	if c.Payroll.Workers < 1 {
		c.Payroll.Workers = 1
	}

	interval, err := parseDurationAllowEmpty(c.Payroll.CheckIntervalRaw)
	if err != nil {
		return fmt.Errorf("config: payroll.check_interval: %w", err)
	}
	if interval == 0 {
		interval = time.Hour
	}
	if interval < 0 {
		return fmt.Errorf("config: payroll.check_interval must be positive")
	}
	c.Payroll.CheckInterval = interval

	if _, err := c.Log.SlogLevel(); err != nil {
		return fmt.Errorf("config: log.level: %w", err)
	}
	c.Log.Format = strings.ToLower(c.Log.Format)
	switch c.Log.Format {
	case "":
		c.Log.Format = "text"
	case "text", "json":
	default:
		return fmt.Errorf("config: log.format %q is not one of text, json", c.Log.Format)
	}

	return nil
}

func parseDurationAllowEmpty(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	return d, nil
}

// SlogLevel maps the configured level name; empty means info.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if l.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, err
	}
	return level, nil
}

// NewLogger builds the process logger described by l.
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, _ := l.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
