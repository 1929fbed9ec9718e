// Package config loads, validates and saves breakroom configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fentz26/breakroom/internal/ledger"
	"github.com/fentz26/breakroom/internal/logging"
	"github.com/fentz26/breakroom/internal/presence"
	"github.com/fentz26/breakroom/internal/publisher"
)

// EnvPrefix prefixes environment overrides, e.g. BREAKROOM_SERVER_LISTEN.
const EnvPrefix = "BREAKROOM"

// Config is the full daemon configuration.
type Config struct {
	Capacity  presence.Capacity `yaml:"capacity" mapstructure:"capacity"`
	Server    ServerConfig      `yaml:"server" mapstructure:"server"`
	Store     StoreConfig       `yaml:"store" mapstructure:"store"`
	Ledger    LedgerConfig      `yaml:"ledger" mapstructure:"ledger"`
	Publisher PublisherConfig   `yaml:"publisher" mapstructure:"publisher"`
	Log       logging.Config    `yaml:"log" mapstructure:"log"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	// Listen is the address the daemon binds.
	Listen string `yaml:"listen" mapstructure:"listen"`
}

// StoreConfig configures the SQLite database.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// LedgerConfig selects where absences are logged and how side effects are queued.
type LedgerConfig struct {
	// Backend is sqlite, redis or none.
	Backend       string `yaml:"backend" mapstructure:"backend"`
	RedisAddr     string `yaml:"redis_addr" mapstructure:"redis_addr"`
	RedisPassword string `yaml:"redis_password,omitempty" mapstructure:"redis_password"`
	RedisDB       int    `yaml:"redis_db" mapstructure:"redis_db"`
	RedisStream   string `yaml:"redis_stream" mapstructure:"redis_stream"`
	// QueueSize bounds pending side effects; extra ones are dropped.
	QueueSize int           `yaml:"queue_size" mapstructure:"queue_size"`
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// PublisherConfig configures the periodic status update.
type PublisherConfig struct {
	Enabled  bool          `yaml:"enabled" mapstructure:"enabled"`
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
	// WindowStart and WindowEnd are "HH:MM" in the UTC offset below. Empty
	// bounds publish around the clock.
	WindowStart    string  `yaml:"window_start" mapstructure:"window_start"`
	WindowEnd      string  `yaml:"window_end" mapstructure:"window_end"`
	UTCOffsetHours float64 `yaml:"utc_offset_hours" mapstructure:"utc_offset_hours"`
	WebhookURL     string  `yaml:"webhook_url,omitempty" mapstructure:"webhook_url"`
}

// Window returns the publishing window, or nil when unbounded.
func (p PublisherConfig) Window() (*publisher.Window, error) {
	if p.WindowStart == "" && p.WindowEnd == "" {
		return nil, nil
	}
	w, err := publisher.ParseWindow(p.WindowStart, p.WindowEnd, p.UTCOffsetHours)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// DefaultDir returns ~/.breakroom, or .breakroom when there is no home.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".breakroom"
	}
	return filepath.Join(home, ".breakroom")
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "config.yaml")
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Capacity: presence.DefaultCapacity(),
		Server: ServerConfig{
			Listen: "127.0.0.1:7466",
		},
		Store: StoreConfig{
			Path: filepath.Join(DefaultDir(), "breakroom.db"),
		},
		Ledger: LedgerConfig{
			Backend:     ledger.BackendSQLite,
			RedisAddr:   "127.0.0.1:6379",
			RedisStream: "breakroom:absences",
			QueueSize:   256,
			Timeout:     5 * time.Second,
		},
		Publisher: PublisherConfig{
			Enabled:        true,
			Interval:       30 * time.Minute,
			WindowStart:    "13:15",
			WindowEnd:      "21:45",
			UTCOffsetHours: 6,
		},
		Log: logging.DefaultConfig(),
	}
}

// Load reads path (if it exists), applies BREAKROOM_* environment overrides on
// top of the defaults and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// setDefaults registers every key so environment overrides reach Unmarshal.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("capacity.max_break", d.Capacity.MaxBreak)
	v.SetDefault("capacity.max_adhoc", d.Capacity.MaxAdhoc)
	v.SetDefault("capacity.max_offline", d.Capacity.MaxOffline)
	v.SetDefault("capacity.total_limit", d.Capacity.TotalLimit)

	v.SetDefault("server.listen", d.Server.Listen)
	v.SetDefault("store.path", d.Store.Path)

	v.SetDefault("ledger.backend", d.Ledger.Backend)
	v.SetDefault("ledger.redis_addr", d.Ledger.RedisAddr)
	v.SetDefault("ledger.redis_password", d.Ledger.RedisPassword)
	v.SetDefault("ledger.redis_db", d.Ledger.RedisDB)
	v.SetDefault("ledger.redis_stream", d.Ledger.RedisStream)
	v.SetDefault("ledger.queue_size", d.Ledger.QueueSize)
	v.SetDefault("ledger.timeout", d.Ledger.Timeout)

	v.SetDefault("publisher.enabled", d.Publisher.Enabled)
	v.SetDefault("publisher.interval", d.Publisher.Interval)
	v.SetDefault("publisher.window_start", d.Publisher.WindowStart)
	v.SetDefault("publisher.window_end", d.Publisher.WindowEnd)
	v.SetDefault("publisher.utc_offset_hours", d.Publisher.UTCOffsetHours)
	v.SetDefault("publisher.webhook_url", d.Publisher.WebhookURL)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.encoding", d.Log.Encoding)
}

// Save writes cfg as YAML, creating parent directories if needed.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if err := c.Capacity.Validate(); err != nil {
		return fmt.Errorf("capacity: %w", err)
	}
	if c.Server.Listen == "" {
		return fmt.Errorf("server.listen is required")
	}

	switch c.Ledger.Backend {
	case ledger.BackendSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for the sqlite ledger")
		}
	case ledger.BackendRedis:
		if c.Ledger.RedisAddr == "" || c.Ledger.RedisStream == "" {
			return fmt.Errorf("ledger.redis_addr and ledger.redis_stream are required for the redis ledger")
		}
	case ledger.BackendNone:
	default:
		return fmt.Errorf("invalid ledger backend %q, must be: sqlite, redis, or none", c.Ledger.Backend)
	}
	if c.Ledger.QueueSize < 1 {
		return fmt.Errorf("ledger.queue_size must be at least 1")
	}
	if c.Ledger.Timeout <= 0 {
		return fmt.Errorf("ledger.timeout must be positive")
	}

	if c.Publisher.Enabled {
		if c.Publisher.Interval < time.Minute {
			return fmt.Errorf("publisher.interval must be at least 1m")
		}
		if (c.Publisher.WindowStart == "") != (c.Publisher.WindowEnd == "") {
			return fmt.Errorf("publisher.window_start and publisher.window_end must be set together")
		}
		if _, err := c.Publisher.Window(); err != nil {
			return fmt.Errorf("publisher: %w", err)
		}
	}

	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return nil
}
