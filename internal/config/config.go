// Package config loads popd settings from defaults, an optional YAML file and POP_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment key, e.g. POP_STORAGE_BACKEND.
const EnvPrefix = "POP"

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendCouchDB  = "couchdb"
)

// Config is the full popd configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Minting   MintingConfig   `mapstructure:"minting"`
	Feed      FeedConfig      `mapstructure:"feed"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	PublicURL       string        `mapstructure:"public_url"` // base of claim links
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StorageConfig selects and configures the primary record store.
type StorageConfig struct {
	Backend       string `mapstructure:"backend"`
	PostgresDSN   string `mapstructure:"postgres_dsn"`
	CouchDBURL    string `mapstructure:"couchdb_url"`
	CouchDBPrefix string `mapstructure:"couchdb_prefix"`
}

// AnalyticsConfig configures the claim activity log. Empty DSN keeps it in memory.
type AnalyticsConfig struct {
	ClickhouseDSN string `mapstructure:"clickhouse_dsn"`
}

// MintingConfig configures the stub minter.
type MintingConfig struct {
	Delay time.Duration `mapstructure:"delay"`
}

// FeedConfig configures the live claim feed.
type FeedConfig struct {
	Buffer       int           `mapstructure:"buffer"`
	PingInterval time.Duration `mapstructure:"ping_interval"`
}

// LogConfig configures logrus.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.public_url", "http://localhost:8080")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("storage.backend", BackendMemory)
	v.SetDefault("storage.postgres_dsn", "")
	v.SetDefault("storage.couchdb_url", "")
	v.SetDefault("storage.couchdb_prefix", "pop_")

	v.SetDefault("analytics.clickhouse_dsn", "")

	v.SetDefault("minting.delay", "1500ms")

	v.SetDefault("feed.buffer", 16)
	v.SetDefault("feed.ping_interval", "30s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads configuration. Precedence (highest first): environment, file, defaults.
// An empty cfgFile looks for popd.yaml in the working directory and /etc/popd;
// a missing file is not an error unless cfgFile names it explicitly.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("popd")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/popd")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory:
	case BackendPostgres:
		if c.Storage.PostgresDSN == "" {
			return errors.New("storage.postgres_dsn is required for the postgres backend")
		}
	case BackendCouchDB:
		if c.Storage.CouchDBURL == "" {
			return errors.New("storage.couchdb_url is required for the couchdb backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive, got %s", c.Server.ShutdownTimeout)
	}
	if c.Minting.Delay < 0 {
		return fmt.Errorf("minting.delay must not be negative, got %s", c.Minting.Delay)
	}
	if c.Feed.Buffer <= 0 {
		return fmt.Errorf("feed.buffer must be positive, got %d", c.Feed.Buffer)
	}
	if c.Feed.PingInterval <= 0 {
		return fmt.Errorf("feed.ping_interval must be positive, got %s", c.Feed.PingInterval)
	}
	return nil
}
