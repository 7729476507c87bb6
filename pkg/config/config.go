// Package config loads kanjigraph settings from defaults, an optional YAML file and
// KANJIGRAPH_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/japaniel/kanjigraph/pkg/layout"
	"github.com/japaniel/kanjigraph/pkg/store"
	"github.com/japaniel/kanjigraph/pkg/view"
)

// EnvPrefix is prepended to every environment override, e.g. KANJIGRAPH_SERVER_PORT.
const EnvPrefix = "KANJIGRAPH"

// Store backends.
const (
	BackendHTTP   = "http"
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
)

// Config holds all configuration for the application
type Config struct {
	Log            LogConfig             `mapstructure:"log"`
	Index          IndexConfig           `mapstructure:"index"`
	Store          StoreConfig           `mapstructure:"store"`
	View           ViewConfig            `mapstructure:"view"`
	Layout         layout.Options        `mapstructure:"layout"`
	Server         ServerConfig          `mapstructure:"server"`
	CircuitBreaker store.BreakerSettings `mapstructure:"circuit_breaker"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text, json or color
}

// IndexConfig says where the search index blob comes from.
type IndexConfig struct {
	URL   string `mapstructure:"url"`  // downloaded by fetch-index when Path is missing
	Path  string `mapstructure:"path"` // local cache of the blob
	Limit int    `mapstructure:"limit"`
}

// StoreConfig selects and configures the entity store backend.
type StoreConfig struct {
	Backend        string        `mapstructure:"backend"` // http, sqlite or badger
	BaseURL        string        `mapstructure:"base_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxRecordBytes int64         `mapstructure:"max_record_bytes"`
	SQLitePath     string        `mapstructure:"sqlite_path"`
	BadgerDir      string        `mapstructure:"badger_dir"`
}

// ViewConfig tunes view assembly.
type ViewConfig struct {
	Workers int `mapstructure:"workers"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug, release, test
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func dataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".kanjigraph"
	}
	return filepath.Join(home, ".kanjigraph")
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	dir := dataDir()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("index.url", "")
	v.SetDefault("index.path", filepath.Join(dir, "search-index.bin"))
	v.SetDefault("index.limit", 15)

	v.SetDefault("store.backend", BackendHTTP)
	v.SetDefault("store.base_url", "")
	v.SetDefault("store.timeout", 30*time.Second)
	v.SetDefault("store.max_record_bytes", store.DefaultMaxRecordBytes)
	v.SetDefault("store.sqlite_path", filepath.Join(dir, "entities.db"))
	v.SetDefault("store.badger_dir", filepath.Join(dir, "badger"))

	v.SetDefault("view.workers", view.DefaultWorkers)

	v.SetDefault("layout.max_per_row", layout.DefaultMaxPerRow)
	v.SetDefault("layout.group_gap", layout.DefaultGroupGap)
	v.SetDefault("layout.row_gap", layout.DefaultRowGap)
	v.SetDefault("layout.node_gap", layout.DefaultNodeGap)

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")

	v.SetDefault("circuit_breaker.enabled", true)
	v.SetDefault("circuit_breaker.max_requests", 1)
	v.SetDefault("circuit_breaker.interval", time.Minute)
	v.SetDefault("circuit_breaker.timeout", 30*time.Second)
	v.SetDefault("circuit_breaker.ready_to_trip_ratio", 0.6)
}

// Load reads configuration into a Config. v may carry flags bound by the caller; nil means a
// fresh viper instance. With path empty, .kanjigraph.yaml is looked up in the working
// directory and then the home directory, and a missing file is not an error.
func Load(v *viper.Viper, path string) (*Config, error) {
	if v == nil {
		v = viper.New()
	}
	SetDefaults(v)

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(".kanjigraph")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that would otherwise fail deep inside a command.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendHTTP:
	case BackendSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("store.sqlite_path is required for the %s backend", BackendSQLite)
		}
	case BackendBadger:
		if c.Store.BadgerDir == "" {
			return fmt.Errorf("store.badger_dir is required for the %s backend", BackendBadger)
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Index.Path == "" && c.Index.URL == "" {
		return errors.New("one of index.path or index.url is required")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	return nil
}
