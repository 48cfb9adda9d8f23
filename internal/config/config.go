package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/newthinker/tradelens/internal/core"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Snapshot  SnapshotConfig  `mapstructure:"snapshot"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host   string `mapstructure:"host"`
	Port   int    `mapstructure:"port"`
	Mode   string `mapstructure:"mode"`
	APIKey string `mapstructure:"api_key"`
}

// LogConfig selects the zap preset and minimum level.
type LogConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

type StorageConfig struct {
	Trades  TradesStorageConfig  `mapstructure:"trades"`
	Archive ArchiveStorageConfig `mapstructure:"archive"`
}

// TradesStorageConfig picks the trade repository backend.
type TradesStorageConfig struct {
	Type string `mapstructure:"type"` // "memory", "archive" or "postgres"
	DSN  string `mapstructure:"dsn"`  // For postgres
}

type ArchiveStorageConfig struct {
	Type string   `mapstructure:"type"` // "localfs" or "s3"
	Path string   `mapstructure:"path"` // For localfs
	S3   S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// AnalyticsConfig holds query defaults for the stats service.
type AnalyticsConfig struct {
	Timezone      string `mapstructure:"timezone"`
	DefaultPeriod string `mapstructure:"default_period"`
	CacheSize     int    `mapstructure:"cache_size"`
	TopSymbols    int    `mapstructure:"top_symbols"`
}

// Location loads the configured time zone, UTC when unset.
func (a AnalyticsConfig) Location() (*time.Location, error) {
	if a.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(a.Timezone)
}

// SnapshotConfig controls the scheduled stats snapshot job.
type SnapshotConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Schedule string        `mapstructure:"schedule"`
	Periods  []string      `mapstructure:"periods"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Webhook  WebhookConfig `mapstructure:"webhook"`
}

// WebhookConfig receives a summary after every snapshot run. An empty URL
// disables it.
type WebhookConfig struct {
	URL     string            `mapstructure:"url"`
	Headers map[string]string `mapstructure:"headers"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file on top of Defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.SetEnvPrefix("TRADELENS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Mode: "release",
		},
		Log: LogConfig{
			Level: "info",
		},
		Storage: StorageConfig{
			Trades: TradesStorageConfig{
				Type: "memory",
			},
			Archive: ArchiveStorageConfig{
				Type: "localfs",
				Path: "data",
			},
		},
		Analytics: AnalyticsConfig{
			Timezone:      "Asia/Tashkent",
			DefaultPeriod: "this-month",
			CacheSize:     256,
			TopSymbols:    7,
		},
		Snapshot: SnapshotConfig{
			Enabled:  false,
			Schedule: "0 2 * * *",
			Periods:  []string{"this-month", "all-time"},
			Timeout:  5 * time.Minute,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Validate checks the configuration for errors. Empty optional fields fall
// back to their defaults at wiring time and are accepted here.
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	// Storage validation
	switch c.Storage.Trades.Type {
	case "", "memory", "archive":
	case "postgres":
		if c.Storage.Trades.DSN == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("storage.trades.dsn required when type is postgres"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown trades storage type %q", c.Storage.Trades.Type))
	}

	switch c.Storage.Archive.Type {
	case "", "localfs":
	case "s3":
		if c.Storage.Archive.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("storage.archive.s3.bucket required when type is s3"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown archive storage type %q", c.Storage.Archive.Type))
	}

	// Analytics validation
	if _, err := c.Analytics.Location(); err != nil {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown timezone %q: %w", c.Analytics.Timezone, err))
	}
	if c.Analytics.CacheSize < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("cache_size cannot be negative, got %d", c.Analytics.CacheSize))
	}
	if c.Analytics.TopSymbols < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("top_symbols cannot be negative, got %d", c.Analytics.TopSymbols))
	}

	// Snapshot validation
	if c.Snapshot.Enabled {
		if _, err := cron.ParseStandard(c.Snapshot.Schedule); err != nil {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("invalid snapshot schedule %q: %w", c.Snapshot.Schedule, err))
		}
	}
	if hook := c.Snapshot.Webhook.URL; hook != "" {
		u, err := url.Parse(hook)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("snapshot.webhook.url must be an absolute http(s) URL, got %q", hook))
		}
	}

	return nil
}
