package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// StoreConfig describes how to reach the Notification Store.
type StoreConfig struct {
	// BaseURL is the root URL of the banking backend.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// TimeoutSec bounds every HTTP request.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`

	// MaxRetries is how many times an HTTP 429 response is retried.
	// Zero keeps requests fire-and-forget.
	MaxRetries int `mapstructure:"max_retries" yaml:"max_retries"`
}

// Timeout returns TimeoutSec as a duration.
func (c StoreConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// FeedConfig holds controller behavior switches.
type FeedConfig struct {
	// RollbackOnFailure restores a notification to unread when the
	// mark-read request fails.
	RollbackOnFailure bool `mapstructure:"rollback_on_failure" yaml:"rollback_on_failure"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

// ServerConfig configures the development Notification Store.
type ServerConfig struct {
	Addr   string `mapstructure:"addr" yaml:"addr"`
	DBPath string `mapstructure:"db_path" yaml:"db_path"`

	// Token, when set, is required as a Bearer token on every request.
	Token string `mapstructure:"token" yaml:"token"`
}

// KafkaConfig configures transaction event ingestion.
type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled" yaml:"enabled"`
	Brokers []string `mapstructure:"brokers" yaml:"brokers"`
	Topic   string   `mapstructure:"topic" yaml:"topic"`
	GroupID string   `mapstructure:"group_id" yaml:"group_id"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Store  StoreConfig  `mapstructure:"store" yaml:"store"`
	Feed   FeedConfig   `mapstructure:"feed" yaml:"feed"`
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
	Server ServerConfig `mapstructure:"server" yaml:"server"`
	Kafka  KafkaConfig  `mapstructure:"kafka" yaml:"kafka"`
}

// envPrefix namespaces environment overrides, e.g. NOTIFEED_STORE_BASE_URL.
const envPrefix = "NOTIFEED"

// ConfigDir returns ~/.config/notifeed, or the working directory when the
// home directory cannot be resolved.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "notifeed")
}

// DefaultConfigPath returns the default path for the configuration file.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Store: StoreConfig{
			BaseURL:    "http://localhost:8080",
			TimeoutSec: 30,
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(ConfigDir(), "notifeed.log"),
		},
		Server: ServerConfig{
			Addr:   ":8080",
			DBPath: filepath.Join(ConfigDir(), "store.db"),
		},
		Kafka: KafkaConfig{
			Brokers: []string{"localhost:9092"},
			Topic:   "transaction-events",
			GroupID: "transaction-logger",
		},
	}
}

// setDefaults mirrors defaultAppConfig into v so env overrides and
// partially written files resolve missing keys.
func setDefaults(v *viper.Viper) {
	d := defaultAppConfig()
	v.SetDefault("store.base_url", d.Store.BaseURL)
	v.SetDefault("store.timeout_sec", d.Store.TimeoutSec)
	v.SetDefault("store.max_retries", d.Store.MaxRetries)
	v.SetDefault("feed.rollback_on_failure", d.Feed.RollbackOnFailure)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.db_path", d.Server.DBPath)
	v.SetDefault("server.token", d.Server.Token)
	v.SetDefault("kafka.enabled", d.Kafka.Enabled)
	v.SetDefault("kafka.brokers", d.Kafka.Brokers)
	v.SetDefault("kafka.topic", d.Kafka.Topic)
	v.SetDefault("kafka.group_id", d.Kafka.GroupID)
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// A missing file is not an error: defaults and environment overrides apply.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Store.TimeoutSec <= 0 {
		cfg.Store.TimeoutSec = 30
	}
	cfg.Store.BaseURL = strings.TrimRight(cfg.Store.BaseURL, "/")

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("store", cfg.Store)
	v.Set("feed", cfg.Feed)
	v.Set("log", cfg.Log)
	v.Set("server", cfg.Server)
	v.Set("kafka", cfg.Kafka)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
