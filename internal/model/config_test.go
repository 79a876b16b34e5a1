package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.Store.BaseURL)
	assert.Equal(t, 30, cfg.Store.TimeoutSec)
	assert.Zero(t, cfg.Store.MaxRetries)
	assert.False(t, cfg.Feed.RollbackOnFailure)
	assert.Equal(t, "transaction-events", cfg.Kafka.Topic)
	assert.Equal(t, "transaction-logger", cfg.Kafka.GroupID)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	err := os.WriteFile(path, []byte(`
store:
  base_url: https://bank.example.com/
  max_retries: 2
feed:
  rollback_on_failure: true
kafka:
  enabled: true
  brokers: [kafka-1:9092, kafka-2:9092]
`), 0o600)
	require.NoError(t, err)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://bank.example.com", cfg.Store.BaseURL)
	assert.Equal(t, 2, cfg.Store.MaxRetries)
	assert.Equal(t, 30, cfg.Store.TimeoutSec)
	assert.True(t, cfg.Feed.RollbackOnFailure)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("NOTIFEED_STORE_BASE_URL", "http://store.internal:9000")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://store.internal:9000", cfg.Store.BaseURL)
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store: [unclosed"), 0o600))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	cfg.Store.BaseURL = "https://bank.example.com"
	cfg.Feed.RollbackOnFailure = true

	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://bank.example.com", loaded.Store.BaseURL)
	assert.True(t, loaded.Feed.RollbackOnFailure)
}
