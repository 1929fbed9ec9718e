package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 3, cfg.Capacity.MaxBreak)
	assert.Equal(t, 5, cfg.Capacity.TotalLimit)
	assert.Equal(t, 30*time.Minute, cfg.Publisher.Interval)
	assert.Equal(t, "sqlite", cfg.Ledger.Backend)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig().Server.Listen, cfg.Server.Listen)
	assert.Equal(t, DefaultConfig().Capacity, cfg.Capacity)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
capacity:
  max_break: 2
  total_limit: 4
ledger:
  backend: none
publisher:
  interval: 15m
  window_start: ""
  window_end: ""
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Capacity.MaxBreak)
	assert.Equal(t, 3, cfg.Capacity.MaxAdhoc)
	assert.Equal(t, 4, cfg.Capacity.TotalLimit)
	assert.Equal(t, "none", cfg.Ledger.Backend)
	assert.Equal(t, 15*time.Minute, cfg.Publisher.Interval)
	assert.Equal(t, "debug", cfg.Log.Level)

	w, err := cfg.Publisher.Window()
	require.NoError(t, err)
	assert.Nil(t, w)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("BREAKROOM_SERVER_LISTEN", "0.0.0.0:9000")
	t.Setenv("BREAKROOM_CAPACITY_MAX_OFFLINE", "1")
	t.Setenv("BREAKROOM_PUBLISHER_INTERVAL", "45m")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Listen)
	assert.Equal(t, 1, cfg.Capacity.MaxOffline)
	assert.Equal(t, 45*time.Minute, cfg.Publisher.Interval)
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("capacity:\n  total_limit: 0\n"), 0o600))

	_, err := Load(path)
	assert.ErrorContains(t, err, "total_limit")
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Capacity.MaxAdhoc = 1
	cfg.Ledger.Backend = "redis"
	cfg.Publisher.WebhookURL = "http://example.invalid/hook"

	require.NoError(t, Save(path, cfg))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"unknown backend", func(c *Config) { c.Ledger.Backend = "kafka" }, "invalid ledger backend"},
		{"empty listen", func(c *Config) { c.Server.Listen = "" }, "server.listen"},
		{"redis without addr", func(c *Config) { c.Ledger.Backend = "redis"; c.Ledger.RedisAddr = "" }, "redis_addr"},
		{"zero queue", func(c *Config) { c.Ledger.QueueSize = 0 }, "queue_size"},
		{"short interval", func(c *Config) { c.Publisher.Interval = time.Second }, "interval"},
		{"half window", func(c *Config) { c.Publisher.WindowEnd = "" }, "set together"},
		{"bad window", func(c *Config) { c.Publisher.WindowStart = "25:00" }, "publisher"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "log"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}

	cfg := DefaultConfig()
	cfg.Publisher.Enabled = false
	cfg.Publisher.Interval = 0
	assert.NoError(t, cfg.Validate(), "disabled publisher is not validated")
}
