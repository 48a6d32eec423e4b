package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServer_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadServer(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultServer(), cfg)
}

func TestLoadServer_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unitbalance.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: debug
document: /srv/balance.json
sync:
  initial_delay: 250ms
  max_message_bytes: 1200
metrics:
  enabled: true
database:
  enabled: true
  host: db
`), 0o644))

	cfg, err := LoadServer(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/srv/balance.json", cfg.Document)
	assert.Equal(t, 250*time.Millisecond, cfg.Sync.InitialDelay)
	assert.Equal(t, 500*time.Millisecond, cfg.Sync.ObserverSpacing, "unset keys keep defaults")
	assert.Equal(t, 1200, cfg.Sync.MaxMessageBytes)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "127.0.0.1:9464", cfg.Metrics.Address)
	assert.Equal(t, "postgres://unitbalance:unitbalance@db:5432/unitbalance?sslmode=disable", cfg.Database.DSN())
}

func TestLoadServer_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sync: [1, 2"), 0o644))
	_, err := LoadServer(path)
	assert.Error(t, err)
}

func TestPath(t *testing.T) {
	t.Setenv(EnvPath, "")
	assert.Equal(t, DefaultPath, Path())
	t.Setenv(EnvPath, "/etc/unitbalance.yaml")
	assert.Equal(t, "/etc/unitbalance.yaml", Path())
}
