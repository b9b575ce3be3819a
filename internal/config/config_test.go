package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chtmp runs the test from an empty directory so no config file is
// picked up.
func chtmp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() {
		os.Chdir(wd)
		viper.Reset()
	})
	viper.Reset()
}

func TestLoadRequiresCredentials(t *testing.T) {
	chtmp(t)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dreo.username")
}

func TestLoadFromEnvironmentWithDefaults(t *testing.T) {
	chtmp(t)
	t.Setenv("DREO_USERNAME", "user@example.com")
	t.Setenv("DREO_PASSWORD", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "user@example.com", cfg.Dreo.Username)
	assert.Equal(t, 3200, cfg.Server.Port)
	assert.Equal(t, "60s", cfg.Sync.PollInterval)
	assert.True(t, cfg.Push.Enabled)
	assert.Equal(t, 15, cfg.Push.PingInterval)
	assert.Equal(t, 5, cfg.Push.ReconnectDelay)
	assert.False(t, cfg.Recorder.Enabled)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadFromFile(t *testing.T) {
	chtmp(t)

	content := `
dreo:
  username: "file@example.com"
  password: "filepass"
  region: "EU"
sync:
  poll_interval: "30s"
push:
  enabled: false
`
	require.NoError(t, os.MkdirAll("configs", 0o755))
	require.NoError(t, os.WriteFile(filepath.Join("configs", "config.yaml"), []byte(content), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "file@example.com", cfg.Dreo.Username)
	assert.Equal(t, "EU", cfg.Dreo.Region)
	assert.Equal(t, "30s", cfg.Sync.PollInterval)
	assert.False(t, cfg.Push.Enabled)
}

func TestDurationHelpersFallBack(t *testing.T) {
	s := SyncConfig{PollInterval: "not a duration", PollTimeout: ""}
	assert.Equal(t, 60*time.Second, s.PollIntervalDuration())
	assert.Equal(t, 10*time.Second, s.PollTimeoutDuration())

	s = SyncConfig{PollInterval: "90s", PollTimeout: "5s"}
	assert.Equal(t, 90*time.Second, s.PollIntervalDuration())
	assert.Equal(t, 5*time.Second, s.PollTimeoutDuration())
}

func TestValidateRejectsBadPort(t *testing.T) {
	cfg := &Config{
		Dreo:   DreoConfig{Username: "u", Password: "p"},
		Server: ServerConfig{Port: -1},
	}
	assert.Error(t, cfg.Validate())
}
