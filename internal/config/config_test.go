package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_FILE", "APP_ENV", "DB_PATH", "PORT", "LOG_LEVEL", "TIMEZONE",
		"COSTONOMY_API_URL", "COSTONOMY_OUTLET_ID", "COSTONOMY_USER_ID", "COSTONOMY_TIMEOUT", "SESSION_TTL",
	} {
		t.Setenv(key, "")
	}
	// Keep a developer's .env out of the test.
	t.Chdir(t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.True(t, cfg.IsDev())
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "./costonomy.db", cfg.DBPath)
	assert.Equal(t, "https://flavourheaven.in/costonomy-services/", cfg.API.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.API.Timeout)
	assert.Equal(t, "Asia/Kolkata", cfg.Timezone)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
}

func TestLoad_FileThenEnvOverrides(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
env: production
port: "9000"
timezone: UTC
session_ttl: 2h
api:
  base_url: https://api.example.test/
  outlet_id: 3
  user_id: 8
  timeout: 5s
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "9100")
	t.Setenv("COSTONOMY_USER_ID", "21")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.IsDev())
	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, "https://api.example.test/", cfg.API.BaseURL)
	assert.Equal(t, int64(3), cfg.API.OutletID)
	assert.Equal(t, int64(21), cfg.API.UserID)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, time.UTC, cfg.Location())
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
}

func TestLoad_RejectsMalformedNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("COSTONOMY_OUTLET_ID", "three")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := Load()
	assert.ErrorContains(t, err, "not found")
}
