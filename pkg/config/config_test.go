package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func validConfigYAML() string {
	return `
logging:
  level: debug
server:
  port: 9000
  shutdown_timeout: 45s
auth:
  admin_username: admin
  admin_password_hash: "` + testHash + `"
  jwt_secret: "0123456789abcdef0123456789abcdef"
rate_limit:
  auth:
    enabled: true
    requests_per_minute: 5
    burst_size: 2
`
}

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, DefaultShutdownTimeout, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "badger", cfg.Storage.Backend)
	assert.Equal(t, DefaultAccessTokenTTL, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, DefaultRefreshTokenTTL, cfg.Auth.RefreshTokenTTL)
	assert.Contains(t, cfg.Auth.DisabledRoutes, "/api/auth/login")
	assert.Contains(t, cfg.RateLimit.DisabledRoutes, "/health")

	assert.True(t, cfg.RateLimit.Auth.IsEnabled())
	assert.Equal(t, 10, cfg.RateLimit.Auth.RequestsPerMinute)
	assert.Equal(t, 3, cfg.RateLimit.Auth.BurstSize)
	assert.Equal(t, 60, cfg.RateLimit.Upload.RequestsPerMinute)
	assert.Equal(t, 10, cfg.RateLimit.Upload.BurstSize)
	assert.Equal(t, 1000, cfg.RateLimit.Static.RequestsPerMinute)
	assert.Equal(t, 100, cfg.RateLimit.Static.BurstSize)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, validConfigYAML())

	cfg, err := Load(path)
	require.NoError(t, err)

	// File values win.
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 45*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 5, cfg.RateLimit.Auth.RequestsPerMinute)
	assert.Equal(t, 2, cfg.RateLimit.Auth.BurstSize)

	// Unset values fall back to defaults.
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, DefaultUploadDir, cfg.Server.UploadDir)
	assert.Equal(t, 60, cfg.RateLimit.Upload.RequestsPerMinute)
}

func TestLoadPartialRateLimitKeepsClassesEnabled(t *testing.T) {
	path := writeConfig(t, `
auth:
  admin_username: admin
  admin_password_hash: "`+testHash+`"
  jwt_secret: "0123456789abcdef0123456789abcdef"
rate_limit:
  upload:
    requests_per_minute: 5
    burst_size: 2
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	// Tuning only rpm/burst on one class must not switch any class off.
	assert.True(t, cfg.RateLimit.Auth.IsEnabled())
	assert.True(t, cfg.RateLimit.Upload.IsEnabled())
	assert.True(t, cfg.RateLimit.Static.IsEnabled())
	assert.Equal(t, 5, cfg.RateLimit.Upload.RequestsPerMinute)
	assert.Equal(t, 2, cfg.RateLimit.Upload.BurstSize)
}

func TestLoadExplicitDisableIsHonored(t *testing.T) {
	path := writeConfig(t, `
auth:
  admin_username: admin
  admin_password_hash: "`+testHash+`"
  jwt_secret: "0123456789abcdef0123456789abcdef"
rate_limit:
  static:
    enabled: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.False(t, cfg.RateLimit.Static.IsEnabled())
	assert.True(t, cfg.RateLimit.Auth.IsEnabled())
	assert.True(t, cfg.RateLimit.Upload.IsEnabled())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, cfg.Server.Port)
}

func TestLoadRejectsShortSecret(t *testing.T) {
	path := writeConfig(t, `
auth:
  admin_username: admin
  admin_password_hash: "`+testHash+`"
  jwt_secret: "short"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "min")
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	path := writeConfig(t, `
storage:
  backend: cassandra
auth:
  admin_username: admin
  admin_password_hash: "`+testHash+`"
  jwt_secret: "0123456789abcdef0123456789abcdef"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oneof")
}

func TestLoadRejectsPlaintextPassword(t *testing.T) {
	path := writeConfig(t, `
auth:
  admin_username: admin
  admin_password_hash: "hunter2"
  jwt_secret: "0123456789abcdef0123456789abcdef"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bcrypt")
}

func TestLoadRejectsBadDisabledRoutePrefix(t *testing.T) {
	path := writeConfig(t, `
auth:
  admin_username: admin
  admin_password_hash: "`+testHash+`"
  jwt_secret: "0123456789abcdef0123456789abcdef"
rate_limit:
  disabled_routes:
    - "health"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must start with /")
}

func TestSaveConfigRoundTrip(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Auth.AdminUsername = "admin"
	cfg.Auth.AdminPasswordHash = testHash
	cfg.Auth.JWTSecret = "0123456789abcdef0123456789abcdef"
	cfg.Server.Port = 8888

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, SaveConfig(cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8888, loaded.Server.Port)
	assert.Equal(t, testHash, loaded.Auth.AdminPasswordHash)
}
