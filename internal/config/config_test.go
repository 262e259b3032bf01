package config

import (
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("UPSTREAM_API_URL", "")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "http://localhost:3001", cfg.UpstreamURL)
	assert.Equal(t, 15*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, 5*time.Second, cfg.ChatPollInterval)
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 5*time.Minute, cfg.DashboardRefresh)
	assert.Len(t, cfg.SessionKey, 32, "dev key is derived")
	assert.False(t, cfg.IsProd())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("UPSTREAM_API_URL", "https://api.adenatrans.ru/")
	t.Setenv("CHAT_POLL_INTERVAL", "2s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://admin.adenatrans.ru, ,http://localhost:4200")
	t.Setenv("SIGNIN_RATE_LIMIT", "0.5")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "https://api.adenatrans.ru", cfg.UpstreamURL)
	assert.Equal(t, 2*time.Second, cfg.ChatPollInterval)
	assert.Equal(t, []string{"https://admin.adenatrans.ru", "http://localhost:4200"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 0.5, cfg.SigninRate)
}

func TestFromEnv_InvalidDuration(t *testing.T) {
	t.Setenv("SESSION_TTL", "forever")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_TTL")
}

func TestFromEnv_InvalidUpstream(t *testing.T) {
	t.Setenv("UPSTREAM_API_URL", "ftp://files")

	_, err := FromEnv()
	require.Error(t, err)
}

func TestFromEnv_ProdRequiresSecrets(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SESSION_ENCRYPTION_KEY", "")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	t.Setenv("JWT_SECRET", "real-secret")
	_, err = FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_ENCRYPTION_KEY")

	t.Setenv("SESSION_ENCRYPTION_KEY", hex.EncodeToString([]byte(strings.Repeat("k", 32))))
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://admin.adenatrans.ru")
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.IsProd())
}

func TestFromEnv_BadEncryptionKey(t *testing.T) {
	t.Setenv("SESSION_ENCRYPTION_KEY", "short")

	_, err := FromEnv()
	require.Error(t, err)
}
